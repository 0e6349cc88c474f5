// 包含 Taproot 输出公钥的调整计算。

package tapscript

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OutputKey 是调整后的 Taproot 输出公钥。
type OutputKey struct {
	// XOnly 是输出公钥的 x 坐标，即见证程序。
	XOnly [32]byte

	// Parity 是输出公钥 y 坐标的奇偶位。
	Parity uint8
}

// TapTweakHash 返回 TaggedHash("TapTweak", internalKey || merkleRoot)。
func TapTweakHash(internalKey, merkleRoot []byte) chainhash.Hash {
	return *chainhash.TaggedHash(
		chainhash.TagTapTweak, internalKey, merkleRoot,
	)
}

// ComputeOutputKey 计算 Q = lift_x(internalKey) + t*G，其中 t 为 TapTweak 哈希。
//
// 长度不正确时返回 StructuralError；t 不小于曲线阶、内部公钥不在曲线上或结果为无穷远点时
// 返回 CryptoError。curve 为 nil 时使用 Secp256k1。
func ComputeOutputKey(curve Curve, internalKey, merkleRoot []byte) (*OutputKey, error) {
	if len(internalKey) != XOnlyKeySize {
		str := fmt.Sprintf("internal key must be %d bytes, got %d",
			XOnlyKeySize, len(internalKey))
		return nil, scriptError(ErrInvalidKeyLength, str)
	}
	if len(merkleRoot) != chainhash.HashSize {
		str := fmt.Sprintf("merkle root must be %d bytes, got %d",
			chainhash.HashSize, len(merkleRoot))
		return nil, scriptError(ErrInvalidMerkleRootLength, str)
	}

	tweak := TapTweakHash(internalKey, merkleRoot)
	return applyTweak(curve, internalKey, (*[32]byte)(&tweak))
}

// applyTweak 在已知调整值的情况下计算输出公钥。
func applyTweak(curve Curve, internalKey []byte, tweak *[32]byte) (*OutputKey, error) {
	if curve == nil {
		curve = Secp256k1
	}

	// The tweak is never reduced modulo n, a value at or above the order
	// makes the commitment invalid.
	if bytes.Compare(tweak[:], curveOrder[:]) >= 0 {
		return nil, scriptError(ErrTweakOverflow,
			"tweak is not less than the curve order")
	}

	p, err := curve.LiftX(internalKey)
	if err != nil {
		return nil, err
	}
	tG, err := curve.ScalarBaseMult(tweak)
	if err != nil {
		return nil, err
	}
	q, err := curve.Add(p, tG)
	if err != nil {
		return nil, err
	}

	x, parity, err := curve.XOnly(q)
	if err != nil {
		return nil, err
	}
	return &OutputKey{XOnly: x, Parity: parity}, nil
}
