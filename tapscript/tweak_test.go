// 包含测试输出公钥调整的代码。

package tapscript

import (
	"bytes"
	"testing"
	"testing/quick"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
)

// TestComputeOutputKeyMatchesTxscript 用 txscript.ComputeTaprootOutputKey 交叉验证调整结果。
func TestComputeOutputKeyMatchesTxscript(t *testing.T) {
	t.Parallel()

	f := func(root [32]byte) bool {
		privKey, err := btcec.NewPrivateKey()
		if err != nil {
			return false
		}
		internal := schnorr.SerializePubKey(privKey.PubKey())

		got, err := ComputeOutputKey(Secp256k1, internal, root[:])
		if err != nil {
			return false
		}

		want := txscript.ComputeTaprootOutputKey(privKey.PubKey(), root[:])
		compressed := want.SerializeCompressed()
		wantParity := compressed[0] & 0x01

		return bytes.Equal(got.XOnly[:], compressed[1:]) &&
			got.Parity == wantParity
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

// TestComputeOutputKeyErrors 测试长度错误与曲线错误的分类。
func TestComputeOutputKeyErrors(t *testing.T) {
	t.Parallel()

	root := make([]byte, 32)

	_, err := ComputeOutputKey(nil, make([]byte, 31), root)
	require.True(t, IsErrorCode(err, ErrInvalidKeyLength), "%v", err)
	require.True(t, IsKind(err, StructuralError))

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	internal := schnorr.SerializePubKey(privKey.PubKey())

	_, err = ComputeOutputKey(nil, internal, root[:16])
	require.True(t, IsErrorCode(err, ErrInvalidMerkleRootLength), "%v", err)

	// x = 2^256-1 is not below the field prime, so it cannot be lifted.
	_, err = ComputeOutputKey(nil, bytes.Repeat([]byte{0xff}, 32), root)
	require.True(t, IsErrorCode(err, ErrInvalidInternalKey), "%v", err)
	require.True(t, IsKind(err, CryptoError))
}

// TestApplyTweakOverflow 确保不小于曲线阶的调整值被拒绝，而不是取模。
func TestApplyTweakOverflow(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	internal := schnorr.SerializePubKey(privKey.PubKey())

	order := curveOrder
	_, err = applyTweak(nil, internal, &order)
	require.True(t, IsErrorCode(err, ErrTweakOverflow), "%v", err)

	var max [32]byte
	for i := range max {
		max[i] = 0xff
	}
	_, err = applyTweak(nil, internal, &max)
	require.True(t, IsErrorCode(err, ErrTweakOverflow), "%v", err)

	// One below the order is accepted.
	belowOrder := curveOrder
	belowOrder[31]--
	_, err = applyTweak(nil, internal, &belowOrder)
	require.NoError(t, err)
}

// TestApplyTweakInfinity 确保 t = -d 时得到无穷远点并报告 ErrPointAtInfinity。
func TestApplyTweakInfinity(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pubKey := privKey.PubKey()

	// lift_x always yields the even-y point, so its discrete log is d when
	// the public key has even y and -d otherwise.  The tweak cancelling it
	// is the negation of that scalar.
	var scalar btcec.ModNScalar
	scalar.Set(&privKey.Key)
	if pubKey.SerializeCompressed()[0] == 0x02 {
		scalar.Negate()
	}
	tweak := scalar.Bytes()

	_, err = applyTweak(nil, schnorr.SerializePubKey(pubKey), &tweak)
	require.True(t, IsErrorCode(err, ErrPointAtInfinity), "%v", err)
	require.True(t, IsKind(err, CryptoError))
}

// TestSecp256k1UnsupportedPoint 确保实现拒绝不属于它的点类型。
func TestSecp256k1UnsupportedPoint(t *testing.T) {
	t.Parallel()

	_, err := Secp256k1.Add("a", "b")
	require.True(t, IsErrorCode(err, ErrUnsupportedPoint), "%v", err)

	_, _, err = Secp256k1.XOnly(nil)
	require.True(t, IsErrorCode(err, ErrUnsupportedPoint), "%v", err)
}
