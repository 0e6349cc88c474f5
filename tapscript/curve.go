// 包含输出公钥调整所需的椭圆曲线能力接口及其 secp256k1 实现。

package tapscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Point 是 Curve 实现内部使用的不透明点类型。
type Point interface{}

// Curve 是计算 Q = P + t*G 所需的最小曲线能力。
// 实现必须把非法输入报告为 CryptoError 类别的 Error，而不是 panic。
type Curve interface {
	// LiftX 把 32 字节 x 坐标提升为 y 为偶数的曲线点。
	LiftX(xOnly []byte) (Point, error)

	// ScalarBaseMult 计算 k*G，k 必须小于曲线阶。
	ScalarBaseMult(k *[32]byte) (Point, error)

	// Add 返回 a + b，结果为无穷远点时返回错误。
	Add(a, b Point) (Point, error)

	// XOnly 返回点的 x 坐标及 y 坐标的奇偶位。
	XOnly(p Point) ([32]byte, uint8, error)
}

// Secp256k1 是基于 btcec 的默认 Curve 实现，无状态，可并发使用。
var Secp256k1 Curve = secp256k1Curve{}

// curveOrder 是 secp256k1 曲线阶 n 的大端字节表示。
var curveOrder = func() [32]byte {
	var b [32]byte
	secp.S256().N.FillBytes(b[:])
	return b
}()

// secp256k1Curve 用雅可比坐标实现 Curve。
type secp256k1Curve struct{}

// toJacobian 取出本实现使用的点类型。
func toJacobian(p Point) (*btcec.JacobianPoint, error) {
	jp, ok := p.(*btcec.JacobianPoint)
	if !ok || jp == nil {
		return nil, scriptError(ErrUnsupportedPoint,
			fmt.Sprintf("unsupported point type %T", p))
	}
	return jp, nil
}

// isInfinity 判断雅可比坐标点是否为无穷远点。
func isInfinity(p *btcec.JacobianPoint) bool {
	var x, y, z btcec.FieldVal
	x.Set(&p.X).Normalize()
	y.Set(&p.Y).Normalize()
	z.Set(&p.Z).Normalize()
	return z.IsZero() || (x.IsZero() && y.IsZero())
}

func (secp256k1Curve) LiftX(xOnly []byte) (Point, error) {
	pubKey, err := schnorr.ParsePubKey(xOnly)
	if err != nil {
		str := fmt.Sprintf("internal key is not a valid x-only "+
			"point: %v", err)
		return nil, scriptError(ErrInvalidInternalKey, str)
	}

	var p btcec.JacobianPoint
	pubKey.AsJacobian(&p)
	return &p, nil
}

func (secp256k1Curve) ScalarBaseMult(k *[32]byte) (Point, error) {
	var scalar btcec.ModNScalar
	if overflow := scalar.SetBytes(k); overflow != 0 {
		return nil, scriptError(ErrTweakOverflow,
			"tweak is not less than the curve order")
	}

	var p btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&scalar, &p)
	return &p, nil
}

func (secp256k1Curve) Add(a, b Point) (Point, error) {
	pa, err := toJacobian(a)
	if err != nil {
		return nil, err
	}
	pb, err := toJacobian(b)
	if err != nil {
		return nil, err
	}

	var sum btcec.JacobianPoint
	btcec.AddNonConst(pa, pb, &sum)
	if isInfinity(&sum) {
		return nil, scriptError(ErrPointAtInfinity,
			"tweaked output key is the point at infinity")
	}
	return &sum, nil
}

func (secp256k1Curve) XOnly(p Point) ([32]byte, uint8, error) {
	var out [32]byte

	jp, err := toJacobian(p)
	if err != nil {
		return out, 0, err
	}
	if isInfinity(jp) {
		return out, 0, scriptError(ErrPointAtInfinity,
			"point at infinity has no x coordinate")
	}

	affine := *jp
	affine.ToAffine()
	affine.X.PutBytes(&out)

	var parity uint8
	if affine.Y.IsOdd() {
		parity = 1
	}
	return out, parity, nil
}
