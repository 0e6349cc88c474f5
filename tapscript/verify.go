// 包含 Taproot 脚本路径承诺的验证逻辑。

package tapscript

import (
	"bytes"
)

// VerifyStatus 是路径验证的三态结果。
type VerifyStatus uint8

const (
	// StatusIndeterminate 表示曲线运算失败，无法得出结论。
	StatusIndeterminate VerifyStatus = iota

	// StatusMismatch 表示推导出的承诺与观察到的输出不一致。
	StatusMismatch

	// StatusOK 表示脚本与控制块确实承诺到观察到的输出。
	StatusOK
)

const (
	// ReasonParityMismatch 表示控制块中的奇偶位与推导出的输出公钥不一致。
	ReasonParityMismatch = "parity mismatch"

	// ReasonScriptMismatch 表示推导出的输出脚本与观察到的不一致。
	ReasonScriptMismatch = "scriptPubKey mismatch"

	// ReasonMissingControlBlock 表示没有提供控制块。
	ReasonMissingControlBlock = "missing control block"
)

var statusStrings = map[VerifyStatus]string{
	StatusIndeterminate: "indeterminate",
	StatusMismatch:      "mismatch",
	StatusOK:            "ok",
}

// String 返回 VerifyStatus 的可读名称。
func (s VerifyStatus) String() string {
	if str := statusStrings[s]; str != "" {
		return str
	}
	return "unknown"
}

// VerifyResult 描述一次路径验证的结果。
type VerifyResult struct {
	Status VerifyStatus

	// ExpectedScript 是由脚本和控制块推导出的输出脚本，不确定时为 nil。
	ExpectedScript []byte

	// ActualScript 是调用者观察到的输出脚本。
	ActualScript []byte

	// Reason 在结果不是 StatusOK 时说明原因。
	Reason string
}

// OK 报告验证是否确定成功。
func (r *VerifyResult) OK() bool {
	return r.Status == StatusOK
}

// PathVerifier 验证被揭示的脚本与控制块是否承诺到给定的输出脚本。
type PathVerifier struct {
	curve Curve
}

// NewPathVerifier 返回使用 curve 的验证器，curve 为 nil 时使用 Secp256k1。
func NewPathVerifier(curve Curve) *PathVerifier {
	if curve == nil {
		curve = Secp256k1
	}
	return &PathVerifier{curve: curve}
}

// Verify 推导 script 与 cb 承诺的输出脚本并与 observed 比较。
//
// 奇偶位先于脚本比较检查，所以翻转奇偶位的控制块永远不会通过验证。
func (v *PathVerifier) Verify(script []byte, cb *ControlBlock, observed []byte) *VerifyResult {
	result := &VerifyResult{
		Status:       StatusIndeterminate,
		ActualScript: observed,
	}
	if cb == nil {
		result.Reason = ReasonMissingControlBlock
		return result
	}

	merkleRoot := cb.RootHash(script)
	outputKey, err := ComputeOutputKey(v.curve, cb.InternalKey[:], merkleRoot[:])
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	result.ExpectedScript = PayToTaprootScript(outputKey.XOnly)
	switch {
	case outputKey.Parity != cb.Parity:
		result.Status = StatusMismatch
		result.Reason = ReasonParityMismatch

	case !bytes.Equal(result.ExpectedScript, observed):
		result.Status = StatusMismatch
		result.Reason = ReasonScriptMismatch

	default:
		result.Status = StatusOK
	}
	return result
}

// VerifyPath 使用默认曲线验证脚本路径承诺。
func VerifyPath(script []byte, cb *ControlBlock, observed []byte) *VerifyResult {
	return NewPathVerifier(nil).Verify(script, cb, observed)
}
