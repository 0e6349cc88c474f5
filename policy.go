package ssv

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/qinglongcn/ssv/tapscript"
)

const (
	// ReasonSpkMismatch 表示输出脚本不一致
	ReasonSpkMismatch = "spk mismatch"

	// ReasonValueMismatch 表示输出金额不一致
	ReasonValueMismatch = "value mismatch"
)

// OutputCheck 是对交易某个输出的检查结果
type OutputCheck struct {
	OK            bool
	Index         int
	ExpectedSpk   []byte
	ActualSpk     []byte
	ExpectedValue *int64 // 为 nil 时未检查金额
	ActualValue   int64
	ScriptClass   string // 实际输出脚本的类别
	Reason        string
}

// txOutput 取出交易的第 index 个输出
func txOutput(tx *wire.MsgTx, index int) (*wire.TxOut, error) {
	if tx == nil {
		return nil, fmt.Errorf("PSBT does not expose unsigned transaction")
	}
	if index < 0 || index >= len(tx.TxOut) {
		return nil, fmt.Errorf("output index %d out of range (num_outputs=%d)",
			index, len(tx.TxOut))
	}
	return tx.TxOut[index], nil
}

// checkOutput 比较输出脚本与金额，value 为 nil 时不检查金额
func checkOutput(tx *wire.MsgTx, index int, expectedSpk []byte, value *int64) (*OutputCheck, error) {
	if value != nil && *value < 0 {
		return nil, fmt.Errorf("value must be non-negative")
	}
	out, err := txOutput(tx, index)
	if err != nil {
		return nil, err
	}

	check := &OutputCheck{
		Index:         index,
		ExpectedSpk:   expectedSpk,
		ActualSpk:     out.PkScript,
		ExpectedValue: value,
		ActualValue:   out.Value,
		ScriptClass:   txscript.GetScriptClass(out.PkScript).String(),
	}
	switch {
	case !bytes.Equal(expectedSpk, out.PkScript):
		check.Reason = ReasonSpkMismatch
	case value != nil && *value != out.Value:
		check.Reason = ReasonValueMismatch
	default:
		check.OK = true
	}
	return check, nil
}

// VerifyAnchorOutput 检查第 index 个输出是否为给定的锚定脚本和金额
func VerifyAnchorOutput(tx *wire.MsgTx, index int, expectedSpk []byte, value int64) (*OutputCheck, error) {
	if len(expectedSpk) == 0 {
		return nil, fmt.Errorf("spk is required")
	}
	return checkOutput(tx, index, expectedSpk, &value)
}

// OpReturnScript 返回 OP_RETURN <data> 输出脚本
func OpReturnScript(data []byte) []byte {
	return append([]byte{txscript.OP_RETURN}, tapscript.PushData(data)...)
}

// VerifyOpReturnOutput 检查第 index 个输出是否为携带 data 的 OP_RETURN 输出，value 为 nil 时不检查金额
func VerifyOpReturnOutput(tx *wire.MsgTx, index int, data []byte, value *int64) (*OutputCheck, error) {
	return checkOutput(tx, index, OpReturnScript(data), value)
}

// OpReturnData 返回 OP_RETURN 输出中压入的数据，不是 nulldata 输出时返回错误
func OpReturnData(pkScript []byte) ([]byte, error) {
	if txscript.GetScriptClass(pkScript) != txscript.NullDataTy {
		return nil, fmt.Errorf("non null-data script form")
	}
	pushes, err := txscript.PushedData(pkScript)
	if err != nil {
		return nil, fmt.Errorf("null-data script parse failure: %v", err)
	}
	return bytes.Join(pushes, nil), nil
}
