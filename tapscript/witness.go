// 包含脚本路径花费见证的构建逻辑。

package tapscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/wire"
)

// Branch 标识被花费的策略分支。
type Branch uint8

const (
	// BranchClose 是借款人出示原像并签名的分支（OP_IF）。
	BranchClose Branch = iota + 1

	// BranchLiquidate 是时间锁到期后提供方签名的分支（OP_ELSE）。
	BranchLiquidate
)

var (
	// IfSelector 是选择 OP_IF 分支的见证元素。
	IfSelector = []byte{0x01}

	// ElseSelector 是选择 OP_ELSE 分支的见证元素。
	ElseSelector = []byte{0x00}
)

var branchStrings = map[Branch]string{
	BranchClose:     "close",
	BranchLiquidate: "liquidate",
}

// String 返回分支的可读名称。
func (b Branch) String() string {
	if s := branchStrings[b]; s != "" {
		return s
	}
	return fmt.Sprintf("unknown branch (%d)", uint8(b))
}

// checkWitnessParts 在组装见证之前校验公共部分。
func checkWitnessParts(sig, script, controlBlock []byte) error {
	if len(sig) != schnorr.SignatureSize && len(sig) != schnorr.SignatureSize+1 {
		str := fmt.Sprintf("signature must be %d or %d bytes, got %d",
			schnorr.SignatureSize, schnorr.SignatureSize+1, len(sig))
		return fieldError(ErrInvalidSignatureLength, "signature", str)
	}

	switch {
	case len(script) == 0:
		return fieldError(ErrEmptyTapscript, "tapscript",
			"tapscript must not be empty")

	case len(script) > MaxTapscriptSize:
		str := fmt.Sprintf("tapscript must be at most %d bytes, got %d",
			MaxTapscriptSize, len(script))
		return fieldError(ErrTapscriptTooLarge, "tapscript", str)
	}

	switch {
	case len(controlBlock) < ControlBlockBaseSize ||
		(len(controlBlock)-ControlBlockBaseSize)%ControlBlockNodeSize != 0:

		str := fmt.Sprintf("control block must be 33+32n bytes, got %d",
			len(controlBlock))
		return fieldError(ErrInvalidControlBlock, "control_block", str)

	case len(controlBlock) > ControlBlockMaxSize:
		str := fmt.Sprintf("control block must be at most %d bytes, got %d",
			ControlBlockMaxSize, len(controlBlock))
		return fieldError(ErrInvalidControlBlock, "control_block", str)
	}
	return nil
}

// BuildWitness 构建花费指定分支所需的见证栈：
//
//	BranchClose:     [sig, preimage, 0x01, script, control_block]
//	BranchLiquidate: [sig, 0x00, script, control_block]
//
// 所有校验在组装之前完成，失败时返回带 Field 的 ValidationError。
// BranchLiquidate 忽略 preimage，它不会出现在见证中。
func BuildWitness(branch Branch, sig, script, controlBlock,
	preimage []byte) (wire.TxWitness, error) {

	if err := checkWitnessParts(sig, script, controlBlock); err != nil {
		return nil, err
	}

	switch branch {
	case BranchClose:
		if len(preimage) == 0 {
			return nil, fieldError(ErrMissingPreimage, "preimage",
				"close branch requires a preimage")
		}
		if len(preimage) != PreimageSize {
			str := fmt.Sprintf("preimage must be %d bytes, got %d",
				PreimageSize, len(preimage))
			return nil, fieldError(ErrInvalidPreimageLength,
				"preimage", str)
		}

		return wire.TxWitness{
			copyBytes(sig), copyBytes(preimage), copyBytes(IfSelector),
			copyBytes(script), copyBytes(controlBlock),
		}, nil

	case BranchLiquidate:
		return wire.TxWitness{
			copyBytes(sig), copyBytes(ElseSelector),
			copyBytes(script), copyBytes(controlBlock),
		}, nil

	default:
		return nil, fieldError(ErrUnknownBranch, "branch",
			fmt.Sprintf("unknown branch %d", uint8(branch)))
	}
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
