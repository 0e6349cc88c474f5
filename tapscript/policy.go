// 包含借贷托管策略及其 tapscript 模板的构建逻辑。

package tapscript

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
)

const (
	// HashCommitmentSize 是哈希承诺 h = SHA256(s) 的字节长度。
	HashCommitmentSize = 32

	// XOnlyKeySize 是 BIP-340 x-only 公钥的字节长度。
	XOnlyKeySize = 32

	// PreimageSize 是 CLOSE 分支原像的字节长度。
	PreimageSize = 32

	// MinCSVBlocks 是 CSV 相对时间锁允许的最小区块数。
	MinCSVBlocks = 1

	// MaxCSVBlocks 是 CSV 相对时间锁允许的最大区块数。
	MaxCSVBlocks = 65535
)

// PolicyParams 是两分支托管策略的参数。
//
// CLOSE 分支：借款人出示原像 s（SHA256(s) == HashCommitment）并签名。
// LIQUIDATE 分支：经过 CSVBlocks 个区块后，提供方单独签名。
type PolicyParams struct {
	HashCommitment []byte
	BorrowerKey    []byte
	CSVBlocks      int64
	ProviderKey    []byte
}

// Validate 检查策略参数，返回第一个不满足的约束。
func (p *PolicyParams) Validate() error {
	if len(p.HashCommitment) != HashCommitmentSize {
		str := fmt.Sprintf("hash commitment must be %d bytes, got %d",
			HashCommitmentSize, len(p.HashCommitment))
		return scriptError(ErrInvalidHashCommitment, str)
	}
	if len(p.BorrowerKey) != XOnlyKeySize {
		str := fmt.Sprintf("borrower key must be %d bytes, got %d",
			XOnlyKeySize, len(p.BorrowerKey))
		return scriptError(ErrInvalidBorrowerKey, str)
	}
	if len(p.ProviderKey) != XOnlyKeySize {
		str := fmt.Sprintf("provider key must be %d bytes, got %d",
			XOnlyKeySize, len(p.ProviderKey))
		return scriptError(ErrInvalidProviderKey, str)
	}
	if p.CSVBlocks < MinCSVBlocks || p.CSVBlocks > MaxCSVBlocks {
		str := fmt.Sprintf("csv blocks must be in [%d, %d], got %d",
			MinCSVBlocks, MaxCSVBlocks, p.CSVBlocks)
		return scriptError(ErrInvalidCSVBlocks, str)
	}
	return nil
}

// Script 校验参数并返回对应的 tapscript。
func (p *PolicyParams) Script() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// 5 bytes of opcodes around each branch, three 33-byte key/hash pushes
	// and at most 4 bytes for the csv push.
	builder := NewScriptBuilder(WithScriptAllocSize(3*33 + 11 + 4))

	// CLOSE: read the preimage off the stack and require the borrower's
	// signature.
	builder.AddOp(txscript.OP_IF)
	builder.AddOp(txscript.OP_SHA256)
	builder.AddData(p.HashCommitment)
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddData(p.BorrowerKey)
	builder.AddOp(txscript.OP_CHECKSIG)

	// LIQUIDATE: relative timelock and the provider's signature.
	builder.AddOp(txscript.OP_ELSE)
	builder.AddScriptNum(p.CSVBlocks)
	builder.AddOps([]byte{txscript.OP_CHECKSEQUENCEVERIFY, txscript.OP_DROP})
	builder.AddData(p.ProviderKey)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ENDIF)

	return builder.Script(), nil
}

// BuildTapscript 构建两分支策略脚本：
//
//	OP_IF OP_SHA256 <h> OP_EQUALVERIFY <pk_b> OP_CHECKSIG
//	OP_ELSE <csv> OP_CHECKSEQUENCEVERIFY OP_DROP <pk_p> OP_CHECKSIG OP_ENDIF
//
// 所有参数在写出任何字节之前完成校验，失败时返回 PolicyError 类别的 Error。
func BuildTapscript(hashCommitment, borrowerKey []byte, csvBlocks int64,
	providerKey []byte) ([]byte, error) {

	params := PolicyParams{
		HashCommitment: hashCommitment,
		BorrowerKey:    borrowerKey,
		CSVBlocks:      csvBlocks,
		ProviderKey:    providerKey,
	}
	return params.Script()
}

// Disasm 返回脚本的单行反汇编文本。
func Disasm(script []byte) (string, error) {
	return txscript.DisasmString(script)
}
