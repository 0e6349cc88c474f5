package ssv

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

// DecodePSBT 解析 PSBT，自动识别十六进制或 base64 文本，也接受原始二进制
func DecodePSBT(data []byte) (*psbt.Packet, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("empty PSBT")
	}

	if raw, err := hex.DecodeString(text); err == nil {
		return psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	}
	if strings.HasPrefix(text, "psbt\xff") {
		return psbt.NewFromRawBytes(bytes.NewReader(data), false)
	}
	return psbt.NewFromRawBytes(strings.NewReader(text), true)
}

// EncodePSBT 返回 PSBT 的 base64 文本
func EncodePSBT(p *psbt.Packet) (string, error) {
	return p.B64Encode()
}

// checkInputIndex 检查输入下标是否越界
func checkInputIndex(p *psbt.Packet, index int) error {
	if index < 0 || index >= len(p.Inputs) {
		return fmt.Errorf("input index %d out of range (num_inputs=%d)",
			index, len(p.Inputs))
	}
	return nil
}

// InputWitnessScript 返回指定输入 witness_utxo 的 scriptPubKey
func InputWitnessScript(p *psbt.Packet, index int) ([]byte, error) {
	if err := checkInputIndex(p, index); err != nil {
		return nil, err
	}
	utxo := p.Inputs[index].WitnessUtxo
	if utxo == nil {
		return nil, fmt.Errorf("PSBT input %d missing witness_utxo", index)
	}
	return utxo.PkScript, nil
}

// SetFinalWitness 把见证栈序列化为指定输入的 final_scriptwitness，
// 并按最终化规则清除签名过程中使用的字段
func SetFinalWitness(p *psbt.Packet, index int, witness wire.TxWitness) error {
	if err := checkInputIndex(p, index); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := psbt.WriteTxWitness(&buf, witness); err != nil {
		return fmt.Errorf("序列化见证失败: %w", err)
	}

	in := &p.Inputs[index]
	in.FinalScriptWitness = buf.Bytes()
	in.PartialSigs = nil
	in.TaprootScriptSpendSig = nil
	in.TaprootLeafScript = nil
	in.TaprootBip32Derivation = nil
	in.TaprootInternalKey = nil
	in.TaprootMerkleRoot = nil
	return nil
}

// ExtractRawTx 从已最终化的 PSBT 中提取交易，返回其十六进制序列化
func ExtractRawTx(p *psbt.Packet) (string, error) {
	tx, err := psbt.Extract(p)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}
