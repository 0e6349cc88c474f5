package ssv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/qinglongcn/ssv/tapscript"
	"github.com/stretchr/testify/require"
)

// goldenParams 返回固定向量的策略参数
func goldenParams() tapscript.PolicyParams {
	return tapscript.PolicyParams{
		HashCommitment: bytes.Repeat([]byte{0x00}, 32),
		BorrowerKey:    bytes.Repeat([]byte{0x11}, 32),
		CSVBlocks:      10,
		ProviderKey:    bytes.Repeat([]byte{0x22}, 32),
	}
}

// newTestPacket 创建只有一个输入的 PSBT，witnessUtxo 为 nil 时不设置
func newTestPacket(t *testing.T, outputs []*wire.TxOut, witnessUtxo *wire.TxOut) *psbt.Packet {
	t.Helper()

	prevOut := wire.NewOutPoint(&chainhash.Hash{}, 0)
	packet, err := psbt.New(
		[]*wire.OutPoint{prevOut}, outputs, 2, 0,
		[]uint32{wire.MaxTxInSequenceNum},
	)
	require.NoError(t, err)
	packet.Inputs[0].WitnessUtxo = witnessUtxo
	return packet
}

// encodeTestPacket 返回 PSBT 的 base64 文本
func encodeTestPacket(t *testing.T, packet *psbt.Packet) []byte {
	t.Helper()

	b64, err := packet.B64Encode()
	require.NoError(t, err)
	return []byte(b64)
}

// testCommitment 用 txscript 独立构建单叶子脚本树，返回控制块与输出脚本
func testCommitment(t *testing.T, script []byte) ([]byte, []byte) {
	t.Helper()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	internalKey := privKey.PubKey()

	tree := txscript.AssembleTaprootScriptTree(txscript.NewBaseTapLeaf(script))
	rootHash := tree.RootNode.TapHash()

	ctrl := tree.LeafMerkleProofs[0].ToControlBlock(internalKey)
	cb, err := ctrl.ToBytes()
	require.NoError(t, err)

	spk, err := txscript.PayToTaprootScript(
		txscript.ComputeTaprootOutputKey(internalKey, rootHash[:]),
	)
	require.NoError(t, err)
	return cb, spk
}

// goldenTapscriptHex 是 goldenParams 对应的脚本
var goldenTapscriptHex = "63a820" + strings.Repeat("00", 32) +
	"8820" + strings.Repeat("11", 32) + "ac67010ab27520" +
	strings.Repeat("22", 32) + "ac68"

// goldenTaggedHash 是黄金脚本的 TapLeaf 标签哈希（按字节顺序）
const goldenTaggedHash = "0f134db24bddd4bf87721c526882c45f7d065a0a2df33287a30a09395280da94"
