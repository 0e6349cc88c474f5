// 包含测试脚本路径验证的代码。

package tapscript

import (
	"testing"
	"testing/quick"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"
)

// failingCurve 是总是在 LiftX 时失败的 Curve，用于检查不确定结果。
type failingCurve struct{}

func (failingCurve) LiftX([]byte) (Point, error) {
	return nil, scriptError(ErrInvalidInternalKey, "lift failed")
}

func (failingCurve) ScalarBaseMult(*[32]byte) (Point, error) { return nil, nil }

func (failingCurve) Add(Point, Point) (Point, error) { return nil, nil }

func (failingCurve) XOnly(Point) ([32]byte, uint8, error) { return [32]byte{}, 0, nil }

// commitment 用 txscript 独立计算脚本树，返回第一个叶子的控制块和输出脚本。
func commitment(t *testing.T, script []byte, extra ...[]byte) ([]byte, []byte) {
	t.Helper()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	internalKey := privKey.PubKey()

	leaves := []txscript.TapLeaf{txscript.NewBaseTapLeaf(script)}
	for _, s := range extra {
		leaves = append(leaves, txscript.NewBaseTapLeaf(s))
	}
	tree := txscript.AssembleTaprootScriptTree(leaves...)
	rootHash := tree.RootNode.TapHash()

	ctrl := tree.LeafMerkleProofs[0].ToControlBlock(internalKey)
	raw, err := ctrl.ToBytes()
	require.NoError(t, err)

	outputKey := txscript.ComputeTaprootOutputKey(internalKey, rootHash[:])
	spk, err := txscript.PayToTaprootScript(outputKey)
	require.NoError(t, err)

	return raw, spk
}

// TestVerifyPathRoundTrip 确保由独立实现生成的承诺总能通过验证。
func TestVerifyPathRoundTrip(t *testing.T) {
	t.Parallel()

	f := func(h, b, p [32]byte, csv uint16, extraLeaves uint8) bool {
		n := int64(csv)
		if n == 0 {
			n = 1
		}
		script, err := BuildTapscript(h[:], b[:], n, p[:])
		if err != nil {
			return false
		}

		var extra [][]byte
		for i := 0; i < int(extraLeaves%4); i++ {
			extra = append(extra, []byte{txscript.OP_NOP, byte(i)})
		}
		raw, spk := commitment(t, script, extra...)

		cb, err := ParseControlBlock(raw)
		if err != nil {
			return false
		}
		result := VerifyPath(script, cb, spk)
		return result.OK() && result.Reason == "" &&
			string(result.ExpectedScript) == string(spk)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 30}); err != nil {
		t.Fatal(err)
	}
}

// TestVerifyPathMatchesTxscript 确保与 txscript.VerifyTaprootLeafCommitment 的结论一致。
func TestVerifyPathMatchesTxscript(t *testing.T) {
	t.Parallel()

	script := hexToBytes(goldenScriptHex)
	raw, spk := commitment(t, script, []byte{txscript.OP_TRUE})

	ctrl, err := txscript.ParseControlBlock(raw)
	require.NoError(t, err)
	require.NoError(t, txscript.VerifyTaprootLeafCommitment(ctrl, spk[2:], script))

	cb, err := ParseControlBlock(raw)
	require.NoError(t, err)
	require.Equal(t, StatusOK, VerifyPath(script, cb, spk).Status)
}

// TestVerifyPathParityFlip 确保翻转奇偶位总是得到 parity mismatch。
func TestVerifyPathParityFlip(t *testing.T) {
	t.Parallel()

	for i := 0; i < 8; i++ {
		script := hexToBytes(goldenScriptHex)
		raw, spk := commitment(t, script)
		raw[0] ^= 0x01

		cb, err := ParseControlBlock(raw)
		require.NoError(t, err)

		result := VerifyPath(script, cb, spk)
		require.Equal(t, StatusMismatch, result.Status)
		require.Equal(t, ReasonParityMismatch, result.Reason)
		require.False(t, result.OK())
	}
}

// TestVerifyPathScriptMismatch 测试脚本、输出、节点被篡改时的结果。
func TestVerifyPathScriptMismatch(t *testing.T) {
	t.Parallel()

	script := hexToBytes(goldenScriptHex)
	raw, spk := commitment(t, script, []byte{txscript.OP_TRUE})
	cb, err := ParseControlBlock(raw)
	require.NoError(t, err)

	// A different observed output key.
	other := append([]byte(nil), spk...)
	other[10] ^= 0xff
	result := VerifyPath(script, cb, other)
	require.Equal(t, StatusMismatch, result.Status)
	require.Equal(t, spk, result.ExpectedScript)
	require.Equal(t, other, result.ActualScript)

	// A tampered merkle node yields a different commitment. Depending on
	// the parity of the new output key this is reported as either reason.
	tampered := *cb
	tampered.MerkleNodes = [][32]byte{cb.MerkleNodes[0]}
	tampered.MerkleNodes[0][0] ^= 0x01
	result = VerifyPath(script, &tampered, spk)
	require.Equal(t, StatusMismatch, result.Status)
	require.Contains(t, []string{ReasonParityMismatch, ReasonScriptMismatch},
		result.Reason)

	// Revealing the liquidate-only variant of the script fails too.
	altered := append([]byte(nil), script...)
	altered[len(altered)-1] = txscript.OP_NOP
	result = VerifyPath(altered, cb, spk)
	require.Equal(t, StatusMismatch, result.Status)
}

// TestVerifyPathIndeterminate 确保曲线失败得到不确定结果，而不是失败结论。
func TestVerifyPathIndeterminate(t *testing.T) {
	t.Parallel()

	script := hexToBytes(goldenScriptHex)
	raw, spk := commitment(t, script)
	cb, err := ParseControlBlock(raw)
	require.NoError(t, err)

	result := NewPathVerifier(failingCurve{}).Verify(script, cb, spk)
	require.Equal(t, StatusIndeterminate, result.Status)
	require.Equal(t, "lift failed", result.Reason)
	require.Nil(t, result.ExpectedScript)

	// An internal key that is not on the curve.
	bad := *cb
	for i := range bad.InternalKey {
		bad.InternalKey[i] = 0xff
	}
	result = VerifyPath(script, &bad, spk)
	require.Equal(t, StatusIndeterminate, result.Status)
	require.NotEmpty(t, result.Reason)

	result = VerifyPath(script, nil, spk)
	require.Equal(t, StatusIndeterminate, result.Status)
	require.Equal(t, ReasonMissingControlBlock, result.Reason)

	require.Equal(t, "indeterminate", StatusIndeterminate.String())
	require.Equal(t, "ok", StatusOK.String())
	require.Equal(t, "mismatch", StatusMismatch.String())
}

// TestVerifyPathOwnComposition 用本包的各个组件独立组合，确保与 Verify 一致。
func TestVerifyPathOwnComposition(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	internal := schnorr.SerializePubKey(privKey.PubKey())

	script := hexToBytes(goldenScriptHex)
	root := AscendMerklePath(LeafHashTagged(script, BaseLeafVersion), nil)
	outputKey, err := ComputeOutputKey(Secp256k1, internal, root[:])
	require.NoError(t, err)

	cb := &ControlBlock{
		LeafVersion: BaseLeafVersion,
		Parity:      outputKey.Parity,
	}
	copy(cb.InternalKey[:], internal)

	result := VerifyPath(script, cb, PayToTaprootScript(outputKey.XOnly))
	require.True(t, result.OK(), result.Reason)
}
