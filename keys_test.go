package ssv

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip32"
)

// TestXOnlyFromCompressed 测试压缩公钥到 x-only 公钥的转换
func TestXOnlyFromCompressed(t *testing.T) {
	t.Parallel()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	compressed := privKey.PubKey().SerializeCompressed()

	xOnly, err := XOnlyFromCompressed(compressed)
	require.NoError(t, err)
	require.Equal(t, compressed[1:], xOnly)
	require.Equal(t, schnorr.SerializePubKey(privKey.PubKey()), xOnly)

	_, err = XOnlyFromCompressed(compressed[1:])
	require.Error(t, err)
}

// TestParseDerivationPath 测试派生路径解析
func TestParseDerivationPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []uint32
		err  bool
	}{
		{in: "m", want: nil},
		{in: "", want: nil},
		{in: "m/0/1", want: []uint32{0, 1}},
		{in: "0/1", want: []uint32{0, 1}},
		{in: "m/86'/0h/5", want: []uint32{bip32.FirstHardenedChild + 86, bip32.FirstHardenedChild, 5}},
		{in: "m/x", err: true},
		{in: "m/2147483648", err: true},
	}

	for _, test := range tests {
		got, err := ParseDerivationPath(test.in)
		if test.err {
			require.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		require.Equal(t, test.want, got, test.in)
	}
}

// TestDeriveXOnlyKey 确保从扩展公钥派生与从扩展私钥派生得到同一个 x-only 公钥
func TestDeriveXOnlyKey(t *testing.T) {
	t.Parallel()

	seed := sha256.Sum256([]byte("ssv test seed"))
	master, err := bip32.NewMasterKey(seed[:])
	require.NoError(t, err)

	child, err := master.NewChildKey(0)
	require.NoError(t, err)
	grandChild, err := child.NewChildKey(7)
	require.NoError(t, err)
	want, err := XOnlyFromCompressed(grandChild.PublicKey().Key)
	require.NoError(t, err)

	fromPub, err := DeriveXOnlyKey(master.PublicKey().B58Serialize(), "m/0/7")
	require.NoError(t, err)
	require.Equal(t, want, fromPub)

	fromPriv, err := DeriveXOnlyKey(master.B58Serialize(), "0/7")
	require.NoError(t, err)
	require.Equal(t, want, fromPriv)

	// 扩展公钥不能做强化派生。
	_, err = DeriveXOnlyKey(master.PublicKey().B58Serialize(), "m/0'")
	require.Error(t, err)

	_, err = DeriveXOnlyKey("xpub-garbage", "m/0")
	require.Error(t, err)
}

// TestPreimage 测试随机与派生原像及其哈希承诺
func TestPreimage(t *testing.T) {
	t.Parallel()

	s1, h1, err := NewPreimage()
	require.NoError(t, err)
	require.Equal(t, sha256.Sum256(s1[:]), h1)

	s2, _, err := NewPreimage()
	require.NoError(t, err)
	require.False(t, bytes.Equal(s1[:], s2[:]))

	d1, dh1, err := DerivePreimage("correct horse", "loan-1")
	require.NoError(t, err)
	require.Equal(t, sha256.Sum256(d1[:]), dh1)

	d2, _, err := DerivePreimage("correct horse", "loan-1")
	require.NoError(t, err)
	require.Equal(t, d1, d2)

	d3, _, err := DerivePreimage("correct horse", "loan-2")
	require.NoError(t, err)
	require.NotEqual(t, d1, d3)

	_, _, err = DerivePreimage("", "loan-1")
	require.Error(t, err)
}
