package ssv

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// TestVerifyAnchorOutput 测试锚定输出的脚本与金额检查
func TestVerifyAnchorOutput(t *testing.T) {
	t.Parallel()

	good := append([]byte{0x51, 0x20}, bytes.Repeat([]byte{0x22}, 32)...)
	bad := append([]byte{0x51, 0x20}, bytes.Repeat([]byte{0x00}, 32)...)
	tx := newTestPacket(t, []*wire.TxOut{wire.NewTxOut(9999, good)}, nil).UnsignedTx

	tests := []struct {
		name   string
		index  int
		spk    []byte
		value  int64
		ok     bool
		reason string
		err    bool
	}{
		{name: "match", spk: good, value: 9999, ok: true},
		{name: "spk mismatch", spk: bad, value: 9999, reason: ReasonSpkMismatch},
		{name: "spk checked first", spk: bad, value: 1, reason: ReasonSpkMismatch},
		{name: "value mismatch", spk: good, value: 1, reason: ReasonValueMismatch},
		{name: "negative value", spk: good, value: -1, err: true},
		{name: "index out of range", index: 1, spk: good, value: 9999, err: true},
		{name: "missing spk", value: 9999, err: true},
	}

	for _, test := range tests {
		check, err := VerifyAnchorOutput(tx, test.index, test.spk, test.value)
		if test.err {
			require.Error(t, err, test.name)
			continue
		}
		require.NoError(t, err, test.name)
		require.Equal(t, test.ok, check.OK, test.name)
		require.Equal(t, test.reason, check.Reason, test.name)
		require.Equal(t, good, check.ActualSpk, test.name)
		require.Equal(t, int64(9999), check.ActualValue, test.name)
		require.Equal(t, "witness_v1_taproot", check.ScriptClass, test.name)
	}

	_, err := VerifyAnchorOutput(nil, 0, good, 0)
	require.Error(t, err)
}

// TestVerifyOpReturnOutput 测试 OP_RETURN 输出检查
func TestVerifyOpReturnOutput(t *testing.T) {
	t.Parallel()

	data := []byte{0xaa, 0xbb, 0xcc}
	spk := OpReturnScript(data)
	require.Equal(t, []byte{0x6a, 0x03, 0xaa, 0xbb, 0xcc}, spk)

	tx := newTestPacket(t, []*wire.TxOut{wire.NewTxOut(0, spk)}, nil).UnsignedTx

	check, err := VerifyOpReturnOutput(tx, 0, data, nil)
	require.NoError(t, err)
	require.True(t, check.OK)
	require.Equal(t, "nulldata", check.ScriptClass)

	check, err = VerifyOpReturnOutput(tx, 0, []byte{0xde, 0xad, 0xbe, 0xef}, nil)
	require.NoError(t, err)
	require.False(t, check.OK)
	require.Equal(t, ReasonSpkMismatch, check.Reason)

	value := int64(1)
	check, err = VerifyOpReturnOutput(tx, 0, data, &value)
	require.NoError(t, err)
	require.Equal(t, ReasonValueMismatch, check.Reason)

	value = -5
	_, err = VerifyOpReturnOutput(tx, 0, data, &value)
	require.EqualError(t, err, "value must be non-negative")

	got, err := OpReturnData(spk)
	require.NoError(t, err)
	require.Equal(t, data, got)

	_, err = OpReturnData([]byte{0x51})
	require.Error(t, err)

	// 76 字节的数据使用 OP_PUSHDATA1。
	long := bytes.Repeat([]byte{0x01}, 76)
	require.Equal(t, []byte{0x6a, 0x4c, 76}, OpReturnScript(long)[:3])
}
