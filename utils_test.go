package ssv

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// TestCodeAndByte 测试 EncodeToBytes 与 DecodeFromBytes 的往返
func TestCodeAndByte(t *testing.T) {
	t.Parallel()

	record := PolicyRecord{
		HashCommitment: bytes.Repeat([]byte{0x00}, 32),
		BorrowerKey:    bytes.Repeat([]byte{0x11}, 32),
		ProviderKey:    bytes.Repeat([]byte{0x22}, 32),
		CSVBlocks:      10,
	}

	encoded, err := EncodeToBytes(record)
	require.NoError(t, err)

	var decoded PolicyRecord
	require.NoError(t, DecodeFromBytes(encoded, &decoded))
	require.Equal(t, record.CSVBlocks, decoded.CSVBlocks)
	require.Equal(t, record.ProviderKey, decoded.ProviderKey)

	require.Error(t, DecodeFromBytes([]byte{0x01, 0x02}, &decoded))
}

// TestParseHex 测试十六进制参数解析
func TestParseHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		length  int
		want    []byte
		wantErr string
	}{
		{name: "lower", in: "aabb", want: []byte{0xaa, 0xbb}},
		{name: "upper", in: "AABB", want: []byte{0xaa, 0xbb}},
		{name: "whitespace", in: "  aabb\n", want: []byte{0xaa, 0xbb}},
		{name: "exact length", in: strings.Repeat("11", 32), length: 32, want: bytes.Repeat([]byte{0x11}, 32)},
		{name: "empty", in: "", wantErr: "x is required"},
		{name: "odd", in: "abc", wantErr: "invalid hex for x"},
		{name: "not hex", in: "zz", wantErr: "invalid hex for x"},
		{name: "wrong length", in: "aabb", length: 32, wantErr: "x must be 32 bytes (got 2)"},
	}

	for _, test := range tests {
		got, err := ParseHex("x", test.in, test.length)
		if test.wantErr != "" {
			require.EqualError(t, err, test.wantErr, test.name)
			continue
		}
		require.NoError(t, err, test.name)
		require.Equal(t, test.want, got, test.name)
	}
}

// TestSetLog 测试日志设置以及滚动日志文件的创建
func TestSetLog(t *testing.T) {
	opt := DefaultOptions()
	opt.BuildRootPath(t.TempDir())
	opt.BuildLogLevel("debug")
	opt.LogFile = true

	require.NoError(t, SetLog(opt))
	require.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.Debugf("[TestSetLog] %s", hex.EncodeToString([]byte("ok")))
	_, err := os.Stat(filepath.Join(opt.LogsPath(), "ssv.log"))
	require.NoError(t, err)

	// 恢复默认设置，避免影响其他测试。
	logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	opt.LogFile = false
	opt.BuildLogLevel("info")
	require.NoError(t, SetLog(opt))
	require.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

// TestOptions 测试选项设置与检查
func TestOptions(t *testing.T) {
	t.Parallel()

	opt := DefaultOptions()
	require.Equal(t, "mainnet", opt.Network)

	opt.BuildLogLevel("not-a-level")
	require.Equal(t, logrus.InfoLevel, opt.LogLevel)

	opt.BuildNetwork("regtest")
	params, err := opt.NetParams()
	require.NoError(t, err)
	require.Equal(t, "regtest", params.Name)

	opt.BuildRootPath("relative/root")
	require.NoError(t, opt.CheckAndSetOptions())
	require.True(t, strings.HasSuffix(opt.RootPath, "relative/root"))
	require.True(t, strings.HasSuffix(opt.DBPath(), "db"))

	opt.BuildNetwork("nowhere")
	require.Error(t, opt.CheckAndSetOptions())

	opt.IsOpen = true
	opt.BuildNetwork("signet")
	require.Equal(t, "nowhere", opt.Network)
	require.Error(t, opt.CheckAndSetOptions())
}
