package ssv

import (
	"bytes"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// EncodeToBytes 使用 gob 编码将任意数据转换为 []byte
func EncodeToBytes(data interface{}) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := gob.NewEncoder(&buffer)

	if err := encoder.Encode(data); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// DecodeFromBytes 使用 gob 解码将 []byte 转换为指定的数据结构
func DecodeFromBytes(data []byte, result interface{}) error {
	decoder := gob.NewDecoder(bytes.NewBuffer(data))
	return decoder.Decode(result)
}

// ParseHex 解析名为 name 的十六进制参数，length 大于 0 时要求解码后恰好为 length 字节。
// 首尾空白会被忽略，大小写不敏感。
func ParseHex(name, s string, length int) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid hex for %s", name)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex for %s", name)
	}
	if length > 0 && len(b) != length {
		return nil, fmt.Errorf("%s must be %d bytes (got %d)", name,
			length, len(b))
	}
	return b, nil
}

const (
	logName = "ssv"
)

// SetLog 设置日志级别与输出，LogFile 打开时额外写入滚动的 JSON 日志文件
func SetLog(opt *Options) error {
	logrus.SetLevel(opt.LogLevel)
	logrus.SetOutput(colorable.NewColorableStderr())
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC822,
	})

	if !opt.LogFile {
		return nil
	}

	if err := os.MkdirAll(opt.LogsPath(), 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	// logrus 的回调钩子
	rotateFileHook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   filepath.Join(opt.LogsPath(), fmt.Sprintf("%s.log", logName)),
		MaxSize:    50, // 文件最大50M
		MaxBackups: 3,
		MaxAge:     28, // 存储28天
		Level:      opt.LogLevel,
		Formatter: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		},
	})
	if err != nil {
		return fmt.Errorf("初始化文件回调钩子失败: %w", err)
	}
	logrus.AddHook(rotateFileHook)

	return nil
}
