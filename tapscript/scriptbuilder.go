// 包含构建 tapscript 字节序列的代码。

package tapscript

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	// defaultScriptAlloc 是 ScriptBuilder 默认预分配的脚本容量。
	// 模板脚本约 110 字节，500 字节足以容纳常见脚本。
	defaultScriptAlloc = 500

	// MaxTapscriptSize 是见证中允许携带的最大脚本长度。
	MaxTapscriptSize = 10000
)

// PushData 返回把 data 原样压栈所需的字节序列。
//
// 与 txscript.ScriptBuilder.AddData 不同，这里不会把 1 字节的小整数替换为 OP_1..OP_16
// 之类的小整数操作码，长度为 0 的数据编码为单个 0x00 长度字节。
func PushData(data []byte) []byte {
	dataLen := len(data)
	var prefix []byte
	switch {
	case dataLen <= txscript.OP_DATA_75:
		prefix = []byte{byte(dataLen)}

	case dataLen <= math.MaxUint8:
		prefix = []byte{txscript.OP_PUSHDATA1, byte(dataLen)}

	case dataLen <= math.MaxUint16:
		prefix = make([]byte, 3)
		prefix[0] = txscript.OP_PUSHDATA2
		binary.LittleEndian.PutUint16(prefix[1:], uint16(dataLen))

	default:
		prefix = make([]byte, 5)
		prefix[0] = txscript.OP_PUSHDATA4
		binary.LittleEndian.PutUint32(prefix[1:], uint32(dataLen))
	}

	out := make([]byte, 0, len(prefix)+dataLen)
	out = append(out, prefix...)
	return append(out, data...)
}

// CompactSize 返回 n 的比特币变长整数编码（1、3、5 或 9 字节）。
func CompactSize(n uint64) []byte {
	var buf bytes.Buffer
	buf.Grow(wire.VarIntSerializeSize(n))

	// Writes into a bytes.Buffer never fail.
	_ = wire.WriteVarInt(&buf, 0, n)
	return buf.Bytes()
}

// ScriptBuilder 提供了构建 tapscript 的便捷方式。
// 它不做规范化压栈：数据和脚本数字总是通过 PushData 原样写入。
//
// 例如，下面会构建一个 CSV 分支片段：
//
//	builder := tapscript.NewScriptBuilder()
//	builder.AddScriptNum(10).AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
//	builder.AddOp(txscript.OP_DROP).AddData(pubKey).AddOp(txscript.OP_CHECKSIG)
//	script := builder.Script()
type ScriptBuilder struct {
	script []byte
}

// ScriptBuilderOpt 是修改 ScriptBuilder 初始参数的函数选项。
type ScriptBuilderOpt func(*scriptBuilderConfig)

// scriptBuilderConfig 是 ScriptBuilder 的配置。
type scriptBuilderConfig struct {
	// allocSize 指定脚本的初始容量。
	allocSize int
}

// defaultScriptBuilderConfig 返回默认配置。
func defaultScriptBuilderConfig() *scriptBuilderConfig {
	return &scriptBuilderConfig{
		allocSize: defaultScriptAlloc,
	}
}

// WithScriptAllocSize 指定脚本的初始容量，避免追加时重复分配。
func WithScriptAllocSize(size int) ScriptBuilderOpt {
	return func(cfg *scriptBuilderConfig) {
		cfg.allocSize = size
	}
}

// NewScriptBuilder 返回一个新的 ScriptBuilder 实例。
func NewScriptBuilder(opts ...ScriptBuilderOpt) *ScriptBuilder {
	cfg := defaultScriptBuilderConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &ScriptBuilder{
		script: make([]byte, 0, cfg.allocSize),
	}
}

// AddOp 将传入的操作码追加到脚本末尾。
func (b *ScriptBuilder) AddOp(opcode byte) *ScriptBuilder {
	b.script = append(b.script, opcode)
	return b
}

// AddOps 将传入的多个操作码依次追加到脚本末尾。
func (b *ScriptBuilder) AddOps(opcodes []byte) *ScriptBuilder {
	b.script = append(b.script, opcodes...)
	return b
}

// AddData 以 PushData 编码追加数据。
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	b.script = append(b.script, PushData(data)...)
	return b
}

// AddScriptNum 以 PushData(ScriptNumber(n)) 追加一个脚本数字。
func (b *ScriptBuilder) AddScriptNum(n int64) *ScriptBuilder {
	return b.AddData(ScriptNumber(n))
}

// Script 返回当前构建的脚本的副本。
func (b *ScriptBuilder) Script() []byte {
	out := make([]byte, len(b.script))
	copy(out, b.script)
	return out
}
