// 包含 tapscript 叶子哈希的计算逻辑。

package tapscript

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// TapscriptLeafVersion 表示 tapscript 叶子的版本。
type TapscriptLeafVersion uint8

const (
	// BaseLeafVersion 是 BIP-342 定义的基础叶子版本。
	BaseLeafVersion TapscriptLeafVersion = 0xc0

	// TaprootLeafMask 用于从控制块首字节中取出叶子版本。
	TaprootLeafMask = 0xfe
)

// leafPreimage 返回 leaf_version || compact_size(len(script)) || script。
func leafPreimage(script []byte, leafVersion TapscriptLeafVersion) []byte {
	size := CompactSize(uint64(len(script)))

	preimage := make([]byte, 0, 1+len(size)+len(script))
	preimage = append(preimage, byte(leafVersion))
	preimage = append(preimage, size...)
	return append(preimage, script...)
}

// LeafHashPlain 返回叶子原像的单次 SHA-256。
// 它只用于展示，不参与任何验证。
func LeafHashPlain(script []byte, leafVersion TapscriptLeafVersion) chainhash.Hash {
	return chainhash.HashH(leafPreimage(script, leafVersion))
}

// LeafHashTagged 返回 BIP-341 定义的 TapLeaf 标签哈希。
func LeafHashTagged(script []byte, leafVersion TapscriptLeafVersion) chainhash.Hash {
	return *chainhash.TaggedHash(
		chainhash.TagTapLeaf, leafPreimage(script, leafVersion),
	)
}
