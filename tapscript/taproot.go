// 包含 Taproot 控制块的编解码与梅克尔路径计算。

package tapscript

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

const (
	// ControlBlockBaseSize 是控制块的基本尺寸。
	// 它包括叶子版本与奇偶位组合的首字节，以及 32 字节的内部公钥。
	ControlBlockBaseSize = 33

	// ControlBlockNodeSize 是控制块中每个梅克尔节点的大小。
	ControlBlockNodeSize = 32

	// ControlBlockMaxNodeCount 是控制块中可包含的最大节点数，对应深度为 128 的梅克尔树。
	ControlBlockMaxNodeCount = 128

	// ControlBlockMaxSize 是控制块的最大可能大小。
	ControlBlockMaxSize = ControlBlockBaseSize + (ControlBlockNodeSize *
		ControlBlockMaxNodeCount)

	// PayToTaprootScriptSize 是见证版本 1 输出脚本的长度。
	PayToTaprootScriptSize = 34
)

// ControlBlock 是花费 Taproot 脚本路径时揭示的控制块。
// 其中包括叶子版本、输出公钥 y 坐标的奇偶位、内部公钥以及从叶子到根的梅克尔节点。
type ControlBlock struct {
	// LeafVersion 是被揭示脚本的叶子版本。
	LeafVersion TapscriptLeafVersion

	// Parity 是输出公钥 y 坐标的奇偶位，取值 0 或 1。
	Parity uint8

	// InternalKey 是 32 字节 x-only 内部公钥，解析时不做曲线校验。
	InternalKey [32]byte

	// MerkleNodes 是从叶子到根依次使用的兄弟节点哈希。
	MerkleNodes [][32]byte
}

// ParseControlBlock 解析控制块的原始字节。
// 长度小于 33、超过最大尺寸或节点部分不是 32 字节整数倍时返回 StructuralError 类别的 Error。
func ParseControlBlock(ctrlBlock []byte) (*ControlBlock, error) {
	switch {
	case len(ctrlBlock) < ControlBlockBaseSize:
		str := fmt.Sprintf("min size is %v bytes, control block "+
			"is %v bytes", ControlBlockBaseSize, len(ctrlBlock))
		return nil, scriptError(ErrControlBlockTooSmall, str)

	case len(ctrlBlock) > ControlBlockMaxSize:
		str := fmt.Sprintf("max size is %v, control block is %v bytes",
			ControlBlockMaxSize, len(ctrlBlock))
		return nil, scriptError(ErrControlBlockTooLarge, str)

	case (len(ctrlBlock)-ControlBlockBaseSize)%ControlBlockNodeSize != 0:
		str := fmt.Sprintf("control block proof is not a multiple "+
			"of 32: %v", len(ctrlBlock)-ControlBlockBaseSize)
		return nil, scriptError(ErrControlBlockInvalidLength, str)
	}

	cb := &ControlBlock{
		LeafVersion: TapscriptLeafVersion(ctrlBlock[0] & TaprootLeafMask),
		Parity:      ctrlBlock[0] & 0x01,
	}
	copy(cb.InternalKey[:], ctrlBlock[1:ControlBlockBaseSize])

	proof := ctrlBlock[ControlBlockBaseSize:]
	numNodes := len(proof) / ControlBlockNodeSize
	cb.MerkleNodes = make([][32]byte, numNodes)
	for i := 0; i < numNodes; i++ {
		copy(cb.MerkleNodes[i][:], proof[i*ControlBlockNodeSize:])
	}

	return cb, nil
}

// Bytes 返回控制块的序列化形式，适合直接放入见证。
func (c *ControlBlock) Bytes() []byte {
	b := make([]byte, 0, ControlBlockBaseSize+
		ControlBlockNodeSize*len(c.MerkleNodes))

	// The first byte is the leaf version with its lowest bit carrying the
	// parity of the output key's y coordinate.
	b = append(b, byte(c.LeafVersion)&TaprootLeafMask|c.Parity&0x01)
	b = append(b, c.InternalKey[:]...)
	for i := range c.MerkleNodes {
		b = append(b, c.MerkleNodes[i][:]...)
	}
	return b
}

// tapBranchHash 按字典序排列两个子节点后计算 TapBranch 标签哈希。
func tapBranchHash(l, r []byte) chainhash.Hash {
	if bytes.Compare(l, r) > 0 {
		l, r = r, l
	}

	return *chainhash.TaggedHash(chainhash.TagTapBranch, l, r)
}

// AscendMerklePath 从叶子哈希开始，依次与 nodes 中的每个节点组合，返回梅克尔根。
// nodes 为空时返回叶子哈希本身，节点顺序不同结果不同。
func AscendMerklePath(leafHash chainhash.Hash, nodes [][32]byte) chainhash.Hash {
	current := leafHash
	for i := range nodes {
		current = tapBranchHash(current[:], nodes[i][:])
	}
	return current
}

// RootHash 根据被揭示的脚本计算控制块承诺的梅克尔根。
func (c *ControlBlock) RootHash(revealedScript []byte) chainhash.Hash {
	leafHash := LeafHashTagged(revealedScript, c.LeafVersion)
	return AscendMerklePath(leafHash, c.MerkleNodes)
}

// PayToTaprootScript 返回见证版本 1 输出脚本 OP_1 OP_DATA_32 <x>。
func PayToTaprootScript(outputKey [32]byte) []byte {
	script := make([]byte, 0, PayToTaprootScriptSize)
	script = append(script, txscript.OP_1, txscript.OP_DATA_32)
	return append(script, outputKey[:]...)
}
