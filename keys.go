package ssv

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/tyler-smith/go-bip32"
	"golang.org/x/crypto/pbkdf2"
)

const (
	preimageSaltPrefix = "ssv-preimage" // 派生原像时的盐前缀
	preimageIterations = 2048           // PBKDF2 迭代次数
)

// XOnlyFromCompressed 将 33 字节压缩公钥转换为 32 字节 x-only 公钥
func XOnlyFromCompressed(compressed []byte) ([]byte, error) {
	pubKey, err := btcec.ParsePubKey(compressed)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return schnorr.SerializePubKey(pubKey), nil
}

// ParseDerivationPath 解析形如 m/86'/0'/0'/0/1 的派生路径，' 或 h 表示强化派生
func ParseDerivationPath(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(strings.TrimPrefix(path, "m"), "/")
	if path == "" {
		return nil, nil
	}

	parts := strings.Split(path, "/")
	indexes := make([]uint32, 0, len(parts))
	for _, part := range parts {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		part = strings.TrimRight(part, "'h")

		n, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("invalid path element %q: %w", part, err)
		}
		index := uint32(n)
		if hardened {
			index += bip32.FirstHardenedChild
		}
		indexes = append(indexes, index)
	}
	return indexes, nil
}

// DeriveXOnlyKey 从 base58 扩展密钥沿 path 派生子公钥，返回其 x-only 形式
func DeriveXOnlyKey(extendedKey, path string) ([]byte, error) {
	key, err := bip32.B58Deserialize(strings.TrimSpace(extendedKey))
	if err != nil {
		return nil, fmt.Errorf("invalid extended key: %w", err)
	}

	indexes, err := ParseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	for _, index := range indexes {
		if key, err = key.NewChildKey(index); err != nil {
			return nil, fmt.Errorf("derive child %d: %w", index, err)
		}
	}

	return XOnlyFromCompressed(key.PublicKey().Key)
}

// NewPreimage 生成随机 32 字节原像 s 及其哈希承诺 h = SHA256(s)
func NewPreimage() (preimage, hash [32]byte, err error) {
	if _, err = rand.Read(preimage[:]); err != nil {
		return preimage, hash, fmt.Errorf("生成原像失败: %w", err)
	}
	return preimage, sha256.Sum256(preimage[:]), nil
}

// DerivePreimage 用 PBKDF2-HMAC-SHA512 从口令派生原像，相同的口令与盐总是得到相同的原像
func DerivePreimage(passphrase, salt string) (preimage, hash [32]byte, err error) {
	if passphrase == "" {
		return preimage, hash, fmt.Errorf("passphrase is required")
	}

	key := pbkdf2.Key([]byte(passphrase), []byte(preimageSaltPrefix+salt),
		preimageIterations, len(preimage), sha512.New)
	copy(preimage[:], key)
	return preimage, sha256.Sum256(preimage[:]), nil
}
