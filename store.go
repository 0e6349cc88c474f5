package ssv

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

var (
	// ErrPolicyNotFound 表示策略库中没有该叶子哈希对应的记录
	ErrPolicyNotFound = errors.New("policy not found")

	policyKeyPrefix = []byte("policy/") // 策略记录的键前缀
)

// PolicyRecord 是保存在策略库中的一条托管策略
type PolicyRecord struct {
	HashCommitment []byte    // h = SHA256(s)
	BorrowerKey    []byte    // 借款人 x-only 公钥
	ProviderKey    []byte    // 提供方 x-only 公钥
	CSVBlocks      int64     // 相对时间锁区块数
	Tapscript      []byte    // 策略脚本
	LeafHashPlain  []byte    // 单次 SHA-256 叶子哈希，仅用于展示
	LeafHashTagged []byte    // TapLeaf 标签哈希，作为记录的键
	CreatedAt      time.Time // 创建时间
}

// PolicyStore 使用 badger 保存已构建的策略脚本
type PolicyStore struct {
	mu sync.Mutex
	db *badger.DB
}

// NewPolicyStore 打开 path 下的策略库，inMemory 为真时不落盘
func NewPolicyStore(path string, inMemory bool) (*PolicyStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts.ValueDir = path
	}
	opts = opts.WithLogger(nil)

	db, err := openDB(opts)
	if err != nil {
		return nil, err
	}
	return &PolicyStore{db: db}, nil
}

// openDB 打开数据库，如果因为其他进程持有 LOCK 文件打开失败，退避重试
func openDB(opts badger.Options) (*badger.DB, error) {
	db, err := badger.Open(opts)
	if err == nil {
		return db, nil
	}
	if !strings.Contains(err.Error(), "LOCK") {
		return nil, err
	}

	for i := 0; i < 3; i++ {
		logrus.Warnf("[openDB] 数据库被占用，%d 秒后重试", i+1)
		time.Sleep(time.Duration(i+1) * time.Second)

		db, err = badger.Open(opts)
		if err == nil {
			return db, nil
		}
	}
	return nil, fmt.Errorf("打开数据库失败: %w", err)
}

func policyKey(leafHash []byte) []byte {
	key := make([]byte, 0, len(policyKeyPrefix)+len(leafHash))
	key = append(key, policyKeyPrefix...)
	return append(key, leafHash...)
}

// Put 保存策略记录，已存在的同键记录会被覆盖
func (s *PolicyStore) Put(record *PolicyRecord) error {
	if len(record.LeafHashTagged) != chainhash.HashSize {
		return fmt.Errorf("叶子哈希必须是 %d 字节", chainhash.HashSize)
	}

	value, err := EncodeToBytes(record)
	if err != nil {
		logrus.Errorf("[PolicyStore.Put] 编码失败:\t%v", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(policyKey(record.LeafHashTagged), value)
	})
}

// Get 根据 TapLeaf 标签哈希读取策略记录
func (s *PolicyStore) Get(leafHash []byte) (*PolicyRecord, error) {
	var record PolicyRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(policyKey(leafHash))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrPolicyNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			return DecodeFromBytes(val, &record)
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List 按键的顺序返回全部策略记录
func (s *PolicyStore) List() ([]*PolicyRecord, error) {
	var records []*PolicyRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = policyKeyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record PolicyRecord
			if err := it.Item().Value(func(val []byte) error {
				return DecodeFromBytes(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete 删除策略记录，记录不存在时返回 ErrPolicyNotFound
func (s *PolicyStore) Delete(leafHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		key := policyKey(leafHash)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrPolicyNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// Close 关闭数据库
func (s *PolicyStore) Close() error {
	return s.db.Close()
}
