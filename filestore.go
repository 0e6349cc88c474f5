// 定义共享的文件读写操作
package ssv

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileStore 封装了文件存储的操作，相对路径基于 BasePath 解析
type FileStore struct {
	Fs       afero.Fs
	BasePath string
}

// NewFileStore 创建一个新的FileStore实例，fs 为 nil 时使用操作系统文件系统
func NewFileStore(fs afero.Fs, basePath string) (*FileStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if basePath != "" {
		if err := fs.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &FileStore{Fs: fs, BasePath: basePath}, nil
}

// resolve 返回文件的实际路径
func (fs *FileStore) resolve(path string) string {
	if filepath.IsAbs(path) || fs.BasePath == "" {
		return path
	}
	return filepath.Join(fs.BasePath, path)
}

// ReadFile 读取文件的全部内容
func (fs *FileStore) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(fs.Fs, fs.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// ReadText 读取文件内容并去掉首尾空白
func (fs *FileStore) ReadText(path string) (string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteFile 写入文件，必要时创建父目录
func (fs *FileStore) WriteFile(path string, data []byte) error {
	full := fs.resolve(path)
	if dir := filepath.Dir(full); dir != "." {
		if err := fs.Fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs.Fs, full, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// HexOrFile 优先解析 hexValue，其次读取 path 中的十六进制文本，两者都没有时返回错误
func (fs *FileStore) HexOrFile(name, hexValue, path string, length int) ([]byte, error) {
	if strings.TrimSpace(hexValue) != "" {
		return ParseHex(name, hexValue, length)
	}
	if path != "" {
		text, err := fs.ReadText(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return ParseHex(name, text, length)
	}
	return nil, fmt.Errorf("%s required", name)
}
