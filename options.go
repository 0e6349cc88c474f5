package ssv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/sirupsen/logrus"
)

const (
	dbDirName   = "db"   // 数据库目录名
	logsDirName = "logs" // 日志目录名
)

// Options 是用于创建 SSV 服务对象的参数
type Options struct {
	RootPath      string       // 文件根路径，数据库与日志都在其下
	LogLevel      logrus.Level // 日志级别
	LogFile       bool         // 是否写入滚动日志文件
	InMemoryStore bool         // 策略库是否只保存在内存中，测试时使用
	NoStore       bool         // 是否完全不打开策略库
	Network       string       // 网络名称：mainnet、testnet3、signet、regtest

	IsOpen bool `optional:"false" default:"false"` // 服务实例是否已打开
}

// DefaultOptions 设置一个推荐选项列表
func DefaultOptions() *Options {
	return &Options{
		RootPath:      defaultRootPath(),
		LogLevel:      logrus.InfoLevel,
		LogFile:       false,
		InMemoryStore: false,
		NoStore:       false,
		Network:       chaincfg.MainNetParams.Name,
	}
}

// defaultRootPath 返回用户目录下的默认根路径
func defaultRootPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ssv"
	}
	return filepath.Join(home, ".ssv")
}

// BuildRootPath 设置文件根路径
func (opt *Options) BuildRootPath(path string) {
	if opt.IsOpen || path == "" { // 服务实例已打开
		return
	}
	opt.RootPath = path
}

// BuildLogLevel 设置日志级别，无法解析时保持原值
func (opt *Options) BuildLogLevel(level string) {
	if level == "" {
		return
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("[BuildLogLevel] 无法解析日志级别 %q:\t%v", level, err)
		return
	}
	opt.LogLevel = lvl
}

// BuildNetwork 设置网络名称
func (opt *Options) BuildNetwork(network string) {
	if opt.IsOpen || network == "" {
		return
	}
	opt.Network = network
}

// BuildInMemoryStore 设置为内存策略库
func (opt *Options) BuildInMemoryStore() {
	if opt.IsOpen {
		return
	}
	opt.InMemoryStore = true
}

// DBPath 返回策略库目录
func (opt *Options) DBPath() string {
	return filepath.Join(opt.RootPath, dbDirName)
}

// LogsPath 返回日志目录
func (opt *Options) LogsPath() string {
	return filepath.Join(opt.RootPath, logsDirName)
}

// NetParams 返回网络名称对应的链参数
func (opt *Options) NetParams() (*chaincfg.Params, error) {
	switch opt.Network {
	case "", chaincfg.MainNetParams.Name:
		return &chaincfg.MainNetParams, nil
	case chaincfg.TestNet3Params.Name:
		return &chaincfg.TestNet3Params, nil
	case chaincfg.SigNetParams.Name:
		return &chaincfg.SigNetParams, nil
	case chaincfg.RegressionNetParams.Name:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("未知网络 %q", opt.Network)
	}
}

// CheckAndSetOptions 检查并设置选项
func (opt *Options) CheckAndSetOptions() error {
	if opt.IsOpen { // 服务实例已打开
		return fmt.Errorf("服务实例已打开")
	}
	if _, err := opt.NetParams(); err != nil {
		return err
	}
	if opt.RootPath == "" {
		opt.RootPath = defaultRootPath()
	}
	if !filepath.IsAbs(opt.RootPath) {
		abs, err := filepath.Abs(opt.RootPath)
		if err != nil {
			return fmt.Errorf("无法解析根路径: %w", err)
		}
		opt.RootPath = abs
	}

	return nil
}
