package main

import (
	"context"
	"fmt"

	flags "github.com/jessevdk/go-flags"
	"github.com/qinglongcn/ssv"
)

// config 定义全局选项，也可以写在 --config 指定的 INI 文件的 [Application Options] 段中
type config struct {
	ConfigFile string `short:"C" long:"config" description:"Path to an INI configuration file"`
	RootPath   string `long:"root" description:"Directory holding the policy store and log files"`
	Network    string `long:"network" description:"Network used to render addresses (mainnet, testnet3, signet, regtest)"`
	LogLevel   string `long:"log-level" description:"Logging level (trace, debug, info, warn, error)"`
	LogFile    bool   `long:"log-file" description:"Also write JSON logs to a rotating file under <root>/logs"`
	MemStore   bool   `long:"memstore" description:"Keep saved policies in memory only"`
}

func defaultConfig() config {
	opt := ssv.DefaultOptions()
	return config{
		RootPath: opt.RootPath,
		Network:  opt.Network,
		LogLevel: "warn",
	}
}

// loadConfigFile 预解析命令行取得 --config，再把 INI 文件载入 parser，
// 之后的命令行解析会覆盖文件中的值
func (app *cliApp) loadConfigFile(parser *flags.Parser, args []string) error {
	preCfg := app.cfg
	preParser := flags.NewParser(&preCfg, flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return err
	}
	if preCfg.ConfigFile == "" {
		return nil
	}

	f, err := app.fs.Open(preCfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := flags.NewIniParser(parser).Parse(f); err != nil {
		return fmt.Errorf("parse config file %s: %w", preCfg.ConfigFile, err)
	}
	return nil
}

// open 按全局选项设置日志并打开服务，withStore 为假时不打开策略库
func (app *cliApp) open(withStore bool) (*ssv.SSV, error) {
	opt := ssv.DefaultOptions()
	opt.BuildRootPath(app.cfg.RootPath)
	opt.BuildNetwork(app.cfg.Network)
	opt.BuildLogLevel(app.cfg.LogLevel)
	opt.LogFile = app.cfg.LogFile
	if app.cfg.MemStore {
		opt.BuildInMemoryStore()
	}
	opt.NoStore = !withStore

	if err := ssv.SetLog(opt); err != nil {
		return nil, err
	}
	return ssv.Open(context.Background(), opt, app.fs)
}
