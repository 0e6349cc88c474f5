package ssv

import (
	"context"
	"fmt"

	"github.com/qinglongcn/ssv/tapscript"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.uber.org/fx"
)

// SSV 提供了构建、最终化与验证托管策略花费所需的各种函数
type SSV struct {
	ctx      context.Context         // 全局上下文
	opt      *Options                // 选项配置
	files    *FileStore              // 文件读写
	store    *PolicyStore            // 策略库，NoStore 时为 nil
	verifier *tapscript.PathVerifier // 路径验证器
	app      *fx.App                 // 依赖注入容器
}

// Open 返回一个新的 SSV 服务对象，fs 为 nil 时使用操作系统文件系统
func Open(ctx context.Context, opt *Options, fs afero.Fs) (*SSV, error) {
	// 1. 检查并设置选项
	if err := opt.CheckAndSetOptions(); err != nil {
		return nil, err
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	s := &SSV{
		ctx: ctx,
		opt: opt,
	}

	// fx 配置项
	opts := []fx.Option{
		fx.NopLogger,
		s.globalInit(fs),
		fx.Provide(
			NewFileStoreService,   // 文件读写
			NewPolicyStoreService, // 策略库
			NewPathVerifier,       // 路径验证器
		),
		fx.Populate(
			&s.files,
			&s.store,
			&s.verifier,
		),
	}
	s.app = fx.New(opts...)
	if err := s.app.Err(); err != nil {
		logrus.Errorf("[Open] 依赖注入失败:\t%v", err)
		return nil, err
	}

	if err := s.app.Start(ctx); err != nil {
		logrus.Errorf("[Open] 启动失败:\t%v", err)
		return nil, err
	}

	opt.IsOpen = true // 服务实例已打开
	return s, nil
}

// Close 停止服务并关闭策略库
func (s *SSV) Close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Stop(s.ctx)
	s.opt.IsOpen = false
	return err
}

// Options 返回服务使用的选项
func (s *SSV) Options() *Options {
	return s.opt
}

// Files 返回服务使用的文件存储
func (s *SSV) Files() *FileStore {
	return s.files
}

// globalInit 提供全局对象
func (s *SSV) globalInit(fs afero.Fs) fx.Option {
	return fx.Provide(
		func() context.Context {
			return s.ctx
		},
		func() *Options {
			return s.opt
		},
		func() afero.Fs {
			return fs
		},
		func() tapscript.Curve {
			return tapscript.Secp256k1
		},
	)
}

type NewFileStoreInput struct {
	fx.In

	Opt *Options // 选项配置
	Fs  afero.Fs // 文件系统
}

type NewFileStoreOutput struct {
	fx.Out

	Files *FileStore // 文件读写
}

// NewFileStoreService 创建以当前工作目录为基准的文件存储
func NewFileStoreService(input NewFileStoreInput) (out NewFileStoreOutput, err error) {
	files, err := NewFileStore(input.Fs, "")
	if err != nil {
		logrus.Errorf("[NewFileStoreService] 创建失败:\t%v", err)
		return out, err
	}

	out.Files = files
	return out, nil
}

type NewPolicyStoreInput struct {
	fx.In

	Opt *Options // 选项配置
}

type NewPolicyStoreOutput struct {
	fx.Out

	Store *PolicyStore // 策略库
}

// NewPolicyStoreService 打开策略库，并在服务停止时关闭它
func NewPolicyStoreService(lc fx.Lifecycle, input NewPolicyStoreInput) (out NewPolicyStoreOutput, err error) {
	if input.Opt.NoStore {
		return out, nil
	}

	store, err := NewPolicyStore(input.Opt.DBPath(), input.Opt.InMemoryStore)
	if err != nil {
		logrus.Errorf("[NewPolicyStoreService] 打开策略库失败:\t%v", err)
		return out, fmt.Errorf("打开策略库失败: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return store.Close()
		},
	})

	out.Store = store
	return out, nil
}

// NewPathVerifier 使用注入的曲线实现创建路径验证器
func NewPathVerifier(curve tapscript.Curve) *tapscript.PathVerifier {
	return tapscript.NewPathVerifier(curve)
}
