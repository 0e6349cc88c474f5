// ssv 是托管策略脚本路径花费的命令行工具：构建脚本、最终化 PSBT、验证路径承诺。
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/spf13/afero"
)

// cliApp 保存一次命令行调用共享的状态
type cliApp struct {
	cfg config
	out io.Writer // 命令输出，日志写到标准错误
	fs  afero.Fs
}

func newCliApp(out io.Writer, fs afero.Fs) *cliApp {
	return &cliApp{
		cfg: defaultConfig(),
		out: out,
		fs:  fs,
	}
}

// newParser 创建带全部子命令的解析器
func newParser(app *cliApp) *flags.Parser {
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))

	parser := flags.NewParser(&app.cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = appName

	parser.AddCommand("build-tapscript",
		"Build the escrow tapscript and compute its tapleaf hashes",
		"Build IF SHA256 <h> EQUALVERIFY <pk_b> CHECKSIG ELSE <csv> CSV DROP "+
			"<pk_p> CHECKSIG ENDIF and print the script with both leaf hashes.",
		&buildCmd{app: app})
	parser.AddCommand("show-tapscript",
		"Disassemble a tapscript or show saved policies", "",
		&showCmd{app: app})
	parser.AddCommand("finalize",
		"Finalize a PSBT input with a Taproot script-path witness",
		"borrower mode spends the CLOSE (IF) branch with a preimage, "+
			"provider mode spends the LIQUIDATE (ELSE) branch after the timelock.",
		&finalizeCmd{app: app})
	parser.AddCommand("verify-path",
		"Verify a tapscript and control block against a witness scriptPubKey", "",
		&verifyPathCmd{app: app})
	parser.AddCommand("anchor-verify",
		"Verify that a PSBT output matches an expected scriptPubKey and value", "",
		&anchorVerifyCmd{app: app})
	parser.AddCommand("opret-verify",
		"Verify that a PSBT output is an OP_RETURN carrying the expected data", "",
		&opretVerifyCmd{app: app})
	parser.AddCommand("xonly-key",
		"Convert a compressed public key or derive an x-only key from an extended key", "",
		&xonlyKeyCmd{app: app})
	parser.AddCommand("new-preimage",
		"Generate a preimage s and its hash commitment h = SHA256(s)", "",
		&newPreimageCmd{app: app})

	return parser
}

// run 解析参数并执行对应的子命令
func run(app *cliApp, args []string) error {
	parser := newParser(app)
	if err := app.loadConfigFile(parser, args); err != nil {
		return err
	}

	_, err := parser.ParseArgs(args)
	return err
}

// realMain 是真正的入口，使 defer 在 os.Exit 之前执行
func realMain() error {
	app := newCliApp(os.Stdout, afero.NewOsFs())
	if err := run(app, os.Args[1:]); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, e.Message)
			return nil
		}
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return err
	}
	return nil
}

func main() {
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
