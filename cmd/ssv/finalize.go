package main

import (
	"fmt"
	"strings"

	"github.com/qinglongcn/ssv"
	"github.com/qinglongcn/ssv/tapscript"
	"github.com/sirupsen/logrus"
)

const (
	modeBorrower = "borrower" // CLOSE 分支
	modeProvider = "provider" // LIQUIDATE 分支
)

// finalizeCmd 定义 finalize 命令的选项
type finalizeCmd struct {
	Mode       string `long:"mode" required:"true" choice:"borrower" choice:"provider" description:"borrower=CLOSE (IF); provider=LIQUIDATE (ELSE)"`
	PSBTIn     string `long:"psbt-in" required:"true" description:"Input PSBT file (base64 or hex)"`
	PSBTOut    string `long:"psbt-out" required:"true" description:"Output PSBT file (base64)"`
	TxOut      string `long:"tx-out" description:"Optional raw transaction hex file to write"`
	InputIndex int    `long:"input-index" description:"Which input to finalize"`
	Sig        string `long:"sig" required:"true" description:"Schnorr signature hex (64 or 65 bytes)"`
	Preimage   string `long:"preimage" description:"Borrower mode only: preimage s hex"`

	Control     string `long:"control" description:"Taproot control block hex"`
	ControlFile string `long:"control-file" description:"Read control block hex from file"`

	Tapscript     string `long:"tapscript" description:"Explicit tapscript hex for this path"`
	TapscriptFile string `long:"tapscript-file" description:"Read tapscript hex from file"`
	LeafHash      string `long:"leaf-hash" description:"Use the saved policy with this tagged leaf hash"`
	policyFlags

	AnchorIndex int    `long:"require-anchor-index" description:"Output index that must carry the anchor"`
	AnchorSpk   string `long:"require-anchor-spk" description:"Expected anchor scriptPubKey hex; enables the anchor guard"`
	AnchorValue int64  `long:"require-anchor-value" description:"Expected anchor value in sats"`
	OpretIndex  int    `long:"require-opret-index" description:"Output index that must carry the OP_RETURN"`
	OpretData   string `long:"require-opret-data" description:"Expected OP_RETURN data hex; enables the OP_RETURN guard"`

	Verify bool `long:"verify" description:"Verify the path against the input witness_utxo before finalizing"`

	app *cliApp
}

// request 把命令行选项转换为最终化请求
func (cmd *finalizeCmd) request(files *ssv.FileStore) (*ssv.FinalizeRequest, error) {
	req := &ssv.FinalizeRequest{
		InputIndex: cmd.InputIndex,
		VerifyPath: cmd.Verify,
	}

	var err error
	switch cmd.Mode {
	case modeBorrower:
		req.Branch = tapscript.BranchClose
		if strings.TrimSpace(cmd.Preimage) == "" {
			return nil, fmt.Errorf("--preimage required in borrower mode")
		}
		if req.Preimage, err = ssv.ParseHex("preimage", cmd.Preimage, tapscript.PreimageSize); err != nil {
			return nil, err
		}
	case modeProvider:
		req.Branch = tapscript.BranchLiquidate
		if cmd.Preimage != "" {
			logrus.Warnf("--preimage is ignored in provider mode")
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", cmd.Mode)
	}

	switch {
	case cmd.Tapscript != "" || cmd.TapscriptFile != "":
		req.Tapscript, err = files.HexOrFile("tapscript", cmd.Tapscript, cmd.TapscriptFile, 0)
	case cmd.LeafHash != "":
		req.LeafHash, err = ssv.ParseHex("leaf-hash", cmd.LeafHash, 32)
	case cmd.policyFlags.given():
		var params tapscript.PolicyParams
		if params, err = cmd.params(); err == nil {
			req.Params = &params
		}
	}
	if err != nil {
		return nil, err
	}

	if req.ControlBlock, err = files.HexOrFile("control", cmd.Control, cmd.ControlFile, 0); err != nil {
		return nil, err
	}
	if req.Signature, err = ssv.ParseHex("sig", cmd.Sig, 0); err != nil {
		return nil, err
	}
	if req.PSBT, err = files.ReadFile(cmd.PSBTIn); err != nil {
		return nil, err
	}

	if cmd.AnchorSpk != "" {
		spk, err := ssv.ParseHex("require-anchor-spk", cmd.AnchorSpk, 0)
		if err != nil {
			return nil, err
		}
		req.AnchorGuard = &ssv.AnchorGuard{
			Index: cmd.AnchorIndex,
			Spk:   spk,
			Value: cmd.AnchorValue,
		}
	}
	if cmd.OpretData != "" {
		data, err := ssv.ParseHex("require-opret-data", cmd.OpretData, 0)
		if err != nil {
			return nil, err
		}
		req.OpReturnGuard = &ssv.OpReturnGuard{
			Index: cmd.OpretIndex,
			Data:  data,
		}
	}
	return req, nil
}

// Execute 是 finalize 命令的入口
func (cmd *finalizeCmd) Execute(_ []string) error {
	s, err := cmd.app.open(cmd.LeafHash != "")
	if err != nil {
		return err
	}
	defer s.Close()

	req, err := cmd.request(s.Files())
	if err != nil {
		return err
	}
	result, err := s.Finalize(req)
	if err != nil {
		return err
	}

	if err := s.Files().WriteFile(cmd.PSBTOut, []byte(result.PSBTBase64)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.app.out, "finalized input %d (%s), PSBT written to %s\n",
		cmd.InputIndex, req.Branch, cmd.PSBTOut)

	if cmd.TxOut == "" {
		return nil
	}
	if result.ExtractErr != nil {
		logrus.Warnf("could not produce raw tx: %v", result.ExtractErr)
		fmt.Fprintln(cmd.app.out, "finalized PSBT written; raw transaction not available yet")
		return nil
	}
	if err := s.Files().WriteFile(cmd.TxOut, []byte(result.RawTxHex)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.app.out, "raw transaction written to %s\n", cmd.TxOut)
	return nil
}
