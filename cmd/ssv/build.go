package main

import (
	"encoding/hex"
	"fmt"

	"github.com/qinglongcn/ssv"
	"github.com/qinglongcn/ssv/tapscript"
)

// policyFlags 是构建策略脚本所需的参数
type policyFlags struct {
	HashH      string `long:"hash-h" description:"SHA256(s) hash commitment, 32 bytes hex"`
	BorrowerPk string `long:"borrower-pk" description:"Borrower x-only public key, 32 bytes hex"`
	CSVBlocks  int64  `long:"csv-blocks" description:"Relative timelock in blocks (1-65535)"`
	ProviderPk string `long:"provider-pk" description:"Provider x-only public key, 32 bytes hex"`
}

// given 报告是否提供了任意一个策略参数
func (f *policyFlags) given() bool {
	return f.HashH != "" || f.BorrowerPk != "" || f.CSVBlocks != 0 || f.ProviderPk != ""
}

// params 解析十六进制参数，取值范围由 PolicyParams.Validate 检查
func (f *policyFlags) params() (tapscript.PolicyParams, error) {
	var (
		p   tapscript.PolicyParams
		err error
	)
	if p.HashCommitment, err = ssv.ParseHex("hash-h", f.HashH, tapscript.HashCommitmentSize); err != nil {
		return p, err
	}
	if p.BorrowerKey, err = ssv.ParseHex("borrower-pk", f.BorrowerPk, tapscript.XOnlyKeySize); err != nil {
		return p, err
	}
	if p.ProviderKey, err = ssv.ParseHex("provider-pk", f.ProviderPk, tapscript.XOnlyKeySize); err != nil {
		return p, err
	}
	p.CSVBlocks = f.CSVBlocks
	return p, p.Validate()
}

// buildCmd 定义 build-tapscript 命令的选项
type buildCmd struct {
	policyFlags

	Disasm bool `long:"disasm" description:"Print the script disassembly"`
	JSON   bool `long:"json" description:"Print JSON output"`
	Save   bool `long:"save" description:"Save the policy in the policy store"`

	app *cliApp
}

type buildOutput struct {
	TapscriptHex      string `json:"tapscript_hex"`
	TapleafHashSimple string `json:"tapleaf_hash_simple"`
	TapleafHashTagged string `json:"tapleaf_hash_tagged"`
	Disasm            string `json:"disasm,omitempty"`
	Saved             bool   `json:"saved,omitempty"`
}

// Execute 是 build-tapscript 命令的入口
func (cmd *buildCmd) Execute(_ []string) error {
	params, err := cmd.params()
	if err != nil {
		return err
	}

	s, err := cmd.app.open(cmd.Save)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Build(params, cmd.Save)
	if err != nil {
		return err
	}

	out := buildOutput{
		TapscriptHex:      hex.EncodeToString(result.Tapscript),
		TapleafHashSimple: hex.EncodeToString(result.LeafHashPlain[:]),
		TapleafHashTagged: hex.EncodeToString(result.LeafHashTagged[:]),
		Saved:             result.Saved,
	}
	if cmd.Disasm {
		out.Disasm = result.Disasm
	}
	if cmd.JSON {
		return writeJSON(cmd.app.out, out)
	}

	w := cmd.app.out
	writeField(w, 19, "tapscript_hex", out.TapscriptHex)
	writeField(w, 19, "tapleaf_hash_simple", out.TapleafHashSimple)
	writeField(w, 19, "tapleaf_hash_tagged", out.TapleafHashTagged)
	if cmd.Disasm {
		writeField(w, 19, "disasm", out.Disasm)
	}
	if out.Saved {
		fmt.Fprintln(w, "policy saved")
	}
	return nil
}

// showCmd 定义 show-tapscript 命令的选项
type showCmd struct {
	Tapscript     string `long:"tapscript" description:"Tapscript hex"`
	TapscriptFile string `long:"tapscript-file" description:"Read tapscript hex from file"`
	LeafHash      string `long:"leaf-hash" description:"Show the saved policy with this tagged leaf hash"`
	List          bool   `long:"list" description:"List all saved policies"`
	Delete        string `long:"delete" description:"Delete the saved policy with this tagged leaf hash"`
	JSON          bool   `long:"json" description:"Print JSON output"`

	app *cliApp
}

type policyOutput struct {
	TapleafHashTagged string `json:"tapleaf_hash_tagged"`
	TapleafHashSimple string `json:"tapleaf_hash_simple"`
	TapscriptHex      string `json:"tapscript_hex"`
	Disasm            string `json:"disasm"`
	HashH             string `json:"hash_h,omitempty"`
	BorrowerPk        string `json:"borrower_pk,omitempty"`
	ProviderPk        string `json:"provider_pk,omitempty"`
	CSVBlocks         int64  `json:"csv_blocks,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
}

func scriptOutput(script []byte) (policyOutput, error) {
	disasm, err := tapscript.Disasm(script)
	if err != nil {
		return policyOutput{}, err
	}
	plain := tapscript.LeafHashPlain(script, tapscript.BaseLeafVersion)
	tagged := tapscript.LeafHashTagged(script, tapscript.BaseLeafVersion)
	return policyOutput{
		TapleafHashTagged: hex.EncodeToString(tagged[:]),
		TapleafHashSimple: hex.EncodeToString(plain[:]),
		TapscriptHex:      hex.EncodeToString(script),
		Disasm:            disasm,
	}, nil
}

func recordOutput(record *ssv.PolicyRecord) (policyOutput, error) {
	out, err := scriptOutput(record.Tapscript)
	if err != nil {
		return out, err
	}
	out.HashH = hex.EncodeToString(record.HashCommitment)
	out.BorrowerPk = hex.EncodeToString(record.BorrowerKey)
	out.ProviderPk = hex.EncodeToString(record.ProviderKey)
	out.CSVBlocks = record.CSVBlocks
	out.CreatedAt = record.CreatedAt.Format("2006-01-02 15:04:05")
	return out, nil
}

// Execute 是 show-tapscript 命令的入口
func (cmd *showCmd) Execute(_ []string) error {
	withStore := cmd.List || cmd.LeafHash != "" || cmd.Delete != ""
	s, err := cmd.app.open(withStore)
	if err != nil {
		return err
	}
	defer s.Close()

	if cmd.Delete != "" {
		leafHash, err := ssv.ParseHex("delete", cmd.Delete, 32)
		if err != nil {
			return err
		}
		if err := s.Forget(leafHash); err != nil {
			return err
		}
		fmt.Fprintln(cmd.app.out, "policy deleted")
		return nil
	}

	var outputs []policyOutput
	switch {
	case cmd.List:
		records, err := s.Policies()
		if err != nil {
			return err
		}
		for _, record := range records {
			out, err := recordOutput(record)
			if err != nil {
				return err
			}
			outputs = append(outputs, out)
		}

	case cmd.LeafHash != "":
		leafHash, err := ssv.ParseHex("leaf-hash", cmd.LeafHash, 32)
		if err != nil {
			return err
		}
		record, err := s.Lookup(leafHash)
		if err != nil {
			return err
		}
		out, err := recordOutput(record)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)

	default:
		script, err := s.Files().HexOrFile("tapscript", cmd.Tapscript, cmd.TapscriptFile, 0)
		if err != nil {
			return err
		}
		out, err := scriptOutput(script)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	}

	if cmd.JSON {
		if cmd.List {
			if outputs == nil {
				outputs = []policyOutput{}
			}
			return writeJSON(cmd.app.out, outputs)
		}
		return writeJSON(cmd.app.out, outputs[0])
	}

	w := cmd.app.out
	for i, out := range outputs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeField(w, 19, "tapleaf_hash_tagged", out.TapleafHashTagged)
		writeField(w, 19, "tapleaf_hash_simple", out.TapleafHashSimple)
		writeField(w, 19, "tapscript_hex", out.TapscriptHex)
		writeField(w, 19, "disasm", out.Disasm)
		if out.CreatedAt != "" {
			writeField(w, 19, "csv_blocks", out.CSVBlocks)
			writeField(w, 19, "created_at", out.CreatedAt)
		}
	}
	return nil
}
