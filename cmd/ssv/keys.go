package main

import (
	"encoding/hex"
	"fmt"

	"github.com/qinglongcn/ssv"
)

// xonlyKeyCmd 定义 xonly-key 命令的选项
type xonlyKeyCmd struct {
	PubKey string `long:"pubkey" description:"Compressed public key, 33 bytes hex"`
	XKey   string `long:"xkey" description:"Base58 extended public or private key"`
	Path   string `long:"path" default:"m" description:"Derivation path below --xkey, e.g. m/0/5"`
	JSON   bool   `long:"json" description:"Print JSON output"`

	app *cliApp
}

type xonlyOutput struct {
	PubKeyCompressed string `json:"pubkey_compressed,omitempty"`
	Path             string `json:"path,omitempty"`
	XOnly            string `json:"xonly"`
}

// Execute 是 xonly-key 命令的入口
func (cmd *xonlyKeyCmd) Execute(_ []string) error {
	var out xonlyOutput
	switch {
	case cmd.PubKey != "":
		compressed, err := ssv.ParseHex("pubkey", cmd.PubKey, 33)
		if err != nil {
			return err
		}
		xOnly, err := ssv.XOnlyFromCompressed(compressed)
		if err != nil {
			return err
		}
		out.PubKeyCompressed = hex.EncodeToString(compressed)
		out.XOnly = hex.EncodeToString(xOnly)

	case cmd.XKey != "":
		xOnly, err := ssv.DeriveXOnlyKey(cmd.XKey, cmd.Path)
		if err != nil {
			return err
		}
		out.Path = cmd.Path
		out.XOnly = hex.EncodeToString(xOnly)

	default:
		return fmt.Errorf("provide --pubkey or --xkey")
	}

	if cmd.JSON {
		return writeJSON(cmd.app.out, out)
	}
	if out.PubKeyCompressed != "" {
		writeField(cmd.app.out, 17, "pubkey_compressed", out.PubKeyCompressed)
	}
	if out.Path != "" {
		writeField(cmd.app.out, 17, "path", out.Path)
	}
	writeField(cmd.app.out, 17, "xonly", out.XOnly)
	return nil
}

// newPreimageCmd 定义 new-preimage 命令的选项
type newPreimageCmd struct {
	Passphrase string `long:"passphrase" description:"Derive the preimage from this passphrase instead of random bytes"`
	Salt       string `long:"salt" description:"Salt mixed into the passphrase derivation, e.g. a loan identifier"`
	JSON       bool   `long:"json" description:"Print JSON output"`

	app *cliApp
}

type preimageOutput struct {
	Preimage string `json:"preimage"`
	HashH    string `json:"hash_h"`
}

// Execute 是 new-preimage 命令的入口
func (cmd *newPreimageCmd) Execute(_ []string) error {
	var (
		preimage, hash [32]byte
		err            error
	)
	if cmd.Passphrase != "" {
		preimage, hash, err = ssv.DerivePreimage(cmd.Passphrase, cmd.Salt)
	} else {
		preimage, hash, err = ssv.NewPreimage()
	}
	if err != nil {
		return err
	}

	out := preimageOutput{
		Preimage: hex.EncodeToString(preimage[:]),
		HashH:    hex.EncodeToString(hash[:]),
	}
	if cmd.JSON {
		return writeJSON(cmd.app.out, out)
	}
	writeField(cmd.app.out, 8, "preimage", out.Preimage)
	writeField(cmd.app.out, 8, "hash_h", out.HashH)
	return nil
}
