package ssv

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/qinglongcn/ssv/tapscript"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAnchorGuard 表示最终化前的锚定输出检查未通过
	ErrAnchorGuard = errors.New("Anchor guard failed")

	// ErrOpReturnGuard 表示最终化前的 OP_RETURN 输出检查未通过
	ErrOpReturnGuard = errors.New("OP_RETURN guard failed")

	// ErrPathVerification 表示最终化前的路径验证未通过
	ErrPathVerification = errors.New("path verification failed")
)

// BuildResult 是构建策略脚本的结果
type BuildResult struct {
	Params         tapscript.PolicyParams
	Tapscript      []byte
	LeafHashPlain  chainhash.Hash
	LeafHashTagged chainhash.Hash
	Disasm         string
	Saved          bool // 是否已保存到策略库
}

// Build 校验策略参数并构建脚本，save 为真且策略库可用时保存记录
func (s *SSV) Build(params tapscript.PolicyParams, save bool) (*BuildResult, error) {
	script, err := params.Script()
	if err != nil {
		logrus.Errorf("[Build] 策略参数无效:\t%v", err)
		return nil, err
	}

	result := &BuildResult{
		Params:         params,
		Tapscript:      script,
		LeafHashPlain:  tapscript.LeafHashPlain(script, tapscript.BaseLeafVersion),
		LeafHashTagged: tapscript.LeafHashTagged(script, tapscript.BaseLeafVersion),
	}
	if result.Disasm, err = tapscript.Disasm(script); err != nil {
		return nil, err
	}
	logrus.Debugf("[Build] tapleaf %s", result.LeafHashTagged)

	if !save {
		return result, nil
	}
	if s.store == nil {
		return nil, fmt.Errorf("策略库未打开")
	}

	record := &PolicyRecord{
		HashCommitment: params.HashCommitment,
		BorrowerKey:    params.BorrowerKey,
		ProviderKey:    params.ProviderKey,
		CSVBlocks:      params.CSVBlocks,
		Tapscript:      script,
		LeafHashPlain:  result.LeafHashPlain[:],
		LeafHashTagged: result.LeafHashTagged[:],
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Put(record); err != nil {
		logrus.Errorf("[Build] 保存策略失败:\t%v", err)
		return nil, err
	}
	result.Saved = true
	logrus.Infof("[Build] 已保存策略 %s", result.LeafHashTagged)

	return result, nil
}

// Lookup 根据 TapLeaf 标签哈希读取已保存的策略
func (s *SSV) Lookup(leafHash []byte) (*PolicyRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("策略库未打开")
	}
	return s.store.Get(leafHash)
}

// Policies 返回已保存的全部策略
func (s *SSV) Policies() ([]*PolicyRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("策略库未打开")
	}
	return s.store.List()
}

// Forget 从策略库中删除一条策略，策略不存在时返回 ErrPolicyNotFound
func (s *SSV) Forget(leafHash []byte) error {
	if s.store == nil {
		return fmt.Errorf("策略库未打开")
	}
	if err := s.store.Delete(leafHash); err != nil {
		logrus.Errorf("[Forget] 删除策略失败:\t%v", err)
		return err
	}
	logrus.Infof("[Forget] 已删除策略 %x", leafHash)
	return nil
}

// AnchorGuard 要求交易第 Index 个输出为给定脚本与金额
type AnchorGuard struct {
	Index int
	Spk   []byte
	Value int64
}

// OpReturnGuard 要求交易第 Index 个输出为携带 Data 的 OP_RETURN
type OpReturnGuard struct {
	Index int
	Data  []byte
}

// FinalizeRequest 是最终化一个脚本路径输入所需的参数
type FinalizeRequest struct {
	Branch       tapscript.Branch
	PSBT         []byte // PSBT 文本（base64 或十六进制）
	InputIndex   int
	Signature    []byte
	Preimage     []byte // 仅 CLOSE 分支
	ControlBlock []byte

	// 脚本来源按优先级：Tapscript、LeafHash（策略库）、Params。
	Tapscript []byte
	LeafHash  []byte
	Params    *tapscript.PolicyParams

	AnchorGuard   *AnchorGuard
	OpReturnGuard *OpReturnGuard

	// VerifyPath 为真时，在写入见证前用输入的 witness_utxo 验证路径承诺。
	VerifyPath bool
}

// FinalizeResult 是最终化的结果
type FinalizeResult struct {
	Packet     *psbt.Packet
	PSBTBase64 string
	Witness    wire.TxWitness
	Verify     *tapscript.VerifyResult // 未要求验证时为 nil
	RawTxHex   string                  // 无法提取交易时为空
	ExtractErr error
}

// resolveTapscript 按优先级取得要揭示的脚本
func (s *SSV) resolveTapscript(req *FinalizeRequest) ([]byte, error) {
	switch {
	case len(req.Tapscript) > 0:
		return req.Tapscript, nil

	case len(req.LeafHash) > 0:
		record, err := s.Lookup(req.LeafHash)
		if err != nil {
			return nil, fmt.Errorf("lookup tapscript %x: %w", req.LeafHash, err)
		}
		return record.Tapscript, nil

	case req.Params != nil:
		return req.Params.Script()

	default:
		return nil, fmt.Errorf("either a tapscript or the policy parameters " +
			"(hash, borrower key, csv blocks, provider key) must be supplied")
	}
}

// checkGuards 在构建见证之前检查输出约束
func checkGuards(tx *wire.MsgTx, req *FinalizeRequest) error {
	if g := req.AnchorGuard; g != nil {
		check, err := VerifyAnchorOutput(tx, g.Index, g.Spk, g.Value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAnchorGuard, err)
		}
		if !check.OK {
			return fmt.Errorf("%w: %s at output %d", ErrAnchorGuard,
				check.Reason, g.Index)
		}
	}

	if g := req.OpReturnGuard; g != nil {
		check, err := VerifyOpReturnOutput(tx, g.Index, g.Data, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOpReturnGuard, err)
		}
		if !check.OK {
			return fmt.Errorf("%w: %s at output %d", ErrOpReturnGuard,
				check.Reason, g.Index)
		}
	}
	return nil
}

// Finalize 为 PSBT 的一个输入构建脚本路径见证并写入 final_scriptwitness
func (s *SSV) Finalize(req *FinalizeRequest) (*FinalizeResult, error) {
	script, err := s.resolveTapscript(req)
	if err != nil {
		logrus.Errorf("[Finalize] 获取脚本失败:\t%v", err)
		return nil, err
	}

	packet, err := DecodePSBT(req.PSBT)
	if err != nil {
		logrus.Errorf("[Finalize] 解析 PSBT 失败:\t%v", err)
		return nil, fmt.Errorf("decode PSBT: %w", err)
	}
	if err := checkInputIndex(packet, req.InputIndex); err != nil {
		return nil, err
	}
	if err := checkGuards(packet.UnsignedTx, req); err != nil {
		logrus.Errorf("[Finalize] 输出检查失败:\t%v", err)
		return nil, err
	}

	result := &FinalizeResult{Packet: packet}
	controlBlock := req.ControlBlock
	if req.VerifyPath {
		report, cb, err := s.verifyAgainstInput(script, req.ControlBlock, packet, req.InputIndex)
		if err != nil {
			return nil, err
		}
		result.Verify = report
		if !report.OK() {
			return nil, fmt.Errorf("%w: %s", ErrPathVerification, report.Reason)
		}
		// The witness carries exactly the control block that was verified.
		controlBlock = cb.Bytes()
	}

	witness, err := tapscript.BuildWitness(req.Branch, req.Signature,
		script, controlBlock, req.Preimage)
	if err != nil {
		logrus.Errorf("[Finalize] 构建见证失败:\t%v", err)
		return nil, err
	}
	result.Witness = witness

	if err := SetFinalWitness(packet, req.InputIndex, witness); err != nil {
		return nil, err
	}
	if result.PSBTBase64, err = EncodePSBT(packet); err != nil {
		logrus.Errorf("[Finalize] 编码 PSBT 失败:\t%v", err)
		return nil, err
	}

	// Other inputs may still be unsigned, so a failed extraction is not an
	// error for this input.
	if result.RawTxHex, err = ExtractRawTx(packet); err != nil {
		result.ExtractErr = err
		logrus.Warnf("[Finalize] 无法生成原始交易:\t%v", err)
	}

	logrus.Infof("[Finalize] 已最终化输入 %d（%s）", req.InputIndex, req.Branch)
	return result, nil
}

// verifyAgainstInput 用输入的 witness_utxo 验证路径承诺
func (s *SSV) verifyAgainstInput(script, controlBlock []byte, packet *psbt.Packet,
	index int) (*tapscript.VerifyResult, *tapscript.ControlBlock, error) {

	spk, err := InputWitnessScript(packet, index)
	if err != nil {
		return nil, nil, err
	}
	cb, err := tapscript.ParseControlBlock(controlBlock)
	if err != nil {
		return nil, nil, err
	}
	logrus.Tracef("[verifyAgainstInput] control block:\n%s", spew.Sdump(cb))

	return s.verifier.Verify(script, cb, spk), cb, nil
}

// VerifyRequest 是验证脚本路径承诺所需的参数
type VerifyRequest struct {
	Tapscript    []byte
	ControlBlock []byte

	// 观察到的输出脚本：WitnessSpk 优先，否则取 PSBT 第 InputIndex 个输入的 witness_utxo。
	WitnessSpk []byte
	PSBT       []byte
	InputIndex int
}

// PathReport 是路径验证的结果
type PathReport struct {
	*tapscript.VerifyResult

	// ExpectedAddress 是推导出的输出对应的地址，不确定时为空。
	ExpectedAddress string
}

// VerifyPath 验证脚本与控制块是否承诺到观察到的输出脚本
func (s *SSV) VerifyPath(req *VerifyRequest) (*PathReport, error) {
	if len(req.Tapscript) == 0 {
		return nil, fmt.Errorf("tapscript required")
	}
	cb, err := tapscript.ParseControlBlock(req.ControlBlock)
	if err != nil {
		logrus.Errorf("[VerifyPath] 解析控制块失败:\t%v", err)
		return nil, err
	}
	logrus.Tracef("[VerifyPath] control block:\n%s", spew.Sdump(cb))

	observed := req.WitnessSpk
	if len(observed) == 0 {
		if len(req.PSBT) == 0 {
			return nil, fmt.Errorf("provide a witness scriptPubKey or a PSBT")
		}
		packet, err := DecodePSBT(req.PSBT)
		if err != nil {
			return nil, fmt.Errorf("decode PSBT: %w", err)
		}
		if observed, err = InputWitnessScript(packet, req.InputIndex); err != nil {
			return nil, err
		}
	}

	report := &PathReport{VerifyResult: s.verifier.Verify(req.Tapscript, cb, observed)}
	if report.ExpectedScript != nil {
		report.ExpectedAddress = s.taprootAddress(report.ExpectedScript)
	}

	if report.OK() {
		logrus.Infof("[VerifyPath] taproot path verified")
	} else {
		logrus.Warnf("[VerifyPath] %s: %s", report.Status, report.Reason)
	}
	return report, nil
}

// taprootAddress 返回见证版本 1 输出脚本在当前网络下的地址
func (s *SSV) taprootAddress(spk []byte) string {
	params, err := s.opt.NetParams()
	if err != nil || len(spk) != tapscript.PayToTaprootScriptSize {
		return ""
	}
	addr, err := btcutil.NewAddressTaproot(spk[2:], params)
	if err != nil {
		return ""
	}
	return addr.EncodeAddress()
}

// AnchorVerify 检查 PSBT 交易第 index 个输出的脚本与金额
func (s *SSV) AnchorVerify(psbtData []byte, index int, spk []byte, value int64) (*OutputCheck, error) {
	packet, err := DecodePSBT(psbtData)
	if err != nil {
		return nil, fmt.Errorf("decode PSBT: %w", err)
	}
	return VerifyAnchorOutput(packet.UnsignedTx, index, spk, value)
}

// OpReturnVerify 检查 PSBT 交易第 index 个输出是否为携带 data 的 OP_RETURN
func (s *SSV) OpReturnVerify(psbtData []byte, index int, data []byte, value *int64) (*OutputCheck, error) {
	packet, err := DecodePSBT(psbtData)
	if err != nil {
		return nil, fmt.Errorf("decode PSBT: %w", err)
	}
	return VerifyOpReturnOutput(packet.UnsignedTx, index, data, value)
}
