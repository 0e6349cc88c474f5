// 包含 tapscript 包使用的错误码与错误类型。

package tapscript

import (
	"errors"
	"fmt"
)

// ErrorKind 标识错误所属的大类：策略参数错误、结构错误或密码学错误。
type ErrorKind int

const (
	// PolicyError 表示策略参数（哈希承诺、公钥、CSV 区块数）不合法。
	PolicyError ErrorKind = iota + 1

	// StructuralError 表示输入的字节长度或布局不合法。
	StructuralError

	// CryptoError 表示曲线运算失败：公钥无法提升到曲线上、调整值溢出或结果为无穷远点。
	CryptoError
)

// UnknownKind 是未登记错误码的大类。
const UnknownKind ErrorKind = 0

// ValidationError 是见证构建器报告的结构错误，错误中会携带出错的字段名。
const ValidationError = StructuralError

var kindStrings = map[ErrorKind]string{
	PolicyError:     "PolicyError",
	StructuralError: "StructuralError",
	CryptoError:     "CryptoError",
}

// String 返回 ErrorKind 的可读名称。
func (k ErrorKind) String() string {
	if s := kindStrings[k]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorKind (%d)", int(k))
}

// ErrorCode 标识一种具体的错误。
type ErrorCode int

// 这些常量用于标识具体的 Error。
const (
	// ErrInvalidHashCommitment 表示哈希承诺不是 32 字节。
	ErrInvalidHashCommitment ErrorCode = iota

	// ErrInvalidBorrowerKey 表示借款人公钥不是 32 字节的 x-only 公钥。
	ErrInvalidBorrowerKey

	// ErrInvalidProviderKey 表示提供方公钥不是 32 字节的 x-only 公钥。
	ErrInvalidProviderKey

	// ErrInvalidCSVBlocks 表示 CSV 区块数不在 [1, 65535] 范围内。
	ErrInvalidCSVBlocks

	// ErrControlBlockTooSmall 表示控制块短于 33 字节。
	ErrControlBlockTooSmall

	// ErrControlBlockTooLarge 表示控制块包含超过 128 个梅克尔节点。
	ErrControlBlockTooLarge

	// ErrControlBlockInvalidLength 表示控制块去掉固定部分后不是 32 字节的整数倍。
	ErrControlBlockInvalidLength

	// ErrInvalidKeyLength 表示传入的 x-only 公钥不是 32 字节。
	ErrInvalidKeyLength

	// ErrInvalidMerkleRootLength 表示梅克尔根不是 32 字节。
	ErrInvalidMerkleRootLength

	// ErrInvalidSignatureLength 表示签名既不是 64 字节也不是 65 字节。
	ErrInvalidSignatureLength

	// ErrEmptyTapscript 表示见证中的脚本为空。
	ErrEmptyTapscript

	// ErrTapscriptTooLarge 表示见证中的脚本超过 MaxTapscriptSize。
	ErrTapscriptTooLarge

	// ErrInvalidControlBlock 表示见证中的控制块长度不合法。
	ErrInvalidControlBlock

	// ErrMissingPreimage 表示 CLOSE 分支缺少原像。
	ErrMissingPreimage

	// ErrInvalidPreimageLength 表示原像不是 32 字节。
	ErrInvalidPreimageLength

	// ErrUnknownBranch 表示未知的花费分支。
	ErrUnknownBranch

	// ErrInvalidInternalKey 表示内部公钥不是曲线上合法点的 x 坐标。
	ErrInvalidInternalKey

	// ErrTweakOverflow 表示 TapTweak 哈希不小于曲线阶。
	ErrTweakOverflow

	// ErrPointAtInfinity 表示调整后的输出公钥是无穷远点。
	ErrPointAtInfinity

	// ErrUnsupportedPoint 表示 Curve 实现收到了不属于它的点。
	ErrUnsupportedPoint

	// numErrorCodes 是最大错误码加一，仅用于测试。
	numErrorCodes
)

// errorCodeStrings 是错误码到可读名称的映射，便于输出。
var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidHashCommitment:     "ErrInvalidHashCommitment",
	ErrInvalidBorrowerKey:        "ErrInvalidBorrowerKey",
	ErrInvalidProviderKey:        "ErrInvalidProviderKey",
	ErrInvalidCSVBlocks:          "ErrInvalidCSVBlocks",
	ErrControlBlockTooSmall:      "ErrControlBlockTooSmall",
	ErrControlBlockTooLarge:      "ErrControlBlockTooLarge",
	ErrControlBlockInvalidLength: "ErrControlBlockInvalidLength",
	ErrInvalidKeyLength:          "ErrInvalidKeyLength",
	ErrInvalidMerkleRootLength:   "ErrInvalidMerkleRootLength",
	ErrInvalidSignatureLength:    "ErrInvalidSignatureLength",
	ErrEmptyTapscript:            "ErrEmptyTapscript",
	ErrTapscriptTooLarge:         "ErrTapscriptTooLarge",
	ErrInvalidControlBlock:       "ErrInvalidControlBlock",
	ErrMissingPreimage:           "ErrMissingPreimage",
	ErrInvalidPreimageLength:     "ErrInvalidPreimageLength",
	ErrUnknownBranch:             "ErrUnknownBranch",
	ErrInvalidInternalKey:        "ErrInvalidInternalKey",
	ErrTweakOverflow:             "ErrTweakOverflow",
	ErrPointAtInfinity:           "ErrPointAtInfinity",
	ErrUnsupportedPoint:          "ErrUnsupportedPoint",
}

// errorCodeKinds 记录每个错误码所属的 ErrorKind。
var errorCodeKinds = map[ErrorCode]ErrorKind{
	ErrInvalidHashCommitment:     PolicyError,
	ErrInvalidBorrowerKey:        PolicyError,
	ErrInvalidProviderKey:        PolicyError,
	ErrInvalidCSVBlocks:          PolicyError,
	ErrControlBlockTooSmall:      StructuralError,
	ErrControlBlockTooLarge:      StructuralError,
	ErrControlBlockInvalidLength: StructuralError,
	ErrInvalidKeyLength:          StructuralError,
	ErrInvalidMerkleRootLength:   StructuralError,
	ErrInvalidSignatureLength:    ValidationError,
	ErrEmptyTapscript:            ValidationError,
	ErrTapscriptTooLarge:         ValidationError,
	ErrInvalidControlBlock:       ValidationError,
	ErrMissingPreimage:           ValidationError,
	ErrInvalidPreimageLength:     ValidationError,
	ErrUnknownBranch:             ValidationError,
	ErrInvalidInternalKey:        CryptoError,
	ErrTweakOverflow:             CryptoError,
	ErrPointAtInfinity:           CryptoError,
	ErrUnsupportedPoint:          CryptoError,
}

// String 返回 ErrorCode 的可读名称。
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Kind 返回错误码所属的大类，未知错误码返回 UnknownKind。
func (e ErrorCode) Kind() ErrorKind {
	if k, ok := errorCodeKinds[e]; ok {
		return k
	}
	return UnknownKind
}

// Error 标识构建、解析或验证过程中出现的错误。
// 调用者可以通过类型断言取出 ErrorCode 以区分具体原因，Field 只在见证校验错误中设置。
type Error struct {
	ErrorCode   ErrorCode
	Description string
	Field       string
}

// Error 满足 error 接口并打印可读的错误信息。
func (e Error) Error() string {
	return e.Description
}

// Kind 返回错误所属的大类。
func (e Error) Kind() ErrorKind {
	return e.ErrorCode.Kind()
}

// scriptError 根据错误码和描述创建一个 Error。
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// fieldError 创建一个携带出错字段名的校验错误。
func fieldError(c ErrorCode, field, desc string) Error {
	return Error{ErrorCode: c, Description: desc, Field: field}
}

// IsErrorCode 判断 err 是否为携带指定错误码的 Error。
func IsErrorCode(err error, c ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == c
}

// IsKind 判断 err 是否为指定大类的 Error。
func IsKind(err error, k ErrorKind) bool {
	var e Error
	return errors.As(err, &e) && e.Kind() == k
}
