// 包含脚本数字的编码逻辑。

package tapscript

// scriptNum 表示脚本引擎中使用的数值。
// 数值以小端序编码，最高字节的最高位作为符号位，并且总是采用最短编码。
// 0 编码为空字节切片。
type scriptNum int64

// Bytes 返回按共识规则最短编码的字节切片。
//
// 示例编码：
//
//	127   -> [0x7f]
//	-127  -> [0xff]
//	128   -> [0x80 0x00]
//	-128  -> [0x80 0x80]
//	129   -> [0x81 0x00]
//	-129  -> [0x81 0x80]
//	256   -> [0x00 0x01]
//	-256  -> [0x00 0x81]
//	32767 -> [0xff 0x7f]
//	-32767 -> [0xff 0xff]
//	32768 -> [0x00 0x80 0x00]
//	-32768 -> [0x00 0x80 0x80]
func (n scriptNum) Bytes() []byte {
	// Zero encodes as an empty byte slice.
	if n == 0 {
		return nil
	}

	// Take the absolute value and keep track of whether it was originally
	// negative.
	isNegative := n < 0
	if isNegative {
		n = -n
	}

	// Encode to little endian.  The maximum number of encoded bytes is 9
	// (8 bytes for max int64 plus a potential byte for sign extension).
	result := make([]byte, 0, 9)
	for n > 0 {
		result = append(result, byte(n&0xff))
		n >>= 8
	}

	// When the most significant byte already has the high bit set, an
	// additional high byte is required to indicate whether the number is
	// negative or positive.  The additional byte is removed when converting
	// back to an integral and its high bit is used to denote the sign.
	//
	// Otherwise, when the most significant byte does not already have the
	// high bit set, use it to indicate the value is negative, if needed.
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)

	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// ScriptNumber 返回 n 的最短脚本数字编码。
// 调用者需要再用 PushData 包装结果，模板中从不使用小整数操作码。
func ScriptNumber(n int64) []byte {
	return scriptNum(n).Bytes()
}
