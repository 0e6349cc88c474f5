/*
Package tapscript 实现了借贷托管策略的 Taproot 脚本路径工具。

策略由两个分支组成：

	CLOSE     借款人出示原像 s（SHA256(s) == h）并用 pk_b 签名
	LIQUIDATE 经过 csv 个区块的相对时间锁后，提供方用 pk_p 签名

本包负责按 BIP-341/BIP-342 逐字节构建脚本、计算叶子哈希、解析控制块、沿梅克尔路径
计算根、调整内部公钥得到输出公钥、验证脚本路径承诺，以及构建花费见证。

包中的函数都是纯函数，不做 I/O，也不记录日志，可以并发调用。
错误统一以 Error 返回，Kind 将其归为 PolicyError、StructuralError 或 CryptoError。
*/
package tapscript
