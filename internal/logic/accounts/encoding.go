package accounts

import (
	"encoding/base64"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/mr-tron/base58"
)

// Encoding 账户数据在 RPC 响应中的文本编码
type Encoding string

const (
	EncodingBase58     Encoding = "base58"
	EncodingBase64     Encoding = "base64"
	EncodingBase64Zstd Encoding = "base64+zstd"
)

// ParseEncoding 空字符串视为 base64
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingBase64:
		return EncodingBase64, nil
	case EncodingBase58:
		return EncodingBase58, nil
	case EncodingBase64Zstd:
		return EncodingBase64Zstd, nil
	default:
		return "", fmt.Errorf("unsupported account encoding: %q", s)
	}
}

// EncodedData RPC 返回的 ["<data>", "<encoding>"] 二元组
type EncodedData struct {
	Payload  string
	Encoding Encoding
}

// DecodeData 将文本编码的账户数据还原为原始字节
func DecodeData(d EncodedData) ([]byte, error) {
	switch d.Encoding {
	case EncodingBase58:
		return base58.Decode(d.Payload)
	case EncodingBase64, "":
		return base64.StdEncoding.DecodeString(d.Payload)
	case EncodingBase64Zstd:
		compressed, err := base64.StdEncoding.DecodeString(d.Payload)
		if err != nil {
			return nil, err
		}
		return decompressZstd(compressed)
	default:
		return nil, fmt.Errorf("unsupported account encoding: %q", d.Encoding)
	}
}

func decompressZstd(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return []byte{}, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}
