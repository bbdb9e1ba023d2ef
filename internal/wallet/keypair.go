package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// LoadKeypair 读取 solana-keygen 生成的 keypair 文件（64 个数字的 JSON 数组）
func LoadKeypair(path string) (sdktypes.Account, error) {
	path, err := expandHome(path)
	if err != nil {
		return sdktypes.Account{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return sdktypes.Account{}, fmt.Errorf("read keypair %s: %w", path, err)
	}
	return ParseKeypair(content)
}

func ParseKeypair(content []byte) (sdktypes.Account, error) {
	// []byte 会被 encoding/json 当作 base64 字符串，这里先解成 []int
	var nums []int
	if err := json.Unmarshal(content, &nums); err != nil {
		return sdktypes.Account{}, fmt.Errorf("parse keypair: %w", err)
	}
	if len(nums) != 64 {
		return sdktypes.Account{}, fmt.Errorf("keypair must have 64 bytes, got %d", len(nums))
	}
	raw := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return sdktypes.Account{}, fmt.Errorf("keypair byte %d out of range: %d", i, n)
		}
		raw[i] = byte(n)
	}

	account, err := sdktypes.AccountFromBytes(raw)
	if err != nil {
		return sdktypes.Account{}, fmt.Errorf("invalid keypair: %w", err)
	}
	return account, nil
}

func expandHome(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("keypair path is empty")
	}
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
