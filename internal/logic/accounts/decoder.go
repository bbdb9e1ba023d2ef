package accounts

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"dapp-core-sol/internal/pkg/logger"

	"github.com/mr-tron/base58"
)

var (
	ErrDecode              = errors.New("account decode failed")
	ErrEmptyDiscriminator  = errors.New("discriminator must not be empty")
	ErrProgramAccountsCall = errors.New("getProgramAccounts failed")
)

// MemcmpFilter getProgramAccounts 的 memcmp 过滤条件，Bytes 为 base58 文本
type MemcmpFilter struct {
	Offset uint64
	Bytes  string
}

// RawAccount RPC 返回的程序账户（数据仍为文本编码）
type RawAccount struct {
	Address    string
	Owner      string
	Lamports   uint64
	Executable bool
	Data       EncodedData
}

// ProgramAccountsRPC 按 owner 程序查询账户的 RPC 能力
type ProgramAccountsRPC interface {
	GetProgramAccounts(ctx context.Context, program string, filter MemcmpFilter) ([]RawAccount, error)
}

// Account 解码后的账户记录
type Account[T any] struct {
	Address    string
	Owner      string
	Lamports   uint64
	Executable bool
	Exists     bool
	Data       T
}

// DecodeFunc 将去掉 discriminator 之后的账户数据解码为具体类型
type DecodeFunc[T any] func(data []byte) (T, error)

// DecodeError 单个账户解码失败，整个 FetchAll 调用随之失败
type DecodeError struct {
	Address string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode account %s: %v", e.Address, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// FetchAll 查询 program 下所有以 discriminator 开头的账户并逐个解码。
// 只有一次网络调用；结果顺序与 RPC 返回顺序一致；任一账户解码失败则整体失败，不返回部分结果。
func FetchAll[T any](
	ctx context.Context,
	rpc ProgramAccountsRPC,
	program string,
	discriminator []byte,
	decode DecodeFunc[T],
) ([]Account[T], error) {
	if len(discriminator) == 0 {
		return nil, ErrEmptyDiscriminator
	}

	raws, err := rpc.GetProgramAccounts(ctx, program, MemcmpFilter{
		Offset: 0,
		Bytes:  base58.Encode(discriminator),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: program=%s: %w", ErrProgramAccountsCall, program, err)
	}

	result := make([]Account[T], 0, len(raws))
	for _, raw := range raws {
		data, err := DecodeData(raw.Data)
		if err != nil {
			return nil, &DecodeError{Address: raw.Address, Err: fmt.Errorf("invalid %s payload: %w", raw.Data.Encoding, err)}
		}

		// RPC 已按 memcmp 过滤，这里再校验一次，不匹配的账户直接跳过
		if !bytes.HasPrefix(data, discriminator) {
			logger.Warnf("[AccountDecoder] RPC 返回了 discriminator 不匹配的账户, 已跳过: program=%s account=%s", program, raw.Address)
			continue
		}

		value, err := decode(data[len(discriminator):])
		if err != nil {
			return nil, &DecodeError{Address: raw.Address, Err: err}
		}

		result = append(result, Account[T]{
			Address:    raw.Address,
			Owner:      raw.Owner,
			Lamports:   raw.Lamports,
			Executable: raw.Executable,
			Exists:     true,
			Data:       value,
		})
	}

	logger.Debugf("[AccountDecoder] program=%s 匹配账户数: %d", program, len(result))
	return result, nil
}
