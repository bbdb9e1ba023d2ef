package counter

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"dapp-core-sol/internal/logic/accounts"
	"dapp-core-sol/internal/pkg/logger"
	"dapp-core-sol/internal/pkg/types"

	"github.com/near/borsh-go"
)

var ErrCounterDataTooShort = errors.New("counter data too short")

// Counter 链上 counter 账户（去掉 discriminator 之后的部分）
type Counter struct {
	Count uint8 `json:"count" yaml:"count"`
}

// DecodeCounter 解码 discriminator 之后的账户数据
func DecodeCounter(data []byte) (c Counter, err error) {
	if len(data) < AccountSize-8 {
		return Counter{}, fmt.Errorf("%w: %d bytes", ErrCounterDataTooShort, len(data))
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Counter] borsh.Deserialize panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("decode counter panic: %v", r)
		}
	}()

	if err := borsh.Deserialize(&c, data); err != nil {
		return Counter{}, fmt.Errorf("decode counter: %w", err)
	}
	return c, nil
}

// FetchCounters 查询 program 下的全部 counter 账户
func FetchCounters(ctx context.Context, rpc accounts.ProgramAccountsRPC, program types.Pubkey) ([]accounts.Account[Counter], error) {
	return accounts.FetchAll(ctx, rpc, program.String(), discriminatorBytes(AccountDiscriminator), DecodeCounter)
}
