package service

import (
	"context"
	"time"

	"dapp-core-sol/internal/cache"
	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/logic/accounts"
	"dapp-core-sol/internal/logic/programs/counter"
	"dapp-core-sol/internal/logic/txsubmit"
	"dapp-core-sol/internal/pkg/logger"
	"dapp-core-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

const counterCacheKind = "counter"

// CounterRecord 列表展示用的 counter 账户
type CounterRecord struct {
	Address  string `json:"address" yaml:"address"`
	Count    uint8  `json:"count" yaml:"count"`
	Lamports uint64 `json:"lamports" yaml:"lamports"`
}

type CounterServiceOption struct {
	Cluster   consts.Cluster
	Endpoint  string       // RPC 节点地址，参与缓存 key
	Program   types.Pubkey // 为空时按集群取默认地址
	Submitter Submitter
	Signer    txsubmit.Signer
	RPC       accounts.ProgramAccountsRPC
	Cache     AccountsCache // 可为空
	Publisher Publisher     // 可为空
}

// CounterService counter 程序的读写入口：写操作成功后失效列表缓存，列表读取走缓存
type CounterService struct {
	runner  submissionRunner
	program types.Pubkey
	rpc     accounts.ProgramAccountsRPC
	cache   AccountsCache
	scope   cache.Scope
}

func NewCounterService(opt CounterServiceOption) *CounterService {
	program := opt.Program
	if program.IsZero() {
		program = counter.ProgramID(opt.Cluster)
	}
	return &CounterService{
		runner: submissionRunner{
			cluster:   opt.Cluster,
			submitter: opt.Submitter,
			signer:    opt.Signer,
			publisher: opt.Publisher,
			now:       time.Now,
		},
		program: program,
		rpc:     opt.RPC,
		cache:   opt.Cache,
		scope:   cache.Scope{Cluster: string(opt.Cluster), Endpoint: opt.Endpoint, Program: program.String()},
	}
}

func (s *CounterService) ProgramID() types.Pubkey {
	return s.program
}

// Initialize 创建新的 counter 账户，返回签名与新账户地址
func (s *CounterService) Initialize(ctx context.Context) (string, common.PublicKey, error) {
	if s.runner.signer == nil {
		return "", common.PublicKey{}, txsubmit.Classify(txsubmit.ErrSignerNotConnected)
	}
	account := sdktypes.NewAccount()
	ix      := counter.NewInitializeInstruction(s.program, s.runner.signer.PublicKey(), account)

	sig, err := s.mutate(ctx, "initialize", ix)
	if err != nil {
		return "", common.PublicKey{}, err
	}
	return sig, account.PublicKey, nil
}

func (s *CounterService) Increment(ctx context.Context, target common.PublicKey) (string, error) {
	return s.mutate(ctx, "increment", counter.NewIncrementInstruction(s.program, target))
}

func (s *CounterService) Decrement(ctx context.Context, target common.PublicKey) (string, error) {
	return s.mutate(ctx, "decrement", counter.NewDecrementInstruction(s.program, target))
}

func (s *CounterService) Set(ctx context.Context, target common.PublicKey, value uint8) (string, error) {
	ix, err := counter.NewSetInstruction(s.program, target, value)
	if err != nil {
		return "", txsubmit.Classify(err)
	}
	return s.mutate(ctx, "set", ix)
}

func (s *CounterService) Close(ctx context.Context, target common.PublicKey) (string, error) {
	if s.runner.signer == nil {
		return "", txsubmit.Classify(txsubmit.ErrSignerNotConnected)
	}
	return s.mutate(ctx, "close", counter.NewCloseInstruction(s.program, s.runner.signer.PublicKey(), target))
}

// List 返回全部 counter 账户，优先读缓存
func (s *CounterService) List(ctx context.Context) ([]CounterRecord, error) {
	if s.cache != nil {
		var cached []CounterRecord
		hit, err := s.cache.Get(ctx, s.scope, counterCacheKind, &cached)
		if err != nil {
			logger.Warnf("[CounterService] 读取缓存失败: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	accs, err := counter.FetchCounters(ctx, s.rpc, s.program)
	if err != nil {
		return nil, err
	}
	records := make([]CounterRecord, 0, len(accs))
	for _, acc := range accs {
		records = append(records, CounterRecord{Address: acc.Address, Count: acc.Data.Count, Lamports: acc.Lamports})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.scope, counterCacheKind, records); err != nil {
			logger.Warnf("[CounterService] 写入缓存失败: %v", err)
		}
	}
	return records, nil
}

func (s *CounterService) mutate(ctx context.Context, action string, ix txsubmit.Instruction) (string, error) {
	sig, err := s.runner.run(ctx, action, ix)
	if err != nil {
		return "", err
	}
	s.invalidate(ctx)
	return sig, nil
}

func (s *CounterService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), s.scope, counterCacheKind); err != nil {
		logger.Warnf("[CounterService] 缓存失效失败: %v", err)
	}
}
