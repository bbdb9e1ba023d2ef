package service

import (
	"context"
	"errors"
	"time"

	"dapp-core-sol/internal/chain"
	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/logic/programs/basic"
	"dapp-core-sol/internal/logic/txsubmit"
	"dapp-core-sol/internal/pkg/logger"
	"dapp-core-sol/internal/pkg/types"
)

const (
	defaultGreetingDelay    = time.Second
	defaultGreetingAttempts = 3
)

// LogsRPC 查询交易日志，由 *chain.Client 实现
type LogsRPC interface {
	GetTransactionLogs(ctx context.Context, signature string) ([]string, error)
}

type BasicServiceOption struct {
	Cluster   consts.Cluster
	Program   types.Pubkey // 为空时使用默认地址
	Submitter Submitter
	Signer    txsubmit.Signer
	RPC       LogsRPC
	Publisher Publisher // 可为空

	GreetingDelay    time.Duration // 提交后等待多久再查日志，默认 1s
	GreetingAttempts int           // 交易尚未可查时的查询次数，默认 3
}

// GreetResult greet 的提交结果；Greeting 为空表示日志中暂未找到问候语
type GreetResult struct {
	Signature string `json:"signature" yaml:"signature"`
	Greeting  string `json:"greeting,omitempty" yaml:"greeting,omitempty"`
}

type BasicService struct {
	runner   submissionRunner
	program  types.Pubkey
	rpc      LogsRPC
	delay    time.Duration
	attempts int
}

func NewBasicService(opt BasicServiceOption) *BasicService {
	program := opt.Program
	if program.IsZero() {
		program = basic.ProgramID(opt.Cluster)
	}
	delay := opt.GreetingDelay
	if delay <= 0 {
		delay = defaultGreetingDelay
	}
	attempts := opt.GreetingAttempts
	if attempts <= 0 {
		attempts = defaultGreetingAttempts
	}
	return &BasicService{
		runner: submissionRunner{
			cluster:   opt.Cluster,
			submitter: opt.Submitter,
			signer:    opt.Signer,
			publisher: opt.Publisher,
			now:       time.Now,
		},
		program:  program,
		rpc:      opt.RPC,
		delay:    delay,
		attempts: attempts,
	}
}

func (s *BasicService) ProgramID() types.Pubkey {
	return s.program
}

// Greet 提交 greet 指令，再从交易日志中读取问候语。
// 读取日志失败不算提交失败，只会让 Greeting 为空。
func (s *BasicService) Greet(ctx context.Context) (GreetResult, error) {
	sig, err := s.runner.run(ctx, "greet", basic.NewGreetInstruction(s.program))
	if err != nil {
		return GreetResult{}, err
	}

	result := GreetResult{Signature: sig}
	greeting, err := s.fetchGreeting(ctx, sig)
	if err != nil {
		logger.Warnf("[BasicService] 读取问候语失败: signature=%s err=%v", sig, err)
		return result, nil
	}
	result.Greeting = greeting
	return result, nil
}

func (s *BasicService) fetchGreeting(ctx context.Context, sig string) (string, error) {
	var lastErr error
	for i := 0; i < s.attempts; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}

		logs, err := s.rpc.GetTransactionLogs(ctx, sig)
		if errors.Is(err, chain.ErrTransactionNotFound) {
			lastErr = err
			continue
		}
		if err != nil {
			return "", err
		}
		greeting, ok := basic.ExtractGreeting(logs)
		if !ok {
			return "", nil
		}
		return greeting, nil
	}
	return "", lastErr
}
