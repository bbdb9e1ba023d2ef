package service

import (
	"context"
	"errors"
	"time"

	"dapp-core-sol/internal/cache"
	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/logic/txsubmit"
	"dapp-core-sol/internal/mq"
	"dapp-core-sol/internal/pkg/logger"
)

// Submitter 交易提交能力，由 *txsubmit.Submitter 实现
type Submitter interface {
	Submit(ctx context.Context, ix txsubmit.Instruction, signer txsubmit.Signer) (string, error)
}

// AccountsCache 账户列表缓存，由 cache.RedisAccountsCache / cache.MemoryAccountsCache 实现
type AccountsCache interface {
	Get(ctx context.Context, scope cache.Scope, kind string, out any) (bool, error)
	Set(ctx context.Context, scope cache.Scope, kind string, v any) error
	Invalidate(ctx context.Context, scope cache.Scope, kind string) error
}

// Publisher 提交结果事件发布，由 *mq.SubmissionPublisher 实现
type Publisher interface {
	Publish(ctx context.Context, ev *mq.SubmissionEvent) error
}

// submissionRunner 提交指令并发布结果事件；发布失败只记录日志，不影响提交结果
type submissionRunner struct {
	cluster   consts.Cluster
	submitter Submitter
	signer    txsubmit.Signer
	publisher Publisher
	now       func() time.Time
}

func (r *submissionRunner) run(ctx context.Context, action string, ix txsubmit.Instruction) (string, error) {
	if r.signer == nil {
		return "", txsubmit.Classify(txsubmit.ErrSignerNotConnected)
	}

	sig, err := r.submitter.Submit(ctx, ix, r.signer)
	r.publish(ctx, action, ix, sig, err)
	if err != nil {
		return "", err
	}
	logger.Infof("[%s] 交易已提交: %s", action, r.cluster.ExplorerTxURL(sig))
	return sig, nil
}

func (r *submissionRunner) publish(ctx context.Context, action string, ix txsubmit.Instruction, sig string, submitErr error) {
	if r.publisher == nil {
		return
	}

	ev := &mq.SubmissionEvent{
		Signature: sig,
		Cluster:   string(r.cluster),
		Program:   ix.ProgramID.ToBase58(),
		Action:    action,
		FeePayer:  r.signer.PublicKey().ToBase58(),
		Status:    mq.StatusSubmitted,
		Timestamp: r.now(),
	}
	if submitErr != nil {
		ev.Status = mq.StatusFailed
		ev.Message = txsubmit.UserMessage(submitErr)
		var se *txsubmit.SubmitError
		if errors.As(submitErr, &se) {
			ev.ErrorKind = se.KindName()
		}
	}

	// 调用方取消后仍然尝试发布失败事件
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.publisher.Publish(pubCtx, ev); err != nil {
		logger.Warnf("[%s] 提交事件发布失败: %v", action, err)
	}
}
