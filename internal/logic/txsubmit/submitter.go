package txsubmit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/pkg/logger"
	"dapp-core-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// ErrSignerNotConnected 钱包未连接（signer 为空）
var ErrSignerNotConnected = errors.New("wallet not connected")

// RPC 是 Submitter 依赖的最小 RPC 能力
type RPC interface {
	GetLatestBlockhash(ctx context.Context) (string, error)
	GetBalance(ctx context.Context, base58Addr string) (uint64, error)
}

// Signer 是外部签名能力（钱包）：签名并广播交易，返回原始 64 字节签名。
// 可能弹出确认界面，用户拒绝时返回的错误信息中包含 "User rejected"。
type Signer interface {
	PublicKey() common.PublicKey
	SignAndSend(ctx context.Context, tx sdktypes.Transaction) ([]byte, error)
}

// Instruction 一条链上指令；Signers 为指令内嵌的附加签名账户（例如新建账户的 keypair），
// 由 Submitter 在交给钱包前完成部分签名。
type Instruction struct {
	sdktypes.Instruction
	Signers []sdktypes.Account
}

// Config Submitter 配置
type Config struct {
	CheckBalance       bool          // 发送前检查 fee payer 余额
	MinBalanceLamports uint64        // 余额下限，0 表示使用默认值
	RPCTimeout         time.Duration // 单次 RPC 调用超时，0 表示只受调用方 ctx 控制
}

// Submitter 将一条指令构造成交易、交给钱包签名广播，并对失败进行分类。
// 无状态，可并发调用；每次 Submit 都重新获取 blockhash，不做任何自动重试。
type Submitter struct {
	rpc RPC
	cfg Config
}

func NewSubmitter(rpc RPC, cfg Config) *Submitter {
	if cfg.MinBalanceLamports == 0 {
		cfg.MinBalanceLamports = consts.DefaultMinFeePayerLamports
	}
	return &Submitter{rpc: rpc, cfg: cfg}
}

// Submit 提交一条指令，成功返回 base58 签名；失败时错误一定是 *SubmitError
func (s *Submitter) Submit(ctx context.Context, ix Instruction, signer Signer) (string, error) {
	if signer == nil {
		return "", newSubmitError(ErrUnknown, ErrSignerNotConnected)
	}
	feePayer := signer.PublicKey()

	// 1. 余额预检查，不足时不广播
	if s.cfg.CheckBalance {
		if err := s.checkBalance(ctx, feePayer); err != nil {
			return "", err
		}
	}

	// 2. 每次提交都获取新的 blockhash
	blockhash, err := s.fetchBlockhash(ctx)
	if err != nil {
		return "", err
	}

	// 3. 构造 v0 交易（恰好一条指令）
	tx, err := buildTransaction(feePayer, ix, blockhash)
	if err != nil {
		return "", newSubmitError(ErrUnknown, err)
	}

	// 4. 钱包签名并广播，签名完成前不会有任何广播
	logger.Debugf("[TxSubmitter] 请求钱包签名: feePayer=%s program=%s blockhash=%s",
		feePayer.ToBase58(), ix.ProgramID.ToBase58(), blockhash)
	raw, err := signer.SignAndSend(ctx, tx)
	if err != nil {
		se := Classify(err)
		logger.Warnf("[TxSubmitter] 交易失败: kind=%s err=%v", se.KindName(), err)
		return "", se
	}

	// 5. 原始签名转为 base58 文本
	sig, err := types.SignatureFromBytes(raw)
	if err != nil {
		return "", newSubmitError(ErrUnknown, fmt.Errorf("invalid signature from signer: %w", err))
	}
	logger.Infof("[TxSubmitter] 交易已发送: signature=%s", sig)
	return sig.String(), nil
}

func (s *Submitter) checkBalance(ctx context.Context, feePayer common.PublicKey) error {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	balance, err := s.rpc.GetBalance(callCtx, feePayer.ToBase58())
	if err != nil {
		return Classify(fmt.Errorf("getBalance failed: %w", err))
	}
	if balance < s.cfg.MinBalanceLamports {
		return newSubmitError(ErrInsufficientFunds, fmt.Errorf(
			"balance %d lamports (%.9f SOL) below minimum %d lamports (%.9f SOL)",
			balance, consts.LamportsToSOL(balance), s.cfg.MinBalanceLamports, consts.LamportsToSOL(s.cfg.MinBalanceLamports)))
	}
	logger.Debugf("[TxSubmitter] 余额检查通过: %d lamports", balance)
	return nil
}

func (s *Submitter) fetchBlockhash(ctx context.Context) (string, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	blockhash, err := s.rpc.GetLatestBlockhash(callCtx)
	if err != nil {
		return "", newSubmitError(ErrBlockhashUnavailable, fmt.Errorf("getLatestBlockhash failed: %w", err))
	}
	if blockhash == "" {
		return "", newSubmitError(ErrBlockhashUnavailable, errors.New("rpc returned empty blockhash"))
	}
	if _, err := types.HashFromBase58(blockhash); err != nil {
		return "", newSubmitError(ErrBlockhashUnavailable, fmt.Errorf("invalid blockhash %q: %w", blockhash, err))
	}
	return blockhash, nil
}

func (s *Submitter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RPCTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RPCTimeout)
}

func buildTransaction(feePayer common.PublicKey, ix Instruction, blockhash string) (sdktypes.Transaction, error) {
	msg := sdktypes.NewMessage(sdktypes.NewMessageParam{
		FeePayer:        feePayer,
		Instructions:    []sdktypes.Instruction{ix.Instruction},
		RecentBlockhash: blockhash,
	})
	msg.Version = sdktypes.MessageVersionV0

	// 未签名槽位为 64 字节 0，附加 signer 在此完成部分签名
	tx, err := sdktypes.NewTransaction(sdktypes.NewTransactionParam{
		Message: msg,
		Signers: ix.Signers,
	})
	if err != nil {
		return sdktypes.Transaction{}, fmt.Errorf("build transaction: %w", err)
	}
	return tx, nil
}
