package wallet

import (
	"context"
	"errors"
	"fmt"

	"dapp-core-sol/internal/pkg/logger"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Sender 广播已签名交易
type Sender interface {
	SendTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error)
}

// KeypairSigner 本地 keypair 钱包：确认 -> 签名 -> 广播
type KeypairSigner struct {
	account  sdktypes.Account
	sender   Sender
	approver Approver
}

func NewKeypairSigner(account sdktypes.Account, sender Sender, approver Approver) *KeypairSigner {
	if approver == nil {
		approver = AutoApprover{}
	}
	return &KeypairSigner{account: account, sender: sender, approver: approver}
}

func (s *KeypairSigner) PublicKey() common.PublicKey {
	return s.account.PublicKey
}

// SignAndSend 以 fee payer 身份签名并广播，返回 64 字节原始签名。
// 用户拒绝时不会签名也不会广播。
func (s *KeypairSigner) SignAndSend(ctx context.Context, tx sdktypes.Transaction) ([]byte, error) {
	if err := s.approver.Approve(ctx, summarize(tx)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg, err := tx.Message.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize message: %w", err)
	}
	if err := tx.AddSignature(s.account.Sign(msg)); err != nil {
		return nil, fmt.Errorf("add fee payer signature: %w", err)
	}
	if len(tx.Signatures) == 0 || len(tx.Signatures[0]) != 64 {
		return nil, errors.New("fee payer signature slot missing")
	}

	sig, err := s.sender.SendTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	logger.Debugf("[Wallet] 交易已广播: %s", sig)
	return []byte(tx.Signatures[0]), nil
}

func summarize(tx sdktypes.Transaction) Request {
	req := Request{
		Blockhash:    tx.Message.RecentBlockHash,
		Instructions: len(tx.Message.Instructions),
		Signers:      int(tx.Message.Header.NumRequireSignatures),
	}
	if len(tx.Message.Accounts) > 0 {
		req.FeePayer = tx.Message.Accounts[0].ToBase58()
	}
	seen := make(map[int]struct{}, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		if _, ok := seen[ix.ProgramIDIndex]; ok {
			continue
		}
		seen[ix.ProgramIDIndex] = struct{}{}
		if ix.ProgramIDIndex < len(tx.Message.Accounts) {
			req.Programs = append(req.Programs, tx.Message.Accounts[ix.ProgramIDIndex].ToBase58())
		}
	}
	return req
}
