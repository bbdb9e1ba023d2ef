package wallet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUserRejected 与浏览器钱包拒签时的提示保持一致
var ErrUserRejected = errors.New("User rejected the request")

// Request 展示给用户确认的交易摘要
type Request struct {
	FeePayer     string
	Programs     []string
	Blockhash    string
	Instructions int
	Signers      int
}

// Approver 在签名前征求用户同意；拒绝时返回 ErrUserRejected
type Approver interface {
	Approve(ctx context.Context, req Request) error
}

// AutoApprover 无需确认（脚本 / 测试场景）
type AutoApprover struct{}

func (AutoApprover) Approve(context.Context, Request) error { return nil }

// PromptApprover 在终端上询问 y/N
type PromptApprover struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPromptApprover(in io.Reader, out io.Writer) *PromptApprover {
	return &PromptApprover{in: bufio.NewReader(in), out: out}
}

func (p *PromptApprover) Approve(ctx context.Context, req Request) error {
	fmt.Fprintf(p.out, "Approve transaction?\n  fee payer:    %s\n  programs:     %s\n  instructions: %d\n  signers:      %d\n  blockhash:    %s\n[y/N]: ",
		req.FeePayer, strings.Join(req.Programs, ", "), req.Instructions, req.Signers, req.Blockhash)

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-ch:
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return fmt.Errorf("read approval: %w", r.err)
		}
		switch strings.ToLower(strings.TrimSpace(r.line)) {
		case "y", "yes":
			return nil
		default:
			return ErrUserRejected
		}
	}
}
