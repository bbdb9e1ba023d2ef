package txsubmit

import (
	"errors"
	"strings"
)

type classifyRule struct {
	needle string // 小写子串
	kind   error
}

// classifyRules 按顺序匹配，先命中先返回。
// RPC 的报错文本不是稳定契约：Blockhash/余额类报错通常也带有 "simulation failed" 前缀，
// 因此必须排在 SimulationFailed 之前。
var classifyRules = []classifyRule{
	{needle: "blockhash not found", kind: ErrBlockhashExpired},
	{needle: "blockhashnotfound", kind: ErrBlockhashExpired},
	{needle: "block height exceeded", kind: ErrBlockhashExpired},
	{needle: "blockhash expired", kind: ErrBlockhashExpired},

	{needle: "insufficient funds", kind: ErrInsufficientFunds},
	{needle: "insufficientfundsforfee", kind: ErrInsufficientFunds},
	{needle: "insufficient lamports", kind: ErrInsufficientFunds},
	{needle: "attempt to debit an account but found no record of a prior credit", kind: ErrInsufficientFunds},

	{needle: "simulation failed", kind: ErrSimulationFailed},

	{needle: "user rejected", kind: ErrUserRejected},
	{needle: "user denied", kind: ErrUserRejected},
	{needle: "user declined", kind: ErrUserRejected},
}

// Classify 将任意失败归入固定分类，未命中规则的一律为 Unknown，不做猜测
func Classify(err error) *SubmitError {
	if err == nil {
		return nil
	}
	var se *SubmitError
	if errors.As(err, &se) {
		return se
	}
	return newSubmitError(classifyKind(err), err)
}

func classifyKind(err error) error {
	for _, kind := range []error{ErrBlockhashUnavailable, ErrBlockhashExpired, ErrSimulationFailed, ErrUserRejected, ErrInsufficientFunds} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range classifyRules {
		if strings.Contains(msg, rule.needle) {
			return rule.kind
		}
	}
	return ErrUnknown
}
