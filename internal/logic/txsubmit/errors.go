package txsubmit

import (
	"errors"
	"fmt"
)

// 交易提交失败的分类（每个分类对应一条面向用户的提示）
var (
	ErrBlockhashUnavailable = errors.New("blockhash unavailable")
	ErrBlockhashExpired     = errors.New("blockhash expired")
	ErrSimulationFailed     = errors.New("transaction simulation failed")
	ErrUserRejected         = errors.New("user rejected")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrUnknown              = errors.New("unknown transaction failure")
)

var userMessages = map[error]string{
	ErrBlockhashUnavailable: "Failed to fetch a valid blockhash from the RPC. Check your network connection and try again.",
	ErrBlockhashExpired:     "Transaction failed: blockhash expired or invalid. This might be due to network latency or RPC issues. Please try again.",
	ErrSimulationFailed:     "Transaction simulation failed. Check your cluster connection, account balances, and program deployment.",
	ErrUserRejected:         "Transaction was rejected by the user.",
	ErrInsufficientFunds:    "Insufficient SOL balance to pay for rent and fees. Fund the wallet and try again.",
	ErrUnknown:              "Transaction failed.",
}

// SubmitError 是 Submit 返回的唯一错误类型：Kind 为上面的分类之一，Cause 保留底层错误
type SubmitError struct {
	Kind  error
	Cause error
}

func newSubmitError(kind, cause error) *SubmitError {
	return &SubmitError{Kind: kind, Cause: cause}
}

func (e *SubmitError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
}

// Unwrap 同时暴露分类与底层错误，errors.Is 对两者都成立
func (e *SubmitError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Message 返回面向用户的提示；Unknown 附带原始诊断信息
func (e *SubmitError) Message() string {
	msg, ok := userMessages[e.Kind]
	if !ok {
		msg = userMessages[ErrUnknown]
	}
	if e.Kind == ErrUnknown && e.Cause != nil {
		return fmt.Sprintf("%s %v", msg, e.Cause)
	}
	return msg
}

// KindName 分类名称，用于日志与事件
func (e *SubmitError) KindName() string {
	return KindName(e.Kind)
}

// KindName 分类名称，未知分类返回 "Unknown"
func KindName(kind error) string {
	switch kind {
	case ErrBlockhashUnavailable:
		return "BlockhashUnavailable"
	case ErrBlockhashExpired:
		return "BlockhashExpired"
	case ErrSimulationFailed:
		return "SimulationFailed"
	case ErrUserRejected:
		return "UserRejected"
	case ErrInsufficientFunds:
		return "InsufficientFunds"
	default:
		return "Unknown"
	}
}

// UserMessage 任意错误的用户提示：SubmitError 取其分类提示，其他错误原样返回
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Message()
	}
	return err.Error()
}
