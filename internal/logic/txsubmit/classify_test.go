package txsubmit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Table(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"failed to send transaction: Transaction simulation failed: Blockhash not found", ErrBlockhashExpired},
		{`{"code":-32002,"message":"Transaction simulation failed: Blockhash not found","data":{"err":"BlockhashNotFound"}}`, ErrBlockhashExpired},
		{"block height exceeded: signature has expired", ErrBlockhashExpired},
		{"Transaction simulation failed: Attempt to debit an account but found no record of a prior credit.", ErrInsufficientFunds},
		{"Transfer: insufficient lamports 100, need 2039280", ErrInsufficientFunds},
		{"InsufficientFundsForFee", ErrInsufficientFunds},
		{"Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1771", ErrSimulationFailed},
		{"Simulation failed. Message: Transaction simulation failed", ErrSimulationFailed},
		{"User rejected the request.", ErrUserRejected},
		{"WalletSignTransactionError: user denied transaction signature", ErrUserRejected},
		{"Request failed with status code 429", ErrUnknown},
		{"", ErrUnknown},
	}
	for _, c := range cases {
		got := Classify(errors.New(c.msg))
		assert.Equal(t, c.want, got.Kind, c.msg)
		assert.Equal(t, c.msg, got.Cause.Error(), "原始信息必须保留")
	}
}

func TestClassify_Sentinels(t *testing.T) {
	err := fmt.Errorf("wallet: %w", ErrUserRejected)
	assert.Equal(t, ErrUserRejected, Classify(err).Kind)

	already := newSubmitError(ErrSimulationFailed, errors.New("x"))
	assert.Same(t, already, Classify(fmt.Errorf("wrap: %w", already)))

	assert.Nil(t, Classify(nil))
}

func TestSubmitError_Message(t *testing.T) {
	seen := map[string]error{}
	for _, kind := range []error{ErrBlockhashUnavailable, ErrBlockhashExpired, ErrSimulationFailed, ErrUserRejected, ErrInsufficientFunds, ErrUnknown} {
		msg := newSubmitError(kind, nil).Message()
		assert.NotEmpty(t, msg)
		_, dup := seen[msg]
		assert.False(t, dup, "每个分类的提示必须不同: %s", msg)
		seen[msg] = kind
	}

	unknown := newSubmitError(ErrUnknown, errors.New("socket hang up"))
	assert.Contains(t, unknown.Message(), "socket hang up")
	assert.Equal(t, "Unknown", unknown.KindName())

	assert.Equal(t, "Transaction was rejected by the user.", UserMessage(fmt.Errorf("x: %w", newSubmitError(ErrUserRejected, nil))))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Equal(t, "", UserMessage(nil))
}

func TestSubmitError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newSubmitError(ErrSimulationFailed, cause)
	assert.ErrorIs(t, err, ErrSimulationFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUnknown)
	assert.Equal(t, "transaction simulation failed: boom", err.Error())
	assert.Equal(t, "SimulationFailed", err.KindName())
}
