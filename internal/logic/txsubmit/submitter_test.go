package txsubmit

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"dapp-core-sol/internal/consts"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBlockhashA = "US517G5965aydkZ46HS38QLi7UQiSojurfbQfKCELFx"
	testBlockhashB = "cGfHiC6Kgg3FpFZvgwGcswsCRtp4aBP2fzuXRQPizuN"
)

type fakeRPC struct {
	mu           sync.Mutex
	blockhashes  []string
	blockhashErr error
	balance      uint64
	balanceErr   error

	blockhashCalls int
	balanceCalls   int
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockhashCalls++
	if f.blockhashErr != nil {
		return "", f.blockhashErr
	}
	if len(f.blockhashes) == 0 {
		return "", nil
	}
	h := f.blockhashes[0]
	f.blockhashes = f.blockhashes[1:]
	return h, nil
}

func (f *fakeRPC) GetBalance(ctx context.Context, base58Addr string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	return f.balance, f.balanceErr
}

// scriptedSigner 按脚本返回结果的测试钱包
type scriptedSigner struct {
	account sdktypes.Account
	sig     []byte
	err     error

	mu  sync.Mutex
	txs []sdktypes.Transaction
}

func newScriptedSigner(sig []byte, err error) *scriptedSigner {
	return &scriptedSigner{account: sdktypes.NewAccount(), sig: sig, err: err}
}

func (s *scriptedSigner) PublicKey() common.PublicKey {
	return s.account.PublicKey
}

func (s *scriptedSigner) SignAndSend(ctx context.Context, tx sdktypes.Transaction) ([]byte, error) {
	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.mu.Unlock()
	return s.sig, s.err
}

func (s *scriptedSigner) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

func testInstruction() Instruction {
	return Instruction{Instruction: sdktypes.Instruction{
		ProgramID: consts.BasicProgram.ToCommon(),
		Data:      []byte{203, 194, 3, 150, 228, 58, 181, 62},
	}}
}

func TestSubmit_Success(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA}}
	signer := newScriptedSigner(bytes.Repeat([]byte{1}, 64), nil)
	s := NewSubmitter(rpc, Config{})

	sig, err := s.Submit(context.Background(), testInstruction(), signer)
	require.NoError(t, err)
	assert.Equal(t, "2AXDGYSE4f2sz7tvMMzyHvUfcoJmxudvdhBcmiUSo6ijwfYmfZYsKRxboQMPh3R4kUhXRVdtSXFXMheka4Rc4P2", sig)

	require.Equal(t, 1, signer.calls())
	tx := signer.txs[0]
	assert.Equal(t, testBlockhashA, tx.Message.RecentBlockHash)
	assert.Equal(t, sdktypes.MessageVersion(sdktypes.MessageVersionV0), tx.Message.Version)
	assert.Len(t, tx.Message.Instructions, 1)
	assert.Equal(t, signer.PublicKey(), tx.Message.Accounts[0], "fee payer 必须是第一个账户")
	assert.Equal(t, 0, rpc.balanceCalls, "未开启余额检查")
}

func TestSubmit_FreshBlockhashPerCall(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA, testBlockhashB}}
	signer := newScriptedSigner(bytes.Repeat([]byte{2}, 64), nil)
	s := NewSubmitter(rpc, Config{})

	ix := testInstruction()
	_, err := s.Submit(context.Background(), ix, signer)
	require.NoError(t, err)
	_, err = s.Submit(context.Background(), ix, signer)
	require.NoError(t, err)

	assert.Equal(t, 2, rpc.blockhashCalls)
	require.Equal(t, 2, signer.calls())
	assert.Equal(t, testBlockhashA, signer.txs[0].Message.RecentBlockHash)
	assert.Equal(t, testBlockhashB, signer.txs[1].Message.RecentBlockHash)
}

func TestSubmit_BlockhashUnavailable(t *testing.T) {
	cases := map[string]*fakeRPC{
		"rpc error":     {blockhashErr: errors.New("connection refused")},
		"empty value":   {},
		"invalid value": {blockhashes: []string{"not-a-hash"}},
	}
	for name, rpc := range cases {
		t.Run(name, func(t *testing.T) {
			signer := newScriptedSigner(bytes.Repeat([]byte{1}, 64), nil)
			_, err := NewSubmitter(rpc, Config{}).Submit(context.Background(), testInstruction(), signer)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBlockhashUnavailable)
			assert.Equal(t, 0, signer.calls(), "拿不到 blockhash 时不能调用钱包")
		})
	}
}

func TestSubmit_InsufficientFunds(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA}, balance: consts.DefaultMinFeePayerLamports - 1}
	signer := newScriptedSigner(bytes.Repeat([]byte{1}, 64), nil)
	s := NewSubmitter(rpc, Config{CheckBalance: true})

	_, err := s.Submit(context.Background(), testInstruction(), signer)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 0, signer.calls(), "余额不足时不能广播")
	assert.Equal(t, 0, rpc.blockhashCalls)
}

func TestSubmit_BalanceCheckPasses(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA}, balance: 5_000_000}
	signer := newScriptedSigner(bytes.Repeat([]byte{1}, 64), nil)
	s := NewSubmitter(rpc, Config{CheckBalance: true, MinBalanceLamports: 5_000_000})

	_, err := s.Submit(context.Background(), testInstruction(), signer)
	require.NoError(t, err)
	assert.Equal(t, 1, rpc.balanceCalls)
	assert.Equal(t, 1, signer.calls())
}

func TestSubmit_BalanceQueryFails(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA}, balanceErr: errors.New("503 service unavailable")}
	signer := newScriptedSigner(bytes.Repeat([]byte{1}, 64), nil)

	_, err := NewSubmitter(rpc, Config{CheckBalance: true}).Submit(context.Background(), testInstruction(), signer)
	assert.ErrorIs(t, err, ErrUnknown)
	assert.Equal(t, 0, signer.calls())
}

func TestSubmit_UserRejected(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA}}
	signer := newScriptedSigner(nil, errors.New("WalletSignTransactionError: User rejected the request."))

	_, err := NewSubmitter(rpc, Config{}).Submit(context.Background(), testInstruction(), signer)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Contains(t, err.Error(), "User rejected")
}

func TestSubmit_SignerErrorsAreClassified(t *testing.T) {
	cases := []struct {
		signerErr error
		want      error
	}{
		{errors.New("Transaction simulation failed: Blockhash not found"), ErrBlockhashExpired},
		{errors.New("Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1"), ErrSimulationFailed},
		{errors.New("socket hang up"), ErrUnknown},
		{context.Canceled, ErrUnknown},
	}
	for _, c := range cases {
		rpc := &fakeRPC{blockhashes: []string{testBlockhashA}}
		signer := newScriptedSigner(nil, c.signerErr)

		_, err := NewSubmitter(rpc, Config{}).Submit(context.Background(), testInstruction(), signer)
		var se *SubmitError
		require.ErrorAs(t, err, &se, c.signerErr.Error())
		assert.Equal(t, c.want, se.Kind, c.signerErr.Error())
		assert.ErrorIs(t, err, c.signerErr, "底层错误必须保留")
	}
}

func TestSubmit_InvalidSignatureBytes(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA}}
	signer := newScriptedSigner([]byte{1, 2, 3}, nil)

	_, err := NewSubmitter(rpc, Config{}).Submit(context.Background(), testInstruction(), signer)
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestSubmit_NilSigner(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA}}

	_, err := NewSubmitter(rpc, Config{}).Submit(context.Background(), testInstruction(), nil)
	assert.ErrorIs(t, err, ErrUnknown)
	assert.ErrorIs(t, err, ErrSignerNotConnected)
	assert.Equal(t, 0, rpc.blockhashCalls)
}

func TestSubmit_PartialSigners(t *testing.T) {
	rpc := &fakeRPC{blockhashes: []string{testBlockhashA}}
	signer := newScriptedSigner(bytes.Repeat([]byte{1}, 64), nil)
	extra := sdktypes.NewAccount()

	ix := testInstruction()
	ix.Accounts = []sdktypes.AccountMeta{{PubKey: extra.PublicKey, IsSigner: true, IsWritable: true}}
	ix.Signers = []sdktypes.Account{extra}

	_, err := NewSubmitter(rpc, Config{}).Submit(context.Background(), ix, signer)
	require.NoError(t, err)

	tx := signer.txs[0]
	require.Len(t, tx.Signatures, 2)
	assert.Equal(t, make([]byte, 64), []byte(tx.Signatures[0]), "fee payer 槽位留给钱包")
	assert.NotEqual(t, make([]byte, 64), []byte(tx.Signatures[1]), "附加 signer 已完成部分签名")
}

func TestSubmit_Concurrent(t *testing.T) {
	const n = 16
	hashes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		hashes = append(hashes, testBlockhashA)
	}
	rpc := &fakeRPC{blockhashes: hashes}
	signer := newScriptedSigner(bytes.Repeat([]byte{3}, 64), nil)
	s := NewSubmitter(rpc, Config{})

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Submit(context.Background(), testInstruction(), signer)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, rpc.blockhashCalls)
	assert.Equal(t, n, signer.calls())
}
