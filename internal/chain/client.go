package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dapp-core-sol/internal/logic/accounts"
	"dapp-core-sol/internal/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

var ErrTransactionNotFound = errors.New("transaction not found")

const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// Config RPC 适配器配置
type Config struct {
	Endpoint   string
	Commitment string
	Encoding   accounts.Encoding // getProgramAccounts 的账户数据编码
	Timeout    time.Duration     // 单次调用超时，0 表示不额外限制
}

// Client 基于 blocto solana-go-sdk 的 RPC 适配器。
// 常规调用走 client.Client，SDK 未覆盖的参数组合（memcmp 过滤、base64+zstd、v0 交易查询）走 rpc.RpcClient.Call。
type Client struct {
	client *client.Client
	rpc    *rpc.RpcClient
	cfg    Config
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("rpc endpoint is empty")
	}
	if cfg.Commitment == "" {
		cfg.Commitment = CommitmentConfirmed
	}
	if cfg.Encoding == "" {
		cfg.Encoding = accounts.EncodingBase64
	}

	c := client.NewClient(cfg.Endpoint)
	if c == nil {
		return nil, errors.New("rpc client init failed")
	}
	raw := rpc.NewRpcClient(cfg.Endpoint)

	logger.Infof("[ChainClient] endpoint=%s commitment=%s encoding=%s timeout=%v",
		cfg.Endpoint, cfg.Commitment, cfg.Encoding, cfg.Timeout)
	return &Client{client: c, rpc: &raw, cfg: cfg}, nil
}

func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// GetLatestBlockhash 返回最新 blockhash 的 base58 文本
func (c *Client) GetLatestBlockhash(ctx context.Context) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("getLatestBlockhash: %w", err)
	}
	logger.Debugf("[ChainClient] getLatestBlockhash=%s lastValidBlockHeight=%d 耗时: %v",
		resp.Blockhash, resp.LatestValidBlockHeight, time.Since(start))
	return resp.Blockhash, nil
}

func (c *Client) GetBalance(ctx context.Context, base58Addr string) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	balance, err := c.client.GetBalance(ctx, base58Addr)
	if err != nil {
		return 0, fmt.Errorf("getBalance %s: %w", base58Addr, err)
	}
	return balance, nil
}

// SendTransaction 广播已签名交易，返回节点回传的签名。
// 节点的预执行失败（simulation）原样透传，由调用方分类。
func (c *Client) SendTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	sig, err := c.client.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}
	return sig, nil
}

// AccountStatus 单个账户的链上状态，Exists 为 false 时其余字段为零值
type AccountStatus struct {
	Address    string
	Exists     bool
	Executable bool
	Owner      string
	Lamports   uint64
}

// GetAccountInfo 查询账户是否存在、是否可执行。账户不存在不是错误。
func (c *Client) GetAccountInfo(ctx context.Context, base58Addr string) (AccountStatus, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	info, err := c.client.GetAccountInfo(ctx, base58Addr)
	if err != nil {
		return AccountStatus{}, fmt.Errorf("getAccountInfo %s: %w", base58Addr, err)
	}
	// 链上账户 lamports 不可能为 0
	if info.Lamports == 0 {
		return AccountStatus{Address: base58Addr}, nil
	}
	return AccountStatus{
		Address:    base58Addr,
		Exists:     true,
		Executable: info.Executable,
		Owner:      info.Owner.ToBase58(),
		Lamports:   info.Lamports,
	}, nil
}

// GetVersion 返回节点的 solana-core 版本
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := c.rpc.Call(ctx, "getVersion")
	if err != nil {
		return "", err
	}
	return parseVersion(body)
}

// GetProgramAccounts 单次 getProgramAccounts 调用，带 offset 处的 memcmp 过滤
func (c *Client) GetProgramAccounts(ctx context.Context, program string, filter accounts.MemcmpFilter) ([]accounts.RawAccount, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cfg := programAccountsConfig{
		Encoding:   string(c.cfg.Encoding),
		Commitment: c.cfg.Commitment,
		Filters: []programAccountsFilter{
			{Memcmp: &memcmp{Offset: filter.Offset, Bytes: filter.Bytes, Encoding: "base58"}},
		},
	}

	start := time.Now()
	body, err := c.rpc.Call(ctx, "getProgramAccounts", program, cfg)
	if err != nil {
		return nil, err
	}
	result, err := parseProgramAccounts(body)
	if err != nil {
		return nil, err
	}
	logger.Debugf("[ChainClient] getProgramAccounts program=%s 账户数: %d 耗时: %v", program, len(result), time.Since(start))
	return result, nil
}

// GetTransactionLogs 查询已确认交易的日志（支持 v0 交易）
func (c *Client) GetTransactionLogs(ctx context.Context, signature string) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cfg := transactionConfig{
		Encoding:                       "json",
		Commitment:                     c.cfg.Commitment,
		MaxSupportedTransactionVersion: 0,
	}
	if cfg.Commitment == CommitmentProcessed {
		// getTransaction 不支持 processed
		cfg.Commitment = CommitmentConfirmed
	}

	body, err := c.rpc.Call(ctx, "getTransaction", signature, cfg)
	if err != nil {
		return nil, err
	}
	return parseTransactionLogs(body)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

type programAccountsConfig struct {
	Encoding   string                  `json:"encoding"`
	Commitment string                  `json:"commitment,omitempty"`
	Filters    []programAccountsFilter `json:"filters,omitempty"`
}

type programAccountsFilter struct {
	Memcmp *memcmp `json:"memcmp,omitempty"`
}

type memcmp struct {
	Offset   uint64 `json:"offset"`
	Bytes    string `json:"bytes"`
	Encoding string `json:"encoding,omitempty"`
}

type transactionConfig struct {
	Encoding                       string `json:"encoding"`
	Commitment                     string `json:"commitment,omitempty"`
	MaxSupportedTransactionVersion uint8  `json:"maxSupportedTransactionVersion"`
}

// RPCError JSON-RPC 错误对象
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type response[T any] struct {
	Result T         `json:"result"`
	Error  *RPCError `json:"error"`
}

type programAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data       []string `json:"data"` // [payload, encoding]
		Executable bool     `json:"executable"`
		Lamports   uint64   `json:"lamports"`
		Owner      string   `json:"owner"`
	} `json:"account"`
}

func parseProgramAccounts(body []byte) ([]accounts.RawAccount, error) {
	var resp response[[]programAccount]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode getProgramAccounts response: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result := make([]accounts.RawAccount, 0, len(resp.Result))
	for _, item := range resp.Result {
		if len(item.Account.Data) != 2 {
			return nil, fmt.Errorf("account %s: unexpected data field: %v", item.Pubkey, item.Account.Data)
		}
		enc, err := accounts.ParseEncoding(item.Account.Data[1])
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", item.Pubkey, err)
		}
		result = append(result, accounts.RawAccount{
			Address:    item.Pubkey,
			Owner:      item.Account.Owner,
			Lamports:   item.Account.Lamports,
			Executable: item.Account.Executable,
			Data:       accounts.EncodedData{Payload: item.Account.Data[0], Encoding: enc},
		})
	}
	return result, nil
}

type versionResult struct {
	SolanaCore string `json:"solana-core"`
}

func parseVersion(body []byte) (string, error) {
	var resp response[*versionResult]
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode getVersion response: %w", err)
	}
	if resp.Error != nil {
		return "", resp.Error
	}
	if resp.Result == nil || resp.Result.SolanaCore == "" {
		return "", errors.New("getVersion: empty solana-core version")
	}
	return resp.Result.SolanaCore, nil
}

type transactionResult struct {
	Slot uint64 `json:"slot"`
	Meta *struct {
		Err         json.RawMessage `json:"err"`
		LogMessages []string        `json:"logMessages"`
	} `json:"meta"`
}

func parseTransactionLogs(body []byte) ([]string, error) {
	var resp response[*transactionResult]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode getTransaction response: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Result == nil {
		return nil, ErrTransactionNotFound
	}
	if resp.Result.Meta == nil {
		return []string{}, nil
	}
	return resp.Result.Meta.LogMessages, nil
}
