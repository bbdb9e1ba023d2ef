package config

import (
	"fmt"
	"strings"
	"time"

	"dapp-core-sol/internal/consts"
	"dapp-core-sol/internal/logic/accounts"
	"dapp-core-sol/internal/pkg/logger"
	"dapp-core-sol/internal/pkg/mq"
	"dapp-core-sol/internal/pkg/types"
)

type LogConfig struct {
	Format   string `json:"format,default=console" yaml:"format"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional" yaml:"log_dir"`      // 日志目录，为空时只输出到终端
	Level    string `json:"level,default=info" yaml:"level"`      // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional" yaml:"compress"`    // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig Solana RPC 配置
type RpcConfig struct {
	Endpoint   string `json:"endpoint,optional" yaml:"endpoint"`              // 为空时使用集群默认地址
	Cluster    string `json:"cluster,default=devnet" yaml:"cluster"`          // devnet / testnet / mainnet / localnet
	Commitment string `json:"commitment,default=confirmed" yaml:"commitment"` // processed / confirmed / finalized
	Encoding   string `json:"encoding,default=base64" yaml:"encoding"`        // getProgramAccounts 编码：base58 / base64 / base64+zstd
	TimeoutMs  int    `json:"timeout_ms,default=10000" yaml:"timeout_ms"`     // 单次 RPC 调用超时（毫秒）
}

// SubmitConfig 交易提交配置
type SubmitConfig struct {
	CheckBalance       bool   `json:"check_balance,default=true" yaml:"check_balance"`                  // 发送前检查 fee payer 余额
	MinBalanceLamports uint64 `json:"min_balance_lamports,default=2000000" yaml:"min_balance_lamports"` // 余额下限，默认 0.002 SOL
}

// WalletConfig 本地钱包配置
type WalletConfig struct {
	KeypairPath string `json:"keypair_path,default=~/.config/solana/id.json" yaml:"keypair_path"` // solana-keygen 生成的 keypair 文件
	AutoApprove bool   `json:"auto_approve,optional" yaml:"auto_approve"`                         // 跳过终端确认
}

// ProgramConfig 程序地址与 greet 相关配置，地址为空时按集群取默认值
type ProgramConfig struct {
	Counter          string `json:"counter,optional" yaml:"counter"`
	Basic            string `json:"basic,optional" yaml:"basic"`
	GreetingDelayMs  int    `json:"greeting_delay_ms,default=1000" yaml:"greeting_delay_ms"` // greet 提交后等待多久再查日志
	GreetingAttempts int    `json:"greeting_attempts,default=3" yaml:"greeting_attempts"`
}

// CacheConfig 账户列表缓存配置，RedisAddr 为空时使用进程内缓存
type CacheConfig struct {
	RedisAddr string `json:"redis_addr,optional" yaml:"redis_addr"`
	TtlSec    int    `json:"ttl_sec,default=30" yaml:"ttl_sec"`
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置，Brokers 为空时不发布事件
type KafkaProducerConfig struct {
	Brokers       string `json:"brokers,optional" yaml:"brokers"`                     // Kafka broker 地址，多个用英文逗号分隔
	BatchSize     int    `json:"batch_size,optional" yaml:"batch_size"`               // 批处理大小（单位字节）
	LingerMs      int    `json:"linger_ms,default=5" yaml:"linger_ms"`                // 批处理最大延迟（毫秒）
	Topic         string `json:"topic,default=dapp-submissions" yaml:"topic"`         // 提交结果事件的 topic
	Partitions    int    `json:"partitions,default=4" yaml:"partitions"`              // topic 分区数
	SendTimeoutMs int    `json:"send_timeout_ms,default=3000" yaml:"send_timeout_ms"` // 单条事件发送到 Kafka 并等待 ack 的超时时间
}

func (c *KafkaProducerConfig) Enabled() bool {
	return strings.TrimSpace(c.Brokers) != ""
}

func (c *KafkaProducerConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		Topics: []mq.TopicSpec{
			{Topic: c.Topic, Partitions: c.Partitions},
		},
	}
}

func (c *KafkaProducerConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutMs) * time.Millisecond
}

// AppConfig 是主配置结构体
type AppConfig struct {
	LogConf           LogConfig           `json:"logger" yaml:"logger"`                 // 日志配置
	RpcConf           RpcConfig           `json:"rpc" yaml:"rpc"`                       // RPC 配置
	SubmitConf        SubmitConfig        `json:"submit" yaml:"submit"`                 // 交易提交配置
	WalletConf        WalletConfig        `json:"wallet" yaml:"wallet"`                 // 钱包配置
	ProgramConf       ProgramConfig       `json:"program" yaml:"program"`               // 程序配置
	CacheConf         CacheConfig         `json:"cache" yaml:"cache"`                   // 缓存配置
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer" yaml:"kafka_producer"` // Kafka 生产者配置
}

// Validate 补全默认值并校验取值范围
func (c *AppConfig) Validate() error {
	if c.RpcConf.Cluster == "" {
		c.RpcConf.Cluster = string(consts.ClusterDevnet)
	}
	cluster, err := consts.ParseCluster(c.RpcConf.Cluster)
	if err != nil {
		return err
	}
	c.RpcConf.Cluster = string(cluster)
	if c.RpcConf.Endpoint == "" {
		c.RpcConf.Endpoint = cluster.DefaultEndpoint()
	}

	switch c.RpcConf.Commitment {
	case "":
		c.RpcConf.Commitment = "confirmed"
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("unknown commitment: %q", c.RpcConf.Commitment)
	}

	enc, err := accounts.ParseEncoding(c.RpcConf.Encoding)
	if err != nil {
		return err
	}
	c.RpcConf.Encoding = string(enc)

	if c.RpcConf.TimeoutMs < 0 {
		return fmt.Errorf("rpc timeout_ms must not be negative: %d", c.RpcConf.TimeoutMs)
	}
	for name, addr := range map[string]string{"program.counter": c.ProgramConf.Counter, "program.basic": c.ProgramConf.Basic} {
		if addr == "" {
			continue
		}
		if _, err := types.TryPubkeyFromBase58(addr); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.ProgramConf.GreetingDelayMs < 0 {
		return fmt.Errorf("program greeting_delay_ms must not be negative: %d", c.ProgramConf.GreetingDelayMs)
	}

	if c.SubmitConf.MinBalanceLamports == 0 {
		c.SubmitConf.MinBalanceLamports = consts.DefaultMinFeePayerLamports
	}
	if c.CacheConf.TtlSec <= 0 {
		c.CacheConf.TtlSec = 30
	}

	if c.KafkaProducerConf.Enabled() {
		if c.KafkaProducerConf.Topic == "" {
			return fmt.Errorf("kafka_producer.topic is required when brokers is set")
		}
		if c.KafkaProducerConf.Partitions <= 0 {
			c.KafkaProducerConf.Partitions = 1
		}
		if c.KafkaProducerConf.SendTimeoutMs <= 0 {
			c.KafkaProducerConf.SendTimeoutMs = 3000
		}
	}
	return nil
}

func (c *AppConfig) Cluster() consts.Cluster {
	return consts.Cluster(c.RpcConf.Cluster)
}

func (c *AppConfig) RpcTimeout() time.Duration {
	return time.Duration(c.RpcConf.TimeoutMs) * time.Millisecond
}

func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheConf.TtlSec) * time.Second
}

func (c *AppConfig) GreetingDelay() time.Duration {
	return time.Duration(c.ProgramConf.GreetingDelayMs) * time.Millisecond
}

// CounterProgram 未配置时返回零值，由调用方按集群取默认地址
func (c *AppConfig) CounterProgram() types.Pubkey {
	pk, _ := types.TryPubkeyFromBase58(c.ProgramConf.Counter)
	return pk
}

func (c *AppConfig) BasicProgram() types.Pubkey {
	pk, _ := types.TryPubkeyFromBase58(c.ProgramConf.Basic)
	return pk
}
