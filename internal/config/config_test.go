package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dapp-core-sol/internal/consts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"
)

func TestValidate_Defaults(t *testing.T) {
	var c AppConfig
	require.NoError(t, c.Validate())

	assert.Equal(t, consts.ClusterDevnet, c.Cluster())
	assert.Equal(t, "https://api.devnet.solana.com", c.RpcConf.Endpoint)
	assert.Equal(t, "confirmed", c.RpcConf.Commitment)
	assert.Equal(t, "base64", c.RpcConf.Encoding)
	assert.Equal(t, consts.DefaultMinFeePayerLamports, c.SubmitConf.MinBalanceLamports)
	assert.Equal(t, 30*time.Second, c.CacheTTL())
	assert.True(t, c.CounterProgram().IsZero())
	assert.True(t, c.BasicProgram().IsZero())
}

func TestValidate_Normalizes(t *testing.T) {
	c := AppConfig{RpcConf: RpcConfig{Cluster: "solana:mainnet-beta", Endpoint: "http://my-rpc:8899", TimeoutMs: 1500}}
	require.NoError(t, c.Validate())
	assert.Equal(t, consts.ClusterMainnet, c.Cluster())
	assert.Equal(t, "http://my-rpc:8899", c.RpcConf.Endpoint, "显式配置的地址不被覆盖")
	assert.Equal(t, 1500*time.Millisecond, c.RpcTimeout())
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]AppConfig{
		"cluster":        {RpcConf: RpcConfig{Cluster: "moonnet"}},
		"commitment":     {RpcConf: RpcConfig{Commitment: "max"}},
		"encoding":       {RpcConf: RpcConfig{Encoding: "jsonParsed"}},
		"timeout":        {RpcConf: RpcConfig{TimeoutMs: -1}},
		"counter":        {ProgramConf: ProgramConfig{Counter: "not-base58-0OIl"}},
		"greeting delay": {ProgramConf: ProgramConfig{GreetingDelayMs: -5}},
		"kafka topic":    {KafkaProducerConf: KafkaProducerConfig{Brokers: "127.0.0.1:9092"}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidate_ProgramOverride(t *testing.T) {
	c := AppConfig{ProgramConf: ProgramConfig{Counter: consts.CounterProgramTestnetStr, GreetingDelayMs: 250}}
	require.NoError(t, c.Validate())
	assert.Equal(t, consts.CounterProgramTestnet, c.CounterProgram())
	assert.Equal(t, 250*time.Millisecond, c.GreetingDelay())
}

func TestKafkaProducerConfig(t *testing.T) {
	c := AppConfig{KafkaProducerConf: KafkaProducerConfig{Brokers: "127.0.0.1:9092", Topic: "dapp-submissions"}}
	require.NoError(t, c.Validate())

	k := c.KafkaProducerConf
	assert.True(t, k.Enabled())
	assert.Equal(t, 1, k.Partitions)
	assert.Equal(t, 3*time.Second, k.SendTimeout())

	opt := k.ToKafkaOption()
	assert.Equal(t, "127.0.0.1:9092", opt.Brokers)
	require.Len(t, opt.Topics, 1)
	assert.Equal(t, "dapp-submissions", opt.Topics[0].Topic)
	assert.Equal(t, 1, opt.Topics[0].Partitions)

	assert.False(t, (&KafkaProducerConfig{Brokers: "  "}).Enabled())
}

func TestLoadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dapp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  format: json
  level: debug
rpc:
  cluster: testnet
  encoding: base64+zstd
cache:
  redis_addr: 127.0.0.1:6379
kafka_producer:
  brokers: 127.0.0.1:9092
`), 0o600))

	var c AppConfig
	require.NoError(t, conf.Load(path, &c))
	require.NoError(t, c.Validate())

	assert.Equal(t, "json", c.LogConf.Format)
	assert.Equal(t, "debug", c.LogConf.ToLogOption().Level)
	assert.Equal(t, consts.ClusterTestnet, c.Cluster())
	assert.Equal(t, "base64+zstd", c.RpcConf.Encoding)
	assert.Equal(t, 10*time.Second, c.RpcTimeout())
	assert.True(t, c.SubmitConf.CheckBalance)
	assert.Equal(t, "~/.config/solana/id.json", c.WalletConf.KeypairPath)
	assert.Equal(t, "127.0.0.1:6379", c.CacheConf.RedisAddr)
	assert.Equal(t, "dapp-submissions", c.KafkaProducerConf.Topic)
	assert.Equal(t, 4, c.KafkaProducerConf.Partitions)
	assert.Equal(t, 3, c.ProgramConf.GreetingAttempts)
}
