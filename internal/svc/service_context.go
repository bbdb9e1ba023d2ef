package svc

import (
	"context"
	"fmt"
	"io"
	"os"

	"dapp-core-sol/internal/cache"
	"dapp-core-sol/internal/chain"
	"dapp-core-sol/internal/config"
	"dapp-core-sol/internal/logic/accounts"
	"dapp-core-sol/internal/logic/txsubmit"
	"dapp-core-sol/internal/mq"
	"dapp-core-sol/internal/pkg/logger"
	pkgmq "dapp-core-sol/internal/pkg/mq"
	"dapp-core-sol/internal/pkg/types"
	"dapp-core-sol/internal/service"
	"dapp-core-sol/internal/wallet"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

// ServiceContext 命令运行所需的全部资源
type ServiceContext struct {
	Config    config.AppConfig
	Chain     *chain.Client
	Submitter *txsubmit.Submitter
	Signer    *wallet.KeypairSigner // 未加载钱包时为空
	Cache     service.AccountsCache
	Producer  *kafka.Producer // 未配置 Kafka 时为空
	Publisher *mq.SubmissionPublisher

	redis *redis.Client
}

// Options 控制哪些资源需要初始化；只读命令不需要加载钱包
type Options struct {
	NeedWallet bool
	PromptIn   io.Reader // 交易确认的输入，默认 os.Stdin
	PromptOut  io.Writer // 交易确认的输出，默认 os.Stderr
}

// NewServiceContext 按配置创建服务上下文，c 需已通过 Validate
func NewServiceContext(c config.AppConfig, opt Options) (*ServiceContext, error) {
	// 1. 日志
	if err := logger.InitLogger(c.LogConf.ToLogOption()); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	// 2. RPC 客户端
	encoding, err := accounts.ParseEncoding(c.RpcConf.Encoding)
	if err != nil {
		return nil, err
	}
	chainClient, err := chain.NewClient(chain.Config{
		Endpoint:   c.RpcConf.Endpoint,
		Commitment: c.RpcConf.Commitment,
		Encoding:   encoding,
		Timeout:    c.RpcTimeout(),
	})
	if err != nil {
		return nil, err
	}

	sc := &ServiceContext{
		Config: c,
		Chain:  chainClient,
		Submitter: txsubmit.NewSubmitter(chainClient, txsubmit.Config{
			CheckBalance:       c.SubmitConf.CheckBalance,
			MinBalanceLamports: c.SubmitConf.MinBalanceLamports,
			RPCTimeout:         c.RpcTimeout(),
		}),
	}

	// 3. 钱包
	if opt.NeedWallet {
		account, err := wallet.LoadKeypair(c.WalletConf.KeypairPath)
		if err != nil {
			return nil, err
		}
		var approver wallet.Approver = wallet.AutoApprover{}
		if !c.WalletConf.AutoApprove {
			in, out := opt.PromptIn, opt.PromptOut
			if in == nil {
				in = os.Stdin
			}
			if out == nil {
				out = os.Stderr
			}
			approver = wallet.NewPromptApprover(in, out)
		}
		sc.Signer = wallet.NewKeypairSigner(account, chainClient, approver)
		logger.Infof("[ServiceContext] 钱包已加载: %s", account.PublicKey.ToBase58())
	}

	// 4. 账户缓存
	if c.CacheConf.RedisAddr != "" {
		sc.redis = redis.NewClient(&redis.Options{Addr: c.CacheConf.RedisAddr})
		sc.Cache = cache.NewRedisAccountsCache(sc.redis, c.CacheTTL())
	} else {
		sc.Cache = cache.NewMemoryAccountsCache(c.CacheTTL())
	}

	// 5. Kafka 事件发布（可选）
	if c.KafkaProducerConf.Enabled() {
		producer, err := pkgmq.NewKafkaProducer(c.KafkaProducerConf.ToKafkaOption())
		if err != nil {
			logger.Errorf("[ServiceContext] Kafka producer 初始化失败: %v", err)
			sc.Close()
			return nil, err
		}
		sc.Producer = producer
		sc.Publisher = mq.NewSubmissionPublisher(producer, c.KafkaProducerConf.Topic, c.KafkaProducerConf.Partitions, c.KafkaProducerConf.SendTimeout())
	}

	logger.Infof("[ServiceContext] 初始化完成: cluster=%s endpoint=%s", c.Cluster(), chainClient.Endpoint())
	return sc, nil
}

func (sc *ServiceContext) CounterService() *service.CounterService {
	return service.NewCounterService(service.CounterServiceOption{
		Cluster:   sc.Config.Cluster(),
		Endpoint:  sc.Chain.Endpoint(),
		Program:   sc.Config.CounterProgram(),
		Submitter: sc.Submitter,
		Signer:    sc.signer(),
		RPC:       sc.Chain,
		Cache:     sc.Cache,
		Publisher: sc.publisher(),
	})
}

func (sc *ServiceContext) BasicService() *service.BasicService {
	return service.NewBasicService(service.BasicServiceOption{
		Cluster:          sc.Config.Cluster(),
		Program:          sc.Config.BasicProgram(),
		Submitter:        sc.Submitter,
		Signer:           sc.signer(),
		RPC:              sc.Chain,
		Publisher:        sc.publisher(),
		GreetingDelay:    sc.Config.GreetingDelay(),
		GreetingAttempts: sc.Config.ProgramConf.GreetingAttempts,
	})
}

// ProgramStatus 查询程序在当前集群上是否已部署
func (sc *ServiceContext) ProgramStatus(ctx context.Context, program types.Pubkey) (*service.ProgramStatus, error) {
	return service.CheckProgram(ctx, sc.Chain, sc.Config.Cluster(), program)
}

// signer / publisher 避免把空指针包装成非空接口
func (sc *ServiceContext) signer() txsubmit.Signer {
	if sc.Signer == nil {
		return nil
	}
	return sc.Signer
}

func (sc *ServiceContext) publisher() service.Publisher {
	if sc.Publisher == nil {
		return nil
	}
	return sc.Publisher
}

// Close 关闭服务上下文中的资源
func (sc *ServiceContext) Close() {
	if sc.Producer != nil {
		sc.Producer.Flush(1000)
		sc.Producer.Close()
	}
	if sc.redis != nil {
		if err := sc.redis.Close(); err != nil {
			logger.Warnf("[ServiceContext] 关闭 Redis 失败: %v", err)
		}
	}
	logger.Sync()
}
