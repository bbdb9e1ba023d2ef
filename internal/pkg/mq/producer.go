package mq

import (
	"context"
	"fmt"
	"os"
	"time"

	"dapp-core-sol/internal/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	defaultBatchSize    = 32 * 1024
	defaultLingerMs     = 5
	topicSetupTimeout   = 10 * time.Second
	maxMessageBytes     = 1024 * 1024
	clientIDPrefix      = "dapp-core-sol"
	unknownClientHostID = "unknown"
)

// TopicSpec 需要确保存在的 topic
type TopicSpec struct {
	Topic      string // topic名称
	Partitions int    // 分区数
}

type KafkaProducerOption struct {
	Brokers   string // Kafka broker 地址，多个用英文逗号分隔（如 "localhost:9092,localhost:9093"）
	BatchSize int    // 批处理大小（单位字节），0 表示 32KB
	LingerMs  int    // 批处理最大延迟（毫秒），负数表示使用默认值

	Topics []TopicSpec
}

// NewKafkaProducer 创建 Kafka 生产者，不存在的 topic 会按配置的分区数自动创建
func NewKafkaProducer(opt KafkaProducerOption) (*kafka.Producer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), topicSetupTimeout)
	defer cancel()
	if err := ensureTopics(ctx, opt); err != nil {
		return nil, err
	}

	host, _ := os.Hostname()
	producer, err := kafka.NewProducer(producerConfig(opt, host))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	logger.Infof("[mq] Kafka producer 已创建: brokers=%s", opt.Brokers)
	return producer, nil
}

// producerConfig 幂等 + acks=all
func producerConfig(opt KafkaProducerOption, host string) *kafka.ConfigMap {
	batchSize := opt.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := opt.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}
	if host == "" {
		host = unknownClientHostID
	}

	return &kafka.ConfigMap{
		"bootstrap.servers": opt.Brokers,
		"client.id":         fmt.Sprintf("%s-%s", clientIDPrefix, host),

		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5, // 幂等场景下最大值为 5

		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		"batch.size":        batchSize,
		"linger.ms":         lingerMs,
		"compression.type":  "none",
		"message.max.bytes": maxMessageBytes,
	}
}

func ensureTopics(ctx context.Context, opt KafkaProducerOption) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": opt.Brokers})
	if err != nil {
		return fmt.Errorf("create kafka admin client: %w", err)
	}
	defer admin.Close()

	timeoutMs := int(topicSetupTimeout / time.Millisecond)
	if deadline, ok := ctx.Deadline(); ok {
		timeoutMs = int(time.Until(deadline) / time.Millisecond)
	}
	meta, err := admin.GetMetadata(nil, true, timeoutMs)
	if err != nil {
		return fmt.Errorf("get kafka metadata: %w", err)
	}

	replicationFactor := replicationFactorFor(len(meta.Brokers))
	existing := make(map[string]bool, len(meta.Topics))
	for name := range meta.Topics {
		existing[name] = true
	}
	specs := missingTopics(opt.Topics, existing, replicationFactor)
	if len(specs) == 0 {
		return nil
	}
	logger.Infof("[mq] 创建 topic: count=%d brokers=%d replication=%d", len(specs), len(meta.Brokers), replicationFactor)

	results, err := admin.CreateTopics(ctx, specs)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, r := range results {
		switch r.Error.Code() {
		case kafka.ErrNoError, kafka.ErrTopicAlreadyExists:
		default:
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Error)
		}
	}
	return nil
}

// replicationFactorFor 单 broker 只能 1 副本，多 broker 时 2 副本
func replicationFactorFor(brokers int) int {
	if brokers > 1 {
		return 2
	}
	return 1
}

func missingTopics(specs []TopicSpec, existing map[string]bool, replicationFactor int) []kafka.TopicSpecification {
	var out []kafka.TopicSpecification
	for _, spec := range specs {
		if spec.Topic == "" || existing[spec.Topic] {
			continue
		}
		partitions := spec.Partitions
		if partitions <= 0 {
			partitions = 1
		}
		out = append(out, kafka.TopicSpecification{
			Topic:             spec.Topic,
			NumPartitions:     partitions,
			ReplicationFactor: replicationFactor,
		})
	}
	return out
}
