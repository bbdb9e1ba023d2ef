package mq

import (
	"context"
	"fmt"
	"time"

	"dapp-core-sol/internal/pkg/logger"
	"dapp-core-sol/internal/pkg/types"
)

const defaultSendTimeout = 3 * time.Second

// SubmissionPublisher 将交易提交结果发布到 Kafka，同一 fee payer 的事件落在同一分区
type SubmissionPublisher struct {
	producer   Producer
	topic      string
	partitions uint32
	timeout    time.Duration
}

func NewSubmissionPublisher(producer Producer, topic string, partitions int, timeout time.Duration) *SubmissionPublisher {
	if partitions <= 0 {
		partitions = 1
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &SubmissionPublisher{
		producer:   producer,
		topic:      topic,
		partitions: uint32(partitions),
		timeout:    timeout,
	}
}

// Publish 同步发送一条事件并等待 ack
func (p *SubmissionPublisher) Publish(ctx context.Context, ev *SubmissionEvent) error {
	value, err := EncodeSubmissionEvent(ev)
	if err != nil {
		return err
	}

	job := &KafkaJob{
		Topic:     p.topic,
		Partition: p.partitionFor(ev.FeePayer),
		Key:       []byte(ev.FeePayer),
		Value:     value,
	}
	_, failed := SendKafkaJobs(ctx, p.producer, []*KafkaJob{job}, p.timeout)
	if len(failed) > 0 {
		return fmt.Errorf("publish submission event %s/%s: %w", ev.Action, ev.Status, failed[0].Err)
	}
	logger.Debugf("[SubmissionPublisher] topic=%s partition=%d action=%s status=%s", p.topic, job.Partition, ev.Action, ev.Status)
	return nil
}

func (p *SubmissionPublisher) partitionFor(feePayer string) int32 {
	pk, err := types.TryPubkeyFromBase58(feePayer)
	if err != nil {
		return 0
	}
	return int32(PartitionHashBytes(pk[:], p.partitions))
}
