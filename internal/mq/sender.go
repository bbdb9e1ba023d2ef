package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dapp-core-sol/internal/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

var ErrDeliveryTimeout = errors.New("delivery timeout")

const drainTimeout = 2 * time.Second

// Producer 是 *kafka.Producer 中发送消息所需的部分
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// KafkaJob 一条待发送的消息
type KafkaJob struct {
	Topic     string
	Partition int32
	Key       []byte
	Value     []byte
}

// KafkaSendResult 发送失败的消息及原因
type KafkaSendResult struct {
	Job *KafkaJob
	Err error
}

// SendKafkaJobs 并发发送并逐条等待 ack。
// ok / failed 均保持 jobs 中的相对顺序；单条超时不影响其他消息。
func SendKafkaJobs(
	ctx context.Context,
	producer Producer,
	jobs []*KafkaJob,
	perMessageTimeout time.Duration,
) (ok []*KafkaJob, failed []KafkaSendResult) {
	errs := make([]error, len(jobs))
	if len(jobs) == 1 {
		errs[0] = deliver(ctx, producer, jobs[0], perMessageTimeout)
	} else {
		var wg sync.WaitGroup
		for i, job := range jobs {
			wg.Add(1)
			go func(i int, job *KafkaJob) {
				defer wg.Done()
				errs[i] = deliver(ctx, producer, job, perMessageTimeout)
			}(i, job)
		}
		wg.Wait()
	}

	for i, err := range errs {
		if err != nil {
			failed = append(failed, KafkaSendResult{Job: jobs[i], Err: err})
		} else {
			ok = append(ok, jobs[i])
		}
	}
	return ok, failed
}

// deliver 发送单条消息并等待投递报告
func deliver(ctx context.Context, producer Producer, job *KafkaJob, timeout time.Duration) error {
	reports := make(chan kafka.Event, 1)
	topic := job.Topic
	err := producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: job.Partition},
		Key:            job.Key,
		Value:          job.Value,
	}, reports)
	if err != nil {
		return fmt.Errorf("produce to %s: %w", job.Topic, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e, open := <-reports:
		if !open {
			return errors.New("delivery channel closed")
		}
		msg, isMsg := e.(*kafka.Message)
		if !isMsg {
			return fmt.Errorf("unexpected delivery event: %T", e)
		}
		return msg.TopicPartition.Error
	case <-timer.C:
		go drain(reports, job.Topic)
		return fmt.Errorf("%w (>%v) topic=%s", ErrDeliveryTimeout, timeout, job.Topic)
	case <-ctx.Done():
		go drain(reports, job.Topic)
		return fmt.Errorf("send to %s: %w", job.Topic, ctx.Err())
	}
}

// drain 收走迟到的投递报告，避免 librdkafka 回调阻塞
func drain(reports <-chan kafka.Event, topic string) {
	select {
	case <-reports:
	case <-time.After(drainTimeout):
		logger.Debugf("[mq] 等待迟到的投递报告超时: topic=%s", topic)
	}
}
