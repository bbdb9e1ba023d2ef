package mq

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deleteConsumerGroup 删除指定的消费组
func deleteConsumerGroup(brokers string, groupID string) error {
	adminClient, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return fmt.Errorf("创建管理员客户端失败: %w", err)
	}
	defer adminClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err = adminClient.DeleteConsumerGroups(ctx, []string{groupID}); err != nil {
		return fmt.Errorf("删除消费组失败: %w", err)
	}
	return nil
}

// 需要本地 Kafka：KAFKA_BROKERS=127.0.0.1:9092
func TestSubmissionEventRoundTrip_RealKafka(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}
	topic := "dapp-core-sol-recv-test"
	groupID := fmt.Sprintf("test-consumer-group-%d", time.Now().UnixNano())

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":        brokers,
		"acks":                     "all",
		"allow.auto.create.topics": true,
	})
	require.NoError(t, err)
	defer producer.Close()

	want := &SubmissionEvent{
		Signature: groupID,
		Cluster:   "devnet",
		Program:   "BbDVPD53NemX9wCk4Xie8A2jv8NrjNcUre9ruX9BW7TQ",
		Action:    "increment",
		FeePayer:  testFeePayer,
		Status:    StatusSubmitted,
		Timestamp: time.UnixMilli(time.Now().UnixMilli()),
	}
	pub := NewSubmissionPublisher(producer, topic, 1, 5*time.Second)
	require.NoError(t, pub.Publish(context.Background(), want))

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
		"session.timeout.ms": 10000,
	})
	require.NoError(t, err)
	defer func() {
		consumer.Close()
		if err := deleteConsumerGroup(brokers, groupID); err != nil {
			t.Logf("删除消费组失败: %v", err)
		}
	}()
	require.NoError(t, consumer.SubscribeTopics([]string{topic}, nil))

	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		msg, err := consumer.ReadMessage(200 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			t.Fatalf("接收消息错误: %v", err)
		}

		got, err := DecodeSubmissionEvent(msg.Value)
		require.NoError(t, err)
		if got.Signature != want.Signature {
			continue
		}
		assert.Equal(t, want.FeePayer, string(msg.Key))
		assert.Equal(t, want.Action, got.Action)
		assert.True(t, want.Timestamp.Equal(got.Timestamp))
		return
	}
	t.Fatal("接收消息超时")
}
