package mq

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// 事件类型，写在消息前 4 字节（小端序）
const (
	EventTypeSubmission uint32 = 1
)

const (
	StatusSubmitted = "submitted"
	StatusFailed    = "failed"
)

var ErrShortEvent = errors.New("event payload shorter than type prefix")

// SubmissionEvent 一次交易提交的结果
type SubmissionEvent struct {
	Signature string
	Cluster   string
	Program   string
	Action    string
	FeePayer  string
	Status    string // submitted / failed
	ErrorKind string // 失败分类，成功时为空
	Message   string // 面向用户的提示
	Timestamp time.Time
}

func (e *SubmissionEvent) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"signature":  e.Signature,
		"cluster":    e.Cluster,
		"program":    e.Program,
		"action":     e.Action,
		"fee_payer":  e.FeePayer,
		"status":     e.Status,
		"error_kind": e.ErrorKind,
		"message":    e.Message,
		"ts":         e.Timestamp.UnixMilli(),
	})
}

// EncodeSubmissionEvent 编码为 [type(4)][protobuf Struct]
func EncodeSubmissionEvent(e *SubmissionEvent) ([]byte, error) {
	msg, err := e.toStruct()
	if err != nil {
		return nil, fmt.Errorf("build submission event: %w", err)
	}
	return EncodeEvent(EventTypeSubmission, msg)
}

// DecodeSubmissionEvent EncodeSubmissionEvent 的逆过程，供消费端和测试使用
func DecodeSubmissionEvent(data []byte) (*SubmissionEvent, error) {
	eventType, body, err := SplitEvent(data)
	if err != nil {
		return nil, err
	}
	if eventType != EventTypeSubmission {
		return nil, fmt.Errorf("unexpected event type: %d", eventType)
	}

	var msg structpb.Struct
	if err := proto.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal submission event: %w", err)
	}
	fields := msg.GetFields()
	str := func(k string) string { return fields[k].GetStringValue() }
	return &SubmissionEvent{
		Signature: str("signature"),
		Cluster:   str("cluster"),
		Program:   str("program"),
		Action:    str("action"),
		FeePayer:  str("fee_payer"),
		Status:    str("status"),
		ErrorKind: str("error_kind"),
		Message:   str("message"),
		Timestamp: time.UnixMilli(int64(fields["ts"].GetNumberValue())),
	}, nil
}

// EncodeEvent 将 protobuf 消息编码为带事件类型前缀的二进制数据：
// - 前 4 字节为事件类型（uint32，小端序）
// - 后续为 protobuf 序列化数据（使用 MarshalAppend）
func EncodeEvent(eventType uint32, msg proto.Message) ([]byte, error) {
	const extraBuffer = 32

	size := proto.Size(msg)
	buf := make([]byte, 4, 4+size+extraBuffer)
	binary.LittleEndian.PutUint32(buf[:4], eventType)

	opts := proto.MarshalOptions{Deterministic: true}
	result, err := opts.MarshalAppend(buf, msg)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: marshal %T: %w", msg, err)
	}
	return result, nil
}

// SplitEvent 拆出事件类型与 protobuf 数据
func SplitEvent(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, nil, ErrShortEvent
	}
	return binary.LittleEndian.Uint32(data[:4]), data[4:], nil
}
