// Package mq 提供聊天事件的异步归档
// 事件流水（消息、进出房间、状态变化）单向写入 Kafka 供离线分析，
// 与实时扇出路径完全解耦：写入失败只记日志，绝不影响聊天主流程
package mq

import (
	"context"
	"encoding/json"
	"time"

	"relay_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventJournal 事件归档接口
type EventJournal interface {
	// Record 异步记录一条事件流水
	Record(eventType string, payload any)
	// Close 关闭底层连接
	Close() error
}

// journalRecord 归档条目的落盘格式
type journalRecord struct {
	Event string    `json:"event"`
	At    time.Time `json:"at"`
	Data  any       `json:"data"`
}

// ==================== Kafka 实现 ====================

// KafkaJournal 基于 Kafka 的事件归档
type KafkaJournal struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewKafkaJournal 创建 Kafka 事件归档
func NewKafkaJournal(conf config.KafkaConfig) *KafkaJournal {
	if conf.Timeout <= 0 {
		conf.Timeout = 10
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(conf.HostPort),
		Topic:    conf.EventTopic,
		Balancer: &kafka.Hash{},
		// 归档允许丢失，不等待全部副本确认
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	return &KafkaJournal{
		writer:  writer,
		timeout: time.Duration(conf.Timeout) * time.Second,
	}
}

// Record 异步记录事件，序列化或写入失败只记日志
func (j *KafkaJournal) Record(eventType string, payload any) {
	raw, err := json.Marshal(journalRecord{
		Event: eventType,
		At:    time.Now(),
		Data:  payload,
	})
	if err != nil {
		zap.L().Error("事件归档序列化失败", zap.String("event", eventType), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	err = j.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: raw,
	})
	if err != nil {
		zap.L().Warn("事件归档写入失败", zap.String("event", eventType), zap.Error(err))
	}
}

// Close 关闭 Kafka Writer
func (j *KafkaJournal) Close() error {
	return j.writer.Close()
}

// ==================== 空实现 ====================

// NoopJournal 归档关闭时使用的空实现
type NoopJournal struct{}

func (NoopJournal) Record(string, any) {}
func (NoopJournal) Close() error       { return nil }

// NewJournal 按配置创建事件归档，未启用时返回空实现
func NewJournal(conf config.KafkaConfig) EventJournal {
	if !conf.Enabled {
		return NoopJournal{}
	}
	zap.L().Info("Kafka 事件归档已启用",
		zap.String("addr", conf.HostPort),
		zap.String("topic", conf.EventTopic))
	return NewKafkaJournal(conf)
}

var (
	_ EventJournal = (*KafkaJournal)(nil)
	_ EventJournal = NoopJournal{}
)
