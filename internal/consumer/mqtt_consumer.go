// Package consumer 提供手机数据的 MQTT 接入通道
//
// 可选组件：手机端走蜂窝网络时 UDP 直连不可达，改为经 Broker
// 投递；消息体和 UDP 数据报完全相同，复用桥接器的处理路径。
package consumer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/bridge"
)

// MQTTConsumer 手机消息的MQTT消费者
type MQTTConsumer struct {
	client *Client
	topic  string
	bridge *bridge.Bridge
	logger *zap.Logger
}

// NewMQTTConsumer 创建MQTT消费者
func NewMQTTConsumer(client *Client, topic string, b *bridge.Bridge, logger *zap.Logger) *MQTTConsumer {
	return &MQTTConsumer{
		client: client,
		topic:  topic,
		bridge: b,
		logger: logger,
	}
}

// Start 启动消费者，阻塞到上下文取消
func (c *MQTTConsumer) Start(ctx context.Context) error {
	if c.topic == "" {
		return fmt.Errorf("phone MQTT topic not configured")
	}

	if err := c.client.Subscribe(c.topic, 1, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to phone topic: %w", err)
	}

	c.logger.Info("MQTT consumer started", zap.String("topic", c.topic))

	<-ctx.Done()
	return nil
}

// Stop 停止消费者
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	if c.topic != "" {
		if err := c.client.Unsubscribe(c.topic); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}

	c.logger.Info("MQTT consumer stopped")
	return nil
}

// handleMessage 处理MQTT消息，走和UDP数据报相同的转换路径
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	if err := c.bridge.HandlePayload(payload); err != nil {
		return fmt.Errorf("failed to handle phone message: %w", err)
	}

	return nil
}
