// Package stream 提供出站数据包的 Redis Streams 镜像
//
// 可选组件：配置了 REDIS_ADDR 时，每个发往 Unity 的数据包
// 同时 XADD 到指定流，供数据侧消费；未配置时整个模块不启用。
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/config"
)

// NewRedisClient 创建Redis客户端
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping 测试Redis连接
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Publisher 出站数据包的流发布器
type Publisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewPublisher 创建发布器，消息发往指定的流
func NewPublisher(client *redis.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Publish 把数据包以 JSON 形式发布到流，返回流消息ID
//
// 流条目格式与数据侧约定一致：data 字段放 JSON 文本，
// timestamp 字段放发布时刻的 Unix 秒。
func (p *Publisher) Publish(ctx context.Context, payload interface{}) (string, error) {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	return id, nil
}

// Stream 返回目标流名称
func (p *Publisher) Stream() string {
	return p.stream
}
