package service

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/bridge"
	"github.com/dhruvmynd/breathUnity/internal/config"
	"github.com/dhruvmynd/breathUnity/internal/consumer"
	"github.com/dhruvmynd/breathUnity/internal/forwarder"
	"github.com/dhruvmynd/breathUnity/internal/stream"
)

// BridgeService iOS 桥接服务
//
// 固定的 UDP 接收通道之外，配置了 Broker 时再挂一个 MQTT
// 接入通道，两个通道的消息走同一条转换路径。
type BridgeService struct {
	cfg    *config.Config
	logger *zap.Logger

	fwd         *forwarder.UDPForwarder
	bridge      *bridge.Bridge
	redisClient *redis.Client
	mqttClient  *consumer.Client
	consumer    *consumer.MQTTConsumer
}

// NewBridgeService 创建桥接服务
func NewBridgeService(cfg *config.Config, logger *zap.Logger) (*BridgeService, error) {
	fwd, err := forwarder.NewUDPForwarder(cfg.Bridge.UnityAddr, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create forwarder: %w", err)
	}

	var mirror *stream.Publisher
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = stream.NewRedisClient(&cfg.Redis)
		if err := stream.Ping(context.Background(), redisClient); err != nil {
			fwd.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		mirror = stream.NewPublisher(redisClient, cfg.Bridge.Stream, logger)
	}

	b := bridge.NewBridge(cfg.Bridge.ListenAddr, fwd, mirror, logger)

	s := &BridgeService{
		cfg:         cfg,
		logger:      logger,
		fwd:         fwd,
		bridge:      b,
		redisClient: redisClient,
	}

	// 可选：MQTT 接入通道
	if cfg.MQTT.Broker != "" {
		mqttClient, err := consumer.NewClient(&cfg.MQTT, logger)
		if err != nil {
			fwd.Close()
			if redisClient != nil {
				redisClient.Close()
			}
			return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
		}
		s.mqttClient = mqttClient
		s.consumer = consumer.NewMQTTConsumer(mqttClient, cfg.Bridge.Topic, b, logger)
	}

	return s, nil
}

// Start 启动桥接服务，阻塞到上下文取消
func (s *BridgeService) Start(ctx context.Context) error {
	if s.consumer != nil {
		go func() {
			if err := s.consumer.Start(ctx); err != nil {
				s.logger.Error("MQTT consumer failed", zap.Error(err))
			}
		}()
	}

	return s.bridge.Start(ctx)
}

// Stop 停止桥接服务，两个套接字各关闭恰好一次
func (s *BridgeService) Stop(ctx context.Context) error {
	if s.consumer != nil {
		s.consumer.Stop(ctx)
	}
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}

	s.bridge.Stop()

	if err := s.fwd.Close(); err != nil {
		s.logger.Error("Failed to close forwarder", zap.Error(err))
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}

	return nil
}
