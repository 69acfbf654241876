// Package service 负责把配置装配成可运行的采集/桥接服务
package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/analysis"
	"github.com/dhruvmynd/breathUnity/internal/config"
	"github.com/dhruvmynd/breathUnity/internal/device"
	"github.com/dhruvmynd/breathUnity/internal/forwarder"
	"github.com/dhruvmynd/breathUnity/internal/models"
	"github.com/dhruvmynd/breathUnity/internal/repository"
	"github.com/dhruvmynd/breathUnity/internal/stream"
)

// BeltService 腰带采集服务
//
// 采集循环是同步的读-算-发节奏：每个采样周期从设备读一帧，
// （分析模式下）更新滚动窗口并取派生指标，发出一个 UDP 数据报。
// 各 tick 之间没有重叠，节奏由设备的阻塞式 Read 决定。
type BeltService struct {
	cfg      *config.Config
	logger   *zap.Logger
	dev      device.Adapter
	analyzer *analysis.BreathingAnalyzer // nil 表示原始转发模式
	name     string

	channels []int
	fallback []int // 通道启用失败时的回退列表，nil 表示不回退

	fwd         *forwarder.UDPForwarder
	redisClient *redis.Client
	mirror      *stream.Publisher
	db          *sql.DB
	sessions    *repository.SessionRepository

	// 采集循环的退出信号：Run 返回时关闭，Stop 等它关闭后
	// 才关套接字、读会话统计，两个协程不共享进行中的状态
	done    chan struct{}
	started atomic.Bool

	// 会话统计，只有采集循环写，Stop 在循环退出后才读
	sessionID   string
	startedAt   time.Time
	samples     int64
	sumResp     float64
	sumAbsForce float64
}

// NewBeltService 创建原始转发服务：尽量启用全部可用通道，
// 失败时回退到力+呼吸率两个基础通道
func NewBeltService(cfg *config.Config, dev device.Adapter, logger *zap.Logger) (*BeltService, error) {
	return newBeltService(cfg, dev, logger, nil,
		[]int{device.ChannelForce, device.ChannelRespRate, device.ChannelSteps, device.ChannelStepRate},
		[]int{device.ChannelForce, device.ChannelRespRate},
		"belt-stream",
	)
}

// NewAnalysisService 创建呼吸分析服务：力+呼吸率通道经滚动窗口
// 分析器派生呼吸指标后转发
func NewAnalysisService(cfg *config.Config, dev device.Adapter, logger *zap.Logger) (*BeltService, error) {
	return newBeltService(cfg, dev, logger,
		analysis.NewBreathingAnalyzer(cfg.Analysis.WindowSize),
		[]int{device.ChannelForce, device.ChannelRespRate},
		nil,
		"breath-analysis",
	)
}

func newBeltService(cfg *config.Config, dev device.Adapter, logger *zap.Logger,
	analyzer *analysis.BreathingAnalyzer, channels, fallback []int, name string) (*BeltService, error) {

	fwd, err := forwarder.NewUDPForwarder(cfg.Belt.UnityAddr, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create forwarder: %w", err)
	}

	s := &BeltService{
		cfg:       cfg,
		logger:    logger,
		dev:       dev,
		analyzer:  analyzer,
		name:      name,
		channels:  channels,
		fallback:  fallback,
		fwd:       fwd,
		done:      make(chan struct{}),
		sessionID: uuid.NewString(),
		startedAt: time.Now(),
	}

	// 可选：出站数据包镜像到 Redis Streams
	if cfg.Redis.Addr != "" {
		s.redisClient = stream.NewRedisClient(&cfg.Redis)
		if err := stream.Ping(context.Background(), s.redisClient); err != nil {
			fwd.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.mirror = stream.NewPublisher(s.redisClient, cfg.Belt.Stream, logger)
	}

	// 可选：退出时归档会话汇总
	if cfg.Database.Host != "" {
		db, err := repository.NewPostgresDB(&cfg.Database)
		if err != nil {
			fwd.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.db = db
		s.sessions = repository.NewSessionRepository(db, logger)
	}

	return s, nil
}

// Run 打开设备并进入采集循环，阻塞到数据流结束或上下文取消
//
// 设备打开或通道启用失败是不可恢复的：报错返回，不重连。
func (s *BeltService) Run(ctx context.Context) error {
	s.started.Store(true)
	defer close(s.done)

	if err := s.dev.Open(s.cfg.Belt.Connection); err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}

	if err := s.dev.SelectSensors(s.channels); err != nil {
		if s.fallback == nil {
			return fmt.Errorf("failed to enable sensors %v: %w", s.channels, err)
		}
		s.logger.Warn("Failed to enable sensors, falling back",
			zap.Ints("channels", s.channels),
			zap.Ints("fallback", s.fallback),
			zap.Error(err),
		)
		if err := s.dev.SelectSensors(s.fallback); err != nil {
			return fmt.Errorf("failed to enable fallback sensors %v: %w", s.fallback, err)
		}
		s.channels = s.fallback
	}

	if err := s.dev.Start(s.cfg.Belt.PeriodMs); err != nil {
		return fmt.Errorf("failed to start sampling: %w", err)
	}

	s.logger.Info("Streaming belt data",
		zap.String("session_id", s.sessionID),
		zap.String("unity", s.fwd.Addr()),
		zap.Ints("channels", s.channels),
		zap.Int("period_ms", s.cfg.Belt.PeriodMs),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		vals := s.dev.Read()
		if vals == nil {
			s.logger.Info("End of sensor stream")
			return nil
		}

		ts := float64(time.Now().UnixNano()) / 1e9
		payload := s.buildPayload(vals, ts)

		if err := s.fwd.Send(payload); err != nil {
			// 尽力投递：发送失败只记录，下个 tick 继续
			s.logger.Error("Failed to send packet", zap.Error(err))
		}

		if s.mirror != nil {
			if _, err := s.mirror.Publish(ctx, payload); err != nil {
				s.logger.Error("Failed to mirror packet to stream", zap.Error(err))
			}
		}
	}
}

// buildPayload 把一帧读数组装成出站数据包
func (s *BeltService) buildPayload(vals []*float64, ts float64) map[string]interface{} {
	if s.analyzer != nil {
		return s.buildAnalysisPayload(vals, ts)
	}

	payload := map[string]interface{}{"t": ts}
	for i, ch := range s.channels {
		if i >= len(vals) || vals[i] == nil {
			continue
		}
		payload[device.FieldName(ch)] = *vals[i]

		switch ch {
		case device.ChannelForce:
			s.sumAbsForce += math.Abs(*vals[i])
		case device.ChannelRespRate:
			s.sumResp += *vals[i]
		}
	}
	s.samples++

	return payload
}

// buildAnalysisPayload 力+呼吸率经分析器派生呼吸指标
func (s *BeltService) buildAnalysisPayload(vals []*float64, ts float64) map[string]interface{} {
	var force, respRate float64
	if len(vals) > 0 && vals[0] != nil {
		force = *vals[0]
	}
	if len(vals) > 1 && vals[1] != nil {
		respRate = *vals[1]
	}

	s.analyzer.AddSample(force, respRate, ts)
	m := s.analyzer.DerivedMetrics()

	s.samples++
	s.sumResp += respRate
	s.sumAbsForce += math.Abs(force)

	// 每 2 秒打一条监控日志（20Hz 下 40 个样本）
	if s.samples%40 == 0 {
		s.logger.Info("Breathing metrics",
			zap.Float64("force", force),
			zap.Float64("resp_rate_bpm", respRate),
			zap.Float64("depth", m.BreathingDepth),
			zap.Float64("regularity", m.BreathingRegularity),
		)
	}

	return map[string]interface{}{
		"t":                    ts,
		"force":                force,
		"resp_rate_bpm":        respRate,
		"breathing_depth":      m.BreathingDepth,
		"breathing_regularity": m.BreathingRegularity,
		"breathing_intensity":  m.BreathingIntensity,
		"session_duration":     m.SessionDuration,
		"avg_resp_rate":        m.AvgRespRate,
		"force_trend":          m.ForceTrend,
		"resp_rate_trend":      m.RespRateTrend,
		"force_min":            m.ForceMin,
		"force_max":            m.ForceMax,
		"force_range":          m.BreathingDepth,
	}
}

// Stop 停止采集：先停设备让阻塞中的 Read 返回，等采集循环
// 退出后再关套接字、归档会话汇总
func (s *BeltService) Stop(ctx context.Context) error {
	if err := s.dev.Stop(); err != nil {
		s.logger.Error("Failed to stop device", zap.Error(err))
	}

	// 采集循环可能还在处理最后一帧，等它退出再碰共享状态
	if s.started.Load() {
		<-s.done
	}

	if err := s.dev.Close(); err != nil {
		s.logger.Error("Failed to close device", zap.Error(err))
	}
	if err := s.fwd.Close(); err != nil {
		s.logger.Error("Failed to close forwarder", zap.Error(err))
	}

	if s.sessions != nil {
		summary := s.Summary()
		if err := s.sessions.Save(ctx, summary); err != nil {
			s.logger.Error("Failed to save session summary", zap.Error(err))
		}
	}

	if s.db != nil {
		s.db.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}

	s.logger.Info("Belt service stopped",
		zap.String("session_id", s.sessionID),
		zap.Int64("samples", s.samples),
	)
	return nil
}

// Summary 返回当前会话的汇总
func (s *BeltService) Summary() *models.SessionSummary {
	summary := &models.SessionSummary{
		SessionID: s.sessionID,
		Service:   s.name,
		StartedAt: s.startedAt.Unix(),
		EndedAt:   time.Now().Unix(),
		Samples:   s.samples,
	}
	if s.samples > 0 {
		summary.AvgRespRate = s.sumResp / float64(s.samples)
		summary.AvgForce = s.sumAbsForce / float64(s.samples)
	}
	return summary
}
