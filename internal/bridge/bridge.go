// Package bridge 把手机端的 JSON 数据报转换为 Unity 统一格式并转发
//
// 手机端不会每帧都带全部字段，HRV、呼吸阶段、阶段时长三个字段
// 做最近值缓存：本帧缺失时沿用上一次的有效值。腰带通道
// （force / resp_rate / steps / step_rate）该数据源不提供，恒为 0。
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/forwarder"
	"github.com/dhruvmynd/breathUnity/internal/models"
	"github.com/dhruvmynd/breathUnity/internal/stream"
)

// Bridge iOS 到 Unity 的桥接器
type Bridge struct {
	listenAddr string
	fwd        *forwarder.UDPForwarder
	mirror     *stream.Publisher // 可选，nil 时不镜像
	logger     *zap.Logger

	conn      *net.UDPConn
	running   atomic.Bool
	wg        sync.WaitGroup
	closeOnce sync.Once

	// 最近值缓存，UDP 接收协程和 MQTT 回调都会写
	mu                sync.Mutex
	lastHRV           float64
	lastPhase         string
	lastPhaseDuration float64
}

// NewBridge 创建桥接器
func NewBridge(listenAddr string, fwd *forwarder.UDPForwarder, mirror *stream.Publisher, logger *zap.Logger) *Bridge {
	return &Bridge{
		listenAddr: listenAddr,
		fwd:        fwd,
		mirror:     mirror,
		logger:     logger,
	}
}

// Start 绑定监听套接字并启动接收循环，阻塞到上下文取消
func (b *Bridge) Start(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", b.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to resolve listen address %s: %w", b.listenAddr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", b.listenAddr, err)
	}
	b.conn = conn
	b.running.Store(true)

	b.logger.Info("Bridge started",
		zap.String("listen", b.listenAddr),
		zap.String("unity", b.fwd.Addr()),
	)

	b.wg.Add(1)
	go b.receiveLoop()

	<-ctx.Done()
	return nil
}

// receiveLoop 接收循环，阻塞收包直到套接字关闭
func (b *Bridge) receiveLoop() {
	defer b.wg.Done()

	buf := make([]byte, 1024)
	for b.running.Load() {
		n, addr, err := b.conn.ReadFromUDP(buf)
		if err != nil {
			// 关闭套接字是正常的停止路径
			if errors.Is(err, net.ErrClosed) || !b.running.Load() {
				return
			}
			b.logger.Error("Receive error", zap.Error(err))
			continue
		}

		b.logger.Debug("Received phone datagram",
			zap.String("from", addr.IP.String()),
			zap.Int("bytes", n),
		)

		if err := b.HandlePayload(buf[:n]); err != nil {
			// 坏消息只丢弃，不中断循环
			b.logger.Warn("Dropped phone message", zap.Error(err))
		}
	}
}

// HandlePayload 处理一条手机 JSON 消息：解析、缓存合并、转发
//
// MQTT 通道的消息也走这里，和 UDP 数据报同一条处理路径。
func (b *Bridge) HandlePayload(payload []byte) error {
	var msg models.PhoneMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal phone message: %w", err)
	}

	packet := b.Convert(&msg)

	if err := b.fwd.Send(packet); err != nil {
		return fmt.Errorf("failed to forward packet: %w", err)
	}

	if b.mirror != nil {
		if _, err := b.mirror.Publish(context.Background(), packet); err != nil {
			// 镜像失败不影响数据通路
			b.logger.Error("Failed to mirror packet to stream", zap.Error(err))
		}
	}

	return nil
}

// Convert 把手机消息转换为 Unity 统一数据包
//
// 缓存规则：
// - hrv：仅在字段存在且 > 0 时更新缓存，0 或缺失沿用旧值
// - breathing_phase：仅在字段存在且非空时更新
// - phase_duration：字段存在即更新（包括 0）
// - heart_rate：直接透传，不缓存
func (b *Bridge) Convert(msg *models.PhoneMessage) models.UnityPacket {
	b.mu.Lock()
	if msg.HRV != nil && *msg.HRV > 0 {
		b.lastHRV = *msg.HRV
	}
	if msg.BreathingPhase != nil && *msg.BreathingPhase != "" {
		b.lastPhase = *msg.BreathingPhase
	}
	if msg.PhaseDuration != nil {
		b.lastPhaseDuration = *msg.PhaseDuration
	}
	hrv, phase, phaseDuration := b.lastHRV, b.lastPhase, b.lastPhaseDuration
	b.mu.Unlock()

	packet := models.UnityPacket{
		HRV:            hrv,
		BreathingPhase: phase,
		PhaseDuration:  phaseDuration,
		T:              float64(time.Now().UnixNano()) / 1e9,
	}
	if msg.HeartRate != nil {
		packet.HeartRateBPM = *msg.HeartRate
	}
	if msg.Timestamp != nil {
		packet.T = *msg.Timestamp
	}

	return packet
}

// LocalAddr 返回监听套接字的实际地址，Start 之前为 nil
func (b *Bridge) LocalAddr() net.Addr {
	if b.conn == nil {
		return nil
	}
	return b.conn.LocalAddr()
}

// Stop 停止桥接器，关闭监听套接字（恰好一次）并等待接收循环退出
func (b *Bridge) Stop() {
	b.running.Store(false)
	b.closeOnce.Do(func() {
		if b.conn != nil {
			b.conn.Close()
		}
	})
	b.wg.Wait()
	b.logger.Info("Bridge stopped")
}
