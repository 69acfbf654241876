package device

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// SimAdapter 模拟呼吸腰带
//
// 没有硬件时跑通整条管道用：按采样周期生成正弦呼吸波形
// （力 ±10N，呼吸率在 15bpm 附近缓慢漂移），步数匀速增长。
// 厂家 SDK 的适配器实现同一个 Adapter 接口，可直接替换。
type SimAdapter struct {
	mu       sync.Mutex
	opened   bool
	channels []int
	ticker   *time.Ticker
	done     chan struct{}
	start    time.Time
	stopOnce sync.Once
}

// NewSimAdapter 创建模拟设备
func NewSimAdapter() *SimAdapter {
	return &SimAdapter{}
}

func (a *SimAdapter) Open(connection string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.opened = true
	return nil
}

func (a *SimAdapter) SelectSensors(channels []int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.opened {
		return fmt.Errorf("device not open")
	}
	a.channels = append([]int(nil), channels...)
	return nil
}

func (a *SimAdapter) Start(periodMs int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.opened {
		return fmt.Errorf("device not open")
	}
	if periodMs <= 0 {
		return fmt.Errorf("invalid sampling period: %d", periodMs)
	}
	a.ticker = time.NewTicker(time.Duration(periodMs) * time.Millisecond)
	a.done = make(chan struct{})
	a.start = time.Now()
	return nil
}

// Read 阻塞到下一个采样 tick，设备停止后返回 nil（数据流结束）
func (a *SimAdapter) Read() []*float64 {
	a.mu.Lock()
	ticker, done := a.ticker, a.done
	a.mu.Unlock()
	if ticker == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ticker.C:
	}

	t := time.Since(a.start).Seconds()
	frame := make([]*float64, len(a.channels))
	for i, ch := range a.channels {
		v := a.sample(ch, t)
		frame[i] = &v
	}
	return frame
}

// sample 生成一个通道在 t 秒时刻的模拟读数
func (a *SimAdapter) sample(channel int, t float64) float64 {
	switch channel {
	case ChannelForce:
		// 每分钟 15 次呼吸的胸腔力波形
		return 10.0 * math.Sin(2*math.Pi*t/4.0)
	case ChannelRespRate:
		return 15.0 + 2.0*math.Sin(2*math.Pi*t/60.0)
	case ChannelSteps:
		return math.Floor(t * 1.5)
	case ChannelStepRate:
		return 90.0
	default:
		return 0
	}
}

func (a *SimAdapter) Stop() error {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.ticker != nil {
			a.ticker.Stop()
		}
		if a.done != nil {
			close(a.done)
		}
	})
	return nil
}

func (a *SimAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.opened = false
	return nil
}
