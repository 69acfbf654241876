package device

import "fmt"

// ReplayAdapter 回放固定帧序列的设备实现
//
// 用于没有硬件时的联调和测试：按 Read 调用顺序逐帧返回
// 预置的读数，帧耗尽后返回 nil（数据流结束）。
type ReplayAdapter struct {
	frames   [][]*float64
	pos      int
	opened   bool
	started  bool
	channels []int
}

// NewReplayAdapter 创建回放设备
func NewReplayAdapter(frames [][]*float64) *ReplayAdapter {
	return &ReplayAdapter{frames: frames}
}

func (a *ReplayAdapter) Open(connection string) error {
	a.opened = true
	return nil
}

func (a *ReplayAdapter) SelectSensors(channels []int) error {
	if !a.opened {
		return fmt.Errorf("device not open")
	}
	a.channels = append([]int(nil), channels...)
	return nil
}

func (a *ReplayAdapter) Start(periodMs int) error {
	if !a.opened {
		return fmt.Errorf("device not open")
	}
	a.started = true
	return nil
}

func (a *ReplayAdapter) Read() []*float64 {
	if !a.started || a.pos >= len(a.frames) {
		return nil
	}
	frame := a.frames[a.pos]
	a.pos++
	return frame
}

func (a *ReplayAdapter) Stop() error {
	a.started = false
	return nil
}

func (a *ReplayAdapter) Close() error {
	a.opened = false
	return nil
}

// Channels 返回 SelectSensors 选择的通道列表
func (a *ReplayAdapter) Channels() []int {
	return a.channels
}
