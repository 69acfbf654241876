// Package analysis 提供呼吸信号的滚动窗口分析
//
// 维护固定容量的力/呼吸率窗口（默认 50 个样本，20Hz 下约 2.5 秒），
// 每次追加样本后可以取派生指标快照：
// - 呼吸深度：窗口内力的极差（max - min）
// - 呼吸规律性：呼吸率标准差的归一化倒数，范围 [0, 1]
// - 呼吸强度：窗口内 |力| 的均值
// - 趋势：最近 5 个样本首尾差的符号（+1 / -1 / 0）
//
// 样本不足时所有指标退化为 0，不报错。
package analysis

import (
	"math"
	"time"
)

const (
	// DefaultWindowSize 默认窗口容量
	DefaultWindowSize = 50

	// 指标生效的最小样本数
	minSamplesRange = 10 // 深度、规律性
	minSamplesMean  = 5  // 强度
	minSamplesTrend = 5  // 趋势

	// 趋势判定的死区，首尾差的绝对值超过该值才算有趋势
	trendDeadband = 0.1
)

// Metrics 派生指标快照
type Metrics struct {
	BreathingDepth      float64 `json:"breathing_depth"`
	BreathingRegularity float64 `json:"breathing_regularity"`
	BreathingIntensity  float64 `json:"breathing_intensity"`
	SessionDuration     float64 `json:"session_duration"` // 秒
	AvgRespRate         float64 `json:"avg_resp_rate"`
	ForceTrend          int     `json:"force_trend"`     // +1 增 / -1 减 / 0 平稳
	RespRateTrend       int     `json:"resp_rate_trend"` // 同上
	ForceMin            float64 `json:"force_min"`
	ForceMax            float64 `json:"force_max"`
}

// BreathingAnalyzer 呼吸分析器
//
// 非并发安全：采集循环是单协程的读-算-发节奏，按设计只有
// 一个调用方。
type BreathingAnalyzer struct {
	windowSize   int
	forceWindow  []float64
	respWindow   []float64
	timestamps   []float64
	sessionStart time.Time
}

// NewBreathingAnalyzer 创建呼吸分析器，windowSize <= 0 时使用默认容量
func NewBreathingAnalyzer(windowSize int) *BreathingAnalyzer {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &BreathingAnalyzer{
		windowSize:   windowSize,
		forceWindow:  make([]float64, 0, windowSize),
		respWindow:   make([]float64, 0, windowSize),
		timestamps:   make([]float64, 0, windowSize),
		sessionStart: time.Now(),
	}
}

// AddSample 追加一帧样本，窗口满时淘汰最旧的一帧
func (a *BreathingAnalyzer) AddSample(force, respRate, timestamp float64) {
	a.forceWindow = push(a.forceWindow, force, a.windowSize)
	a.respWindow = push(a.respWindow, respRate, a.windowSize)
	a.timestamps = push(a.timestamps, timestamp, a.windowSize)
}

// push 固定容量 FIFO 追加
func push(window []float64, v float64, capacity int) []float64 {
	if len(window) == capacity {
		copy(window, window[1:])
		window[capacity-1] = v
		return window
	}
	return append(window, v)
}

// Len 返回当前窗口内的样本数
func (a *BreathingAnalyzer) Len() int {
	return len(a.forceWindow)
}

// ForceWindow 返回力窗口的副本（按追加顺序）
func (a *BreathingAnalyzer) ForceWindow() []float64 {
	return append([]float64(nil), a.forceWindow...)
}

// DerivedMetrics 返回当前派生指标快照
func (a *BreathingAnalyzer) DerivedMetrics() Metrics {
	m := Metrics{
		SessionDuration: time.Since(a.sessionStart).Seconds(),
		ForceTrend:      trend(a.forceWindow),
		RespRateTrend:   trend(a.respWindow),
	}

	if len(a.forceWindow) >= minSamplesRange {
		lo, hi := minMax(a.forceWindow)
		m.BreathingDepth = hi - lo
	}

	if len(a.respWindow) >= minSamplesRange {
		if sd, ok := stdev(a.respWindow); ok {
			m.BreathingRegularity = math.Max(0, 1.0-sd/10.0)
		}
	}

	if len(a.forceWindow) >= minSamplesMean {
		sum := 0.0
		for _, f := range a.forceWindow {
			sum += math.Abs(f)
		}
		m.BreathingIntensity = sum / float64(len(a.forceWindow))
	}

	if len(a.respWindow) > 0 {
		m.AvgRespRate = mean(a.respWindow)
	}

	if len(a.forceWindow) > 0 {
		m.ForceMin, m.ForceMax = minMax(a.forceWindow)
	}

	return m
}

// trend 判断最近 5 个样本的走向
func trend(window []float64) int {
	if len(window) < minSamplesTrend {
		return 0
	}
	recent := window[len(window)-minSamplesTrend:]
	switch {
	case recent[len(recent)-1] > recent[0]+trendDeadband:
		return 1
	case recent[len(recent)-1] < recent[0]-trendDeadband:
		return -1
	default:
		return 0
	}
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stdev 样本标准差（n-1），样本数不足 2 时不可计算
func stdev(vals []float64) (float64, bool) {
	n := len(vals)
	if n < 2 {
		return 0, false
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1)), true
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
