package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreathingAnalyzer_WindowEviction(t *testing.T) {
	a := NewBreathingAnalyzer(5)

	// 追加 12 个样本，窗口只保留最后 5 个，且保持追加顺序
	for i := 0; i < 12; i++ {
		a.AddSample(float64(i), float64(i), float64(i))
	}

	require.Equal(t, 5, a.Len())
	assert.Equal(t, []float64{7, 8, 9, 10, 11}, a.ForceWindow())
}

func TestBreathingAnalyzer_DepthUnderflow(t *testing.T) {
	a := NewBreathingAnalyzer(50)

	// 不足 10 个样本时深度为 0
	for i := 0; i < 9; i++ {
		a.AddSample(float64(i), 15, float64(i))
	}
	assert.Equal(t, 0.0, a.DerivedMetrics().BreathingDepth)

	a.AddSample(9, 15, 9)
	assert.Equal(t, 9.0, a.DerivedMetrics().BreathingDepth)
}

func TestBreathingAnalyzer_DepthTracksWindow(t *testing.T) {
	a := NewBreathingAnalyzer(10)

	// 先填入 0..9，深度 = 9
	for i := 0; i < 10; i++ {
		a.AddSample(float64(i), 15, float64(i))
	}
	require.Equal(t, 9.0, a.DerivedMetrics().BreathingDepth)

	// 再推入 10 个整体抬高 100 的样本，旧值全部被淘汰，
	// 深度只看当前窗口，不看历史
	for i := 0; i < 10; i++ {
		a.AddSample(float64(i)+100, 15, float64(i+10))
	}
	assert.Equal(t, 9.0, a.DerivedMetrics().BreathingDepth)
	assert.Equal(t, 100.0, a.DerivedMetrics().ForceMin)
	assert.Equal(t, 109.0, a.DerivedMetrics().ForceMax)
}

func TestBreathingAnalyzer_Regularity(t *testing.T) {
	a := NewBreathingAnalyzer(50)

	// 完全恒定的呼吸率：标准差 0，规律性 1
	for i := 0; i < 20; i++ {
		a.AddSample(1, 15, float64(i))
	}
	m := a.DerivedMetrics()
	assert.Equal(t, 1.0, m.BreathingRegularity)

	// 波动的呼吸率：规律性落在 [0, 1]
	b := NewBreathingAnalyzer(50)
	for i := 0; i < 20; i++ {
		b.AddSample(1, 15+float64(i%5), float64(i))
	}
	m = b.DerivedMetrics()
	assert.GreaterOrEqual(t, m.BreathingRegularity, 0.0)
	assert.LessOrEqual(t, m.BreathingRegularity, 1.0)

	// 不足 10 个样本时规律性为 0
	c := NewBreathingAnalyzer(50)
	c.AddSample(1, 15, 0)
	assert.Equal(t, 0.0, c.DerivedMetrics().BreathingRegularity)
}

func TestStdev_SingleSampleIncomputable(t *testing.T) {
	_, ok := stdev([]float64{15})
	assert.False(t, ok)

	sd, ok := stdev([]float64{10, 20})
	require.True(t, ok)
	assert.InDelta(t, 7.0710678, sd, 1e-6)
}

func TestTrend(t *testing.T) {
	assert.Equal(t, 1, trend([]float64{1, 1, 1, 1, 2}))
	assert.Equal(t, -1, trend([]float64{2, 1, 1, 1, 1}))
	assert.Equal(t, 0, trend([]float64{1, 1, 1, 1, 1}))

	// 死区内的微小变化不算趋势
	assert.Equal(t, 0, trend([]float64{1, 1, 1, 1, 1.05}))

	// 样本不足
	assert.Equal(t, 0, trend([]float64{1, 2, 3, 4}))

	// 只看最近 5 个，更早的样本不影响判定
	assert.Equal(t, 1, trend([]float64{100, 100, 1, 1, 1, 1, 2}))
}

func TestBreathingAnalyzer_Intensity(t *testing.T) {
	a := NewBreathingAnalyzer(50)

	// 不足 5 个样本时强度为 0
	for i := 0; i < 4; i++ {
		a.AddSample(-2, 15, float64(i))
	}
	assert.Equal(t, 0.0, a.DerivedMetrics().BreathingIntensity)

	// 强度取 |力| 的均值
	a.AddSample(2, 15, 4)
	assert.Equal(t, 2.0, a.DerivedMetrics().BreathingIntensity)
}

func TestBreathingAnalyzer_AvgRespRate(t *testing.T) {
	a := NewBreathingAnalyzer(50)
	assert.Equal(t, 0.0, a.DerivedMetrics().AvgRespRate)

	a.AddSample(0, 10, 0)
	a.AddSample(0, 20, 1)
	assert.Equal(t, 15.0, a.DerivedMetrics().AvgRespRate)
}

func TestBreathingAnalyzer_SessionDuration(t *testing.T) {
	a := NewBreathingAnalyzer(50)
	assert.GreaterOrEqual(t, a.DerivedMetrics().SessionDuration, 0.0)
}
