package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestFieldName(t *testing.T) {
	assert.Equal(t, "force", FieldName(ChannelForce))
	assert.Equal(t, "resp_rate_bpm", FieldName(ChannelRespRate))
	assert.Equal(t, "steps", FieldName(ChannelSteps))
	assert.Equal(t, "step_rate_spm", FieldName(ChannelStepRate))
	assert.Equal(t, "sensor_9", FieldName(9))
}

func TestReplayAdapter_Lifecycle(t *testing.T) {
	a := NewReplayAdapter([][]*float64{
		{f(1), f(2)},
		{f(3), f(4)},
	})

	// 未打开时不能选通道
	require.Error(t, a.SelectSensors([]int{ChannelForce}))

	require.NoError(t, a.Open("usb"))
	require.NoError(t, a.SelectSensors([]int{ChannelForce, ChannelRespRate}))

	// 未启动时读不到数据
	assert.Nil(t, a.Read())

	require.NoError(t, a.Start(50))

	frame := a.Read()
	require.Len(t, frame, 2)
	assert.Equal(t, 1.0, *frame[0])

	a.Read()

	// 帧耗尽即数据流结束
	assert.Nil(t, a.Read())

	require.NoError(t, a.Stop())
	require.NoError(t, a.Close())
}

func TestSimAdapter_ProducesFramesUntilStopped(t *testing.T) {
	a := NewSimAdapter()
	require.NoError(t, a.Open("usb"))
	require.NoError(t, a.SelectSensors([]int{ChannelForce, ChannelRespRate}))
	require.NoError(t, a.Start(1))

	frame := a.Read()
	require.Len(t, frame, 2)
	require.NotNil(t, frame[0])
	require.NotNil(t, frame[1])

	// 呼吸率在 15bpm 附近
	assert.InDelta(t, 15.0, *frame[1], 2.5)

	require.NoError(t, a.Stop())
	assert.Nil(t, a.Read())
	require.NoError(t, a.Close())
}

func TestSimAdapter_StartRequiresOpen(t *testing.T) {
	a := NewSimAdapter()
	assert.Error(t, a.Start(50))
	assert.Error(t, a.SelectSensors([]int{ChannelForce}))
}
