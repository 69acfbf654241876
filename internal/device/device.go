// Package device 定义 Go Direct 腰带设备的采集接口
//
// 设备本体（USB/BLE 传输、传感器发现）由厂家 SDK 负责，
// 这里只约定采集侧依赖的能力：打开连接、选择通道、
// 按固定周期采样、逐帧读取读数向量。
package device

import "fmt"

// Go Direct 呼吸腰带的通道编号
const (
	ChannelForce    = 1 // 力（N），胸腔扩张/收缩
	ChannelRespRate = 2 // 呼吸率（bpm）
	ChannelSteps    = 4 // 步数
	ChannelStepRate = 5 // 步频（spm）
)

// channelFields 通道编号到输出字段名的映射
var channelFields = map[int]string{
	ChannelForce:    "force",
	ChannelRespRate: "resp_rate_bpm",
	ChannelSteps:    "steps",
	ChannelStepRate: "step_rate_spm",
}

// FieldName 返回通道对应的输出字段名，未知通道用 sensor_N
func FieldName(channel int) string {
	if name, ok := channelFields[channel]; ok {
		return name
	}
	return fmt.Sprintf("sensor_%d", channel)
}

// Adapter 设备采集接口
//
// Read 每个采样周期返回一帧读数，顺序与 SelectSensors 传入的
// 通道列表一致；单个通道本帧无数据时对应元素为 nil。
// 整帧返回 nil 表示数据流结束，采集循环必须退出。
// Read 会阻塞到数据到达，没有超时。
type Adapter interface {
	Open(connection string) error
	SelectSensors(channels []int) error
	Start(periodMs int) error
	Read() []*float64
	Stop() error
	Close() error
}
