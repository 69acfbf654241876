package models

// PhoneMessage 手机端发来的 JSON 消息
//
// 所有字段都是可选的，用指针区分"未发送"和"发送了零值"；
// 手机端不会每帧都带全部字段（HRV 等低频指标只在更新时发送）。
type PhoneMessage struct {
	HeartRate      *float64 `json:"heart_rate"`      // 心率（bpm）
	HRV            *float64 `json:"hrv"`             // 心率变异性
	BreathingPhase *string  `json:"breathing_phase"` // 呼吸阶段："inhale" / "exhale"
	PhaseDuration  *float64 `json:"phase_duration"`  // 当前呼吸阶段持续时间（秒）
	SessionActive  *bool    `json:"session_active"`
	Device         string   `json:"device"`
	Timestamp      *float64 `json:"timestamp"` // Unix 秒
}

// UnityPacket 发往 Unity 的统一数据包
//
// 九个字段固定存在，手机数据源不提供的通道填 0。
type UnityPacket struct {
	HeartRateBPM   float64 `json:"heart_rate_bpm"`
	HRV            float64 `json:"hrv"`
	BreathingPhase string  `json:"breathing_phase"`
	PhaseDuration  float64 `json:"phase_duration"`
	Force          float64 `json:"force"`
	RespRateBPM    float64 `json:"resp_rate_bpm"`
	Steps          float64 `json:"steps"`
	StepRateSPM    float64 `json:"step_rate_spm"`
	T              float64 `json:"t"`
}

// SessionSummary 一次采集会话的汇总记录
type SessionSummary struct {
	SessionID   string  // UUID
	Service     string  // 采集进程名："belt-stream" / "breath-analysis"
	StartedAt   int64   // Unix 秒
	EndedAt     int64   // Unix 秒
	Samples     int64   // 采集的样本总数
	AvgRespRate float64 // 平均呼吸率（bpm）
	AvgForce    float64 // 平均呼吸力度（|N| 的均值）
}
