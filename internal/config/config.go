package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// Config 全部采集/转发进程共用的配置
//
// 网络端点和采样周期属于部署配置，通过环境变量覆盖；
// 默认值与原始部署一致（Unity 监听 53877/53879，手机端发往 53878）。
type Config struct {
	// Belt 腰带采集配置（belt-stream / breath-analysis 共用）
	Belt struct {
		Connection string // 设备连接方式："usb" 或 "ble"
		PeriodMs   int    // 采样周期（毫秒），50ms = 20Hz
		UnityAddr  string // Unity 接收端地址
		Stream     string // Redis Streams 输出流（可选镜像）
	}

	// Analysis 呼吸分析配置
	Analysis struct {
		WindowSize int // 滚动窗口容量，50 个样本 ≈ 20Hz 下 2.5 秒
	}

	// Bridge iOS 桥接配置
	Bridge struct {
		ListenAddr string // 接收手机数据的 UDP 监听地址
		UnityAddr  string // Unity 接收端地址
		Topic      string // 手机数据的 MQTT 主题（可选通道，Broker 为空时禁用）
		Stream     string // Redis Streams 输出流（可选镜像）
	}

	// Receiver 调试接收器配置
	Receiver struct {
		ListenAddr string
	}

	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
//
// DB_HOST / REDIS_ADDR / BRIDGE_MQTT_BROKER 默认为空，对应的
// 会话归档、流镜像、MQTT 通道在未配置时全部禁用，
// 纯 UDP 管道可以零依赖运行。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Belt.Connection = getEnv("BELT_CONNECTION", "usb")
	cfg.Belt.PeriodMs = getEnvInt("BELT_PERIOD_MS", 50)
	cfg.Belt.UnityAddr = getEnv("BELT_UNITY_ADDR", "127.0.0.1:53877")
	cfg.Belt.Stream = getEnv("BELT_STREAM", "belt:data:stream")

	cfg.Analysis.WindowSize = getEnvInt("ANALYSIS_WINDOW_SIZE", 50)

	cfg.Bridge.ListenAddr = getEnv("BRIDGE_LISTEN_ADDR", "0.0.0.0:53878")
	cfg.Bridge.UnityAddr = getEnv("BRIDGE_UNITY_ADDR", "127.0.0.1:53879")
	cfg.Bridge.Topic = getEnv("BRIDGE_MQTT_TOPIC", "phone/vitals")
	cfg.Bridge.Stream = getEnv("BRIDGE_STREAM", "bridge:data:stream")

	cfg.Receiver.ListenAddr = getEnv("RECEIVER_LISTEN_ADDR", "0.0.0.0:53878")

	cfg.Database.Host = getEnv("DB_HOST", "")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "breath")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("BRIDGE_MQTT_BROKER", "")
	cfg.MQTT.ClientID = getEnv("BRIDGE_MQTT_CLIENT_ID", "ios-bridge")
	cfg.MQTT.Username = getEnv("BRIDGE_MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("BRIDGE_MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if cfg.Belt.PeriodMs <= 0 {
		return nil, fmt.Errorf("invalid BELT_PERIOD_MS: %d", cfg.Belt.PeriodMs)
	}
	if cfg.Analysis.WindowSize <= 0 {
		return nil, fmt.Errorf("invalid ANALYSIS_WINDOW_SIZE: %d", cfg.Analysis.WindowSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
