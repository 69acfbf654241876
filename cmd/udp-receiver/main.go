// udp-receiver 调试用接收器：打印收到的数据报，核对连通性
// 和 heart_rate_bpm 字段是否存在
package main

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/config"
	"github.com/dhruvmynd/breathUnity/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "udp-receiver")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	udpAddr, err := net.ResolveUDPAddr("udp", cfg.Receiver.ListenAddr)
	if err != nil {
		zapLogger.Fatal("Failed to resolve listen address", zap.Error(err))
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		zapLogger.Fatal("Failed to bind", zap.String("addr", cfg.Receiver.ListenAddr), zap.Error(err))
	}

	zapLogger.Info("UDP receiver listening", zap.String("addr", cfg.Receiver.ListenAddr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zapLogger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		conn.Close()
	}()

	buf := make([]byte, 1024)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			zapLogger.Error("Receive error", zap.Error(err))
			continue
		}

		raw := string(buf[:n])
		var parsed map[string]interface{}
		if err := json.Unmarshal(buf[:n], &parsed); err != nil {
			zapLogger.Warn("JSON parse error",
				zap.String("from", addr.IP.String()),
				zap.String("raw", raw),
				zap.Error(err),
			)
			continue
		}

		fields := []zap.Field{
			zap.String("from", addr.IP.String()),
			zap.Any("packet", parsed),
		}
		if hr, ok := parsed["heart_rate_bpm"]; ok {
			fields = append(fields, zap.Any("heart_rate_bpm", hr))
		} else {
			fields = append(fields, zap.Bool("heart_rate_missing", true))
		}
		zapLogger.Info("Received packet", fields...)
	}

	zapLogger.Info("Receiver stopped")
}
