// Package forwarder 负责把数据包编码为 JSON 并以 UDP 数据报发出
package forwarder

import (
	"encoding/json"
	"fmt"
	"net"

	"go.uber.org/zap"
)

// UDPForwarder UDP 转发器
//
// 每次 Send 发送一个数据报到固定目的地址，不重试、不确认。
// 数据包都是小的扁平映射，远小于安全数据报上限，不做分片处理。
type UDPForwarder struct {
	conn   *net.UDPConn
	addr   string
	logger *zap.Logger
}

// NewUDPForwarder 创建转发器并连接目的地址（"host:port"）
func NewUDPForwarder(addr string, logger *zap.Logger) (*UDPForwarder, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address %s: %w", addr, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP %s: %w", addr, err)
	}

	return &UDPForwarder{
		conn:   conn,
		addr:   addr,
		logger: logger,
	}, nil
}

// Send 编码并发送一个数据包
//
// 发送失败返回错误，由调用方记录日志并继续循环（尽力投递）。
func (f *UDPForwarder) Send(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if _, err := f.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send datagram to %s: %w", f.addr, err)
	}

	f.logger.Debug("Sent datagram",
		zap.String("dest", f.addr),
		zap.Int("bytes", len(data)),
	)

	return nil
}

// Addr 返回目的地址
func (f *UDPForwarder) Addr() string {
	return f.addr
}

// Close 关闭底层套接字
func (f *UDPForwarder) Close() error {
	return f.conn.Close()
}
