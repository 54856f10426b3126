// Package config 定义 go-quic 配置
//
// 配置按关注点拆分：
//   - TransportSettings: 传输参数（流限额、调度、流组通告）
//   - XskConfig: AF_XDP 发送路径参数
//
// 各配置提供 Default* 构造器与 Validate 校验。
package config

import "errors"

var (
	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("invalid config")
)

// Config go-quic 聚合配置
type Config struct {
	// Transport 传输参数
	Transport TransportSettings

	// Xsk AF_XDP 发送路径配置
	Xsk XskConfig
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Transport: DefaultTransportSettings(),
		Xsk:       DefaultXskConfig(),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	return c.Xsk.Validate()
}
