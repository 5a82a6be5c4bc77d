package config

import (
	"fmt"
	"net"

	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/powsearch/grid"
	"github.com/spacemeshos/powsearch/persistence"
	"github.com/spacemeshos/powsearch/shared"
)

const (
	MaxDevices = 64
	MaxLanes   = 4096
)

const (
	DefaultDevices = 1
	// 0 selects one lane per CPU.
	DefaultLanes = 0

	DefaultBlocks          = 256
	DefaultThreadsPerBlock = 256
	DefaultItersPerThread  = 64

	DefaultStartNonce  = 0
	DefaultWindowSize  = 1_000_000
	DefaultStreamBatch = 1_000_000

	DefaultListenAddr = "0.0.0.0:8080"
	DefaultLogLevel   = "info"
)

type Config struct {
	Devices int `mapstructure:"devices"`
	Lanes   int `mapstructure:"lanes"`

	Blocks          int `mapstructure:"blocks"`
	ThreadsPerBlock int `mapstructure:"tpb"`
	ItersPerThread  int `mapstructure:"iters"`

	// Search params of server jobs.
	StartNonce uint64 `mapstructure:"start"`
	WindowSize uint64 `mapstructure:"count"`

	StreamBatch uint64 `mapstructure:"batch"`

	CacheFile  string `mapstructure:"cache-file"`
	ListenAddr string `mapstructure:"listen"`
	LogLevel   string `mapstructure:"log-level"`
}

// Shape returns the grid shape of every dispatch.
func (cfg *Config) Shape() grid.Shape {
	return grid.Shape{
		Blocks:          cfg.Blocks,
		ThreadsPerBlock: cfg.ThreadsPerBlock,
		ItersPerThread:  cfg.ItersPerThread,
	}
}

// Level parses LogLevel.
func (cfg *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(cfg.LogLevel)
}

func (cfg *Config) Validate() error {
	if cfg.Devices < 1 || cfg.Devices > MaxDevices {
		return shared.ConfigError{Param: "Devices", Expected: fmt.Sprintf("[1, %d]", MaxDevices), Given: fmt.Sprintf("%d", cfg.Devices)}
	}

	if cfg.Lanes < 0 || cfg.Lanes > MaxLanes {
		return shared.ConfigError{Param: "Lanes", Expected: fmt.Sprintf("[0, %d]", MaxLanes), Given: fmt.Sprintf("%d", cfg.Lanes)}
	}

	if err := cfg.Shape().Validate(); err != nil {
		return err
	}

	if err := (shared.Window{Start: cfg.StartNonce, Count: cfg.WindowSize}).Validate(); err != nil {
		return err
	}

	if cfg.StreamBatch == 0 {
		return shared.ConfigError{Param: "StreamBatch", Expected: "> 0", Given: "0"}
	}

	if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		return shared.ConfigError{Param: "ListenAddr", Expected: "host:port", Given: cfg.ListenAddr}
	}

	if _, err := cfg.Level(); err != nil {
		return shared.ConfigError{Param: "LogLevel", Expected: "debug, info, warn, error", Given: cfg.LogLevel}
	}

	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Devices: DefaultDevices,
		Lanes:   DefaultLanes,

		Blocks:          DefaultBlocks,
		ThreadsPerBlock: DefaultThreadsPerBlock,
		ItersPerThread:  DefaultItersPerThread,

		StartNonce:  DefaultStartNonce,
		WindowSize:  DefaultWindowSize,
		StreamBatch: DefaultStreamBatch,

		CacheFile:  persistence.DefaultFileName,
		ListenAddr: DefaultListenAddr,
		LogLevel:   DefaultLogLevel,
	}
}
