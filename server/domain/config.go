package domain

import "time"

type HistoryBackend string

const (
	HistoryBackendFile   HistoryBackend = "file"
	HistoryBackendSQLite HistoryBackend = "sqlite"
)

const (
	DefaultListenAddress   = ":5000"
	DefaultGRPCAddress     = ":50051"
	DefaultHistoryDir      = "./historico"
	DefaultSQLitePath      = "./salachat.db"
	DefaultOutboxSize      = 256
	DefaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	ListenAddress    string
	GRPCAddress      string
	HistoryBackend   HistoryBackend
	HistoryDir       string
	SQLitePath       string
	ListHistoryRooms bool
	OutboxSize       int
	LogLevel         string
	LogPretty        bool
	ShutdownTimeout  time.Duration
}

func NewConfig() Config {
	return Config{
		ListenAddress:   DefaultListenAddress,
		GRPCAddress:     DefaultGRPCAddress,
		HistoryBackend:  HistoryBackendFile,
		HistoryDir:      DefaultHistoryDir,
		SQLitePath:      DefaultSQLitePath,
		OutboxSize:      DefaultOutboxSize,
		LogLevel:        "info",
		LogPretty:       true,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Sanitize fills zero values with defaults. An empty GRPCAddress is kept:
// it disables the gRPC transport.
func (c Config) Sanitize() Config {
	if c.ListenAddress == "" {
		c.ListenAddress = DefaultListenAddress
	}
	switch c.HistoryBackend {
	case HistoryBackendFile, HistoryBackendSQLite:
	default:
		c.HistoryBackend = HistoryBackendFile
	}
	if c.HistoryDir == "" {
		c.HistoryDir = DefaultHistoryDir
	}
	if c.SQLitePath == "" {
		c.SQLitePath = DefaultSQLitePath
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = DefaultOutboxSize
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}
