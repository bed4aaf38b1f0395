package config

import (
	"runtime"
)

// Tuning holds concurrency and resource parameters for the server host.
type Tuning struct {
	// Channel buffer sizes
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Websocket limits
	MaxMessageSize       int64
	MaxMessagesPerSecond int
	MaxSessions          int
}

// DefaultTuning returns sensible defaults for production.
func DefaultTuning() Tuning {
	numCPU := runtime.NumCPU()

	return Tuning{
		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       64,

		// SQLite serialises writers anyway; a small pool keeps readers warm.
		DBMaxOpenConns: numCPU * 2,
		DBMaxIdleConns: numCPU,

		MaxMessageSize:       512,
		MaxMessagesPerSecond: 20,
		MaxSessions:          200,
	}
}

// StressTestTuning returns aggressive settings for the agitator load generator.
func StressTestTuning() Tuning {
	numCPU := runtime.NumCPU()

	return Tuning{
		BroadcastChannelBuffer: 512,
		ClientSendBuffer:       128,

		DBMaxOpenConns: numCPU * 4,
		DBMaxIdleConns: numCPU * 2,

		MaxMessageSize:       512,
		MaxMessagesPerSecond: 500,
		MaxSessions:          1000,
	}
}

// LowResourceTuning returns minimal settings for development.
func LowResourceTuning() Tuning {
	return Tuning{
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,

		DBMaxOpenConns: 2,
		DBMaxIdleConns: 1,

		MaxMessageSize:       512,
		MaxMessagesPerSecond: 10,
		MaxSessions:          10,
	}
}

// TuningForProfile picks a preset by name; unknown names get the defaults.
func TuningForProfile(profile string) Tuning {
	switch profile {
	case "stress":
		return StressTestTuning()
	case "low":
		return LowResourceTuning()
	default:
		return DefaultTuning()
	}
}
