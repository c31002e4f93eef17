package models

import "time"

// Direction is the tradable direction of a momentum signal.
type Direction string

const (
	Long    Direction = "LONG"
	Short   Direction = "SHORT"
	Neutral Direction = "NEUTRAL"
)

// Signal is one immutable output of the momentum engine. A fresh instance is
// produced on every generation call; only the latest one is retained for
// pollers.
type Signal struct {
	Symbol             string    `json:"symbol"`
	CurrentPrice       float64   `json:"current_price"`
	Direction          Direction `json:"direction"`
	RawDirection       Direction `json:"raw_direction"`
	Confidence         float64   `json:"confidence"`
	ExitSignal         bool      `json:"exit_signal"`
	Reason             string    `json:"reason,omitempty"`
	Momentum3Min       float64   `json:"momentum_3min"`
	Momentum5Min       float64   `json:"momentum_5min"`
	Momentum10Min      float64   `json:"momentum_10min"`
	VolumeRatio        float64   `json:"volume_ratio"`
	RSI                float64   `json:"rsi"`
	ConsecutiveSignals int       `json:"consecutive_signals"`
	InCooldown         bool      `json:"in_cooldown"`
	CooldownRemaining  int       `json:"cooldown_remaining"`
	SessionHigh        float64   `json:"session_high"`
	SessionLow         float64   `json:"session_low"`
	Timestamp          time.Time `json:"timestamp"`
}

// Actionable reports whether the gated direction is tradable.
func (s *Signal) Actionable() bool {
	return s != nil && s.Direction != Neutral
}
