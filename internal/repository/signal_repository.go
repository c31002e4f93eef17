package repository

import (
	"context"
	"fmt"
	"time"

	"TickPulse/internal/domain/models"
	drepo "TickPulse/internal/domain/repository"
	"TickPulse/pkg/clickhouse"
	applogger "TickPulse/pkg/logger"
)

var signalSchema = []string{
	`CREATE TABLE IF NOT EXISTS signals (
		symbol              LowCardinality(String),
		current_price       Float64,
		direction           LowCardinality(String),
		raw_direction       LowCardinality(String),
		confidence          Float64,
		exit_signal         UInt8,
		reason              String,
		momentum_3min       Float64,
		momentum_5min       Float64,
		momentum_10min      Float64,
		volume_ratio        Float64,
		rsi                 Float64,
		consecutive_signals Int32,
		in_cooldown         UInt8,
		cooldown_remaining  Int32,
		session_high        Float64,
		session_low         Float64,
		ts                  DateTime64(3)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMMDD(ts)
	ORDER BY (symbol, ts)
	TTL toDateTime(ts) + INTERVAL 30 DAY`,
}

// ClickHouseSignalStore persists every emitted signal for history queries.
type ClickHouseSignalStore struct {
	client *clickhouse.Client
	log    *applogger.Logger
}

func NewClickHouseSignalStore(ctx context.Context, client *clickhouse.Client, log *applogger.Logger) (drepo.SignalStore, error) {
	if err := client.InitSchema(ctx, signalSchema); err != nil {
		return nil, fmt.Errorf("signal store schema: %w", err)
	}
	return &ClickHouseSignalStore{client: client, log: log}, nil
}

func (s *ClickHouseSignalStore) Store(ctx context.Context, sig *models.Signal) error {
	const q = `INSERT INTO signals (
		symbol, current_price, direction, raw_direction, confidence, exit_signal,
		reason, momentum_3min, momentum_5min, momentum_10min, volume_ratio, rsi,
		consecutive_signals, in_cooldown, cooldown_remaining, session_high,
		session_low, ts
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.client.DB().ExecContext(ctx, q,
		sig.Symbol, sig.CurrentPrice, string(sig.Direction), string(sig.RawDirection),
		sig.Confidence, boolToUInt8(sig.ExitSignal), sig.Reason,
		sig.Momentum3Min, sig.Momentum5Min, sig.Momentum10Min,
		sig.VolumeRatio, sig.RSI, int32(sig.ConsecutiveSignals),
		boolToUInt8(sig.InCooldown), int32(sig.CooldownRemaining),
		sig.SessionHigh, sig.SessionLow, sig.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// Recent returns the latest signals for symbol in [from, to], newest first,
// capped at limit.
func (s *ClickHouseSignalStore) Recent(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Signal, error) {
	const q = `SELECT
		symbol, current_price, direction, raw_direction, confidence, exit_signal,
		reason, momentum_3min, momentum_5min, momentum_10min, volume_ratio, rsi,
		consecutive_signals, in_cooldown, cooldown_remaining, session_high,
		session_low, ts
	FROM signals
	WHERE symbol = ? AND ts >= ? AND ts <= ?
	ORDER BY ts DESC
	LIMIT ?`

	rows, err := s.client.DB().QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []*models.Signal
	for rows.Next() {
		var (
			sig                   models.Signal
			direction, rawDir     string
			exitFlag, cooldownFlg uint8
			consecutive, remain   int32
		)
		if err := rows.Scan(
			&sig.Symbol, &sig.CurrentPrice, &direction, &rawDir, &sig.Confidence,
			&exitFlag, &sig.Reason, &sig.Momentum3Min, &sig.Momentum5Min,
			&sig.Momentum10Min, &sig.VolumeRatio, &sig.RSI, &consecutive,
			&cooldownFlg, &remain, &sig.SessionHigh, &sig.SessionLow, &sig.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Direction = models.Direction(direction)
		sig.RawDirection = models.Direction(rawDir)
		sig.ExitSignal = exitFlag != 0
		sig.InCooldown = cooldownFlg != 0
		sig.ConsecutiveSignals = int(consecutive)
		sig.CooldownRemaining = int(remain)
		out = append(out, &sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return out, nil
}

func (s *ClickHouseSignalStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *ClickHouseSignalStore) Close() error {
	return s.client.Close()
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
