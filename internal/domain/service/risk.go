package service

import (
	"context"

	"TickPulse/internal/domain/models"
)

// RiskOracle scores a trade proposal before execution. Implementations may be
// LLM-backed or rule-based; this service treats the verdict as opaque.
type RiskOracle interface {
	Assess(ctx context.Context, p *models.TradeProposal) (models.RiskVerdict, error)
}
