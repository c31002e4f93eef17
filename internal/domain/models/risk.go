package models

import "time"

// TradeProposal is the payload sent to the risk-veto oracle before any order
// is acted on.
type TradeProposal struct {
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Price      float64   `json:"price"`
	Confidence float64   `json:"confidence"`
	Momentum   float64   `json:"momentum_3min"`
	RSI        float64   `json:"rsi"`
	Timestamp  time.Time `json:"timestamp"`
}

// RiskVerdict is the oracle's answer. Score is a calibrated 0-100 risk score;
// Veto true means the proposal must not be executed.
type RiskVerdict struct {
	Veto       bool               `json:"veto"`
	Reason     string             `json:"reason"`
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// OrderRequest is a brokerage order placement request.
type OrderRequest struct {
	Action   string  `json:"action"` // BUY or SELL
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderResult is the brokerage response to an order placement.
type OrderResult struct {
	Status  string `json:"status"` // filled or error
	OrderID string `json:"order_id"`
	Mode    string `json:"mode"` // live or paper
}
