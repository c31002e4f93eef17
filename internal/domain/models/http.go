package models

// Requests for the signal API endpoints. Defined in domain for consistency
// and reuse across handlers.

type SignalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"50" validate:"gte=1,lte=1000"`
	From   string `query:"from" json:"from"` // RFC3339 or unix seconds, optional
	To     string `query:"to" json:"to"`
}

type BookRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type QuotesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"100" validate:"gte=1,lte=100"`
}
