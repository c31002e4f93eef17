package models

import "time"

// Quote is a serializable streaming quote kept in the bounded quote buffer.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// BookLevel is one side level of the order book.
type BookLevel struct {
	Price float64 `json:"price"`
	Size  int64   `json:"size"`
}

// OrderBook is a top-of-book depth snapshot. Updates replace the whole
// snapshot; levels are never merged incrementally.
type OrderBook struct {
	Symbol    string      `json:"symbol"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Timestamp time.Time   `json:"timestamp"`
}
