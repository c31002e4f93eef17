package models

// RawTick mirrors the wire shape of a streaming callback payload. Fields are
// pointers so partial frames can be detected instead of defaulting to zero.
type RawTick struct {
	Symbol   string   `json:"symbol"`
	Close    *float64 `json:"close"`
	Volume   *int64   `json:"volume"`
	Datetime *int64   `json:"datetime"` // unix ms
}
