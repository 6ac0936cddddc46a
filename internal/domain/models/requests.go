package models

// Request DTOs for the HTTP layer. Bound and validated with
// go-playground/validator; defaults applied with creasty/defaults.

// TickerRequest is the common query shape of the read endpoints.
type TickerRequest struct {
	Ticker string `query:"ticker" validate:"required,min=1,max=12"`
}

// OrderRequest places a paper order. Price zero means "execute at the
// live close price".
type OrderRequest struct {
	Ticker   string    `json:"ticker" validate:"required,min=1,max=12"`
	Side     OrderSide `json:"side" validate:"required,oneof=BUY SELL"`
	Quantity float64   `json:"quantity" validate:"required,gt=0"`
	Price    float64   `json:"price" validate:"gte=0"`
}
