package models

import "time"

// Transaction is a point-earning or refund event recorded by the backend.
type Transaction struct {
	ID         string    `json:"transaction_id"`
	MerchantID string    `json:"merchant_id"`
	CustomerID string    `json:"customer_id"`
	ProgramID  string    `json:"program_id"`
	Type       string    `json:"transaction_type"`
	Amount     float64   `json:"transaction_amount"`
	Date       time.Time `json:"transaction_date"`
	Status     string    `json:"status"`
}
