package models

import (
	"strings"
	"time"
)

// MerchantType enumerates the merchant categories the backend accepts.
type MerchantType string

const (
	MerchantTypeBank       MerchantType = "bank"
	MerchantTypeEcommerce  MerchantType = "e-commerce"
	MerchantTypeRepairShop MerchantType = "repair_shop"
)

// MerchantTypes lists the selectable merchant types in display order.
var MerchantTypes = []MerchantType{MerchantTypeBank, MerchantTypeEcommerce, MerchantTypeRepairShop}

// Valid reports whether t is one of the backend's merchant types.
func (t MerchantType) Valid() bool {
	for _, known := range MerchantTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Merchant is a loyalty merchant owned by an operator.
type Merchant struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Name      string       `json:"merchant_name"`
	Type      MerchantType `json:"merchant_type"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Active reports whether the merchant status reads as active.
func (m Merchant) Active() bool {
	return strings.EqualFold(m.Status, "active")
}
