package dto

import "github.com/hongminglow/loyalty-console/internal/models"

// CreateMerchantRequest adds a merchant for the signed-in operator.
type CreateMerchantRequest struct {
	UserID string              `json:"user_id"`
	Name   string              `json:"merchant_name"`
	Type   models.MerchantType `json:"merchant_type"`
}

// UpdateMerchantRequest renames or retypes an existing merchant.
type UpdateMerchantRequest struct {
	Name string              `json:"merchant_name"`
	Type models.MerchantType `json:"merchant_type"`
}
