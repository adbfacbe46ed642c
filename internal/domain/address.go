package domain

import "time"

// Address types.
const (
	AddressTypeShipping = "shipping"
	AddressTypeBilling  = "billing"
)

type Address struct {
	AddressID            string    `json:"id" dynamodbav:"address_id"`
	UserID               string    `json:"user_id" dynamodbav:"user_id"`
	AddressType          string    `json:"address_type" dynamodbav:"address_type"` // "shipping" | "billing"
	IsDefault            bool      `json:"is_default" dynamodbav:"is_default"`
	RecipientName        string    `json:"recipient_name" dynamodbav:"recipient_name"`
	StreetAddress        string    `json:"street_address" dynamodbav:"street_address"`
	Apartment            string    `json:"apartment,omitempty" dynamodbav:"apartment"`
	City                 string    `json:"city" dynamodbav:"city"`
	State                string    `json:"state" dynamodbav:"state"`
	PostalCode           string    `json:"postal_code" dynamodbav:"postal_code"`
	Country              string    `json:"country" dynamodbav:"country"`
	Phone                string    `json:"phone,omitempty" dynamodbav:"phone"`
	DeliveryInstructions string    `json:"delivery_instructions,omitempty" dynamodbav:"delivery_instructions"`
	CreatedAt            time.Time `json:"created_at" dynamodbav:"created_at"`
}

type CreateAddressRequest struct {
	AddressType          string `json:"address_type" validate:"required,oneof=shipping billing"`
	IsDefault            bool   `json:"is_default"`
	RecipientName        string `json:"recipient_name" validate:"required"`
	StreetAddress        string `json:"street_address" validate:"required"`
	Apartment            string `json:"apartment"`
	City                 string `json:"city" validate:"required"`
	State                string `json:"state" validate:"required"`
	PostalCode           string `json:"postal_code" validate:"required"`
	Country              string `json:"country" validate:"required"`
	Phone                string `json:"phone" validate:"omitempty,e164"`
	DeliveryInstructions string `json:"delivery_instructions"`
}
