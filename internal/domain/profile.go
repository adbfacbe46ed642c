package domain

import "time"

// Business account types.
const (
	UserTypeBusiness  = "business"
	UserTypeFinancial = "financial"
)

// Business verification statuses.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Profile is the marketplace-side account record. Identity (passwords,
// sessions) lives with the external identity provider; the profile only
// carries business data and the phone-verified flag owned by this service.
type Profile struct {
	ProfileID          string    `json:"id" dynamodbav:"profile_id"`
	Email              string    `json:"email" dynamodbav:"email"`
	Phone              *string   `json:"phone" dynamodbav:"phone,omitempty"`
	PhoneVerified      bool      `json:"phone_verified" dynamodbav:"phone_verified"`
	BusinessName       string    `json:"business_name" dynamodbav:"business_name"`
	UserType           string    `json:"user_type" dynamodbav:"user_type"` // "business" | "financial"
	GSTNumber          string    `json:"gst_number,omitempty" dynamodbav:"gst_number"`
	VerificationStatus string    `json:"verification_status" dynamodbav:"verification_status"` // "pending" | "approved" | "rejected"
	Language           string    `json:"language" dynamodbav:"language"`
	Timezone           string    `json:"timezone" dynamodbav:"timezone"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateProfileRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Phone        *string `json:"phone" validate:"omitempty,e164"`
	BusinessName string  `json:"business_name" validate:"required"`
	UserType     string  `json:"user_type" validate:"required,oneof=business financial"`
	GSTNumber    string  `json:"gst_number" validate:"omitempty,gstin"`
}

type UpdateProfileRequest struct {
	Phone        *string `json:"phone" validate:"omitempty,e164"`
	BusinessName *string `json:"business_name"`
	UserType     *string `json:"user_type" validate:"omitempty,oneof=business financial"`
	GSTNumber    *string `json:"gst_number" validate:"omitempty,gstin"`
	Language     *string `json:"language"`
	Timezone     *string `json:"timezone"`
}
