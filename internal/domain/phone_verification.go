package domain

import "time"

// PhoneVerification is a one-time phone verification code.
// PK: code_id (ULID). A phone+code_id GSI serves the latest-active lookup:
// ULIDs sort lexicographically by creation time, so a descending range
// query yields the most recent code first.
//
// At most one unexpired, unverified code should be active per phone.
// Prior codes are deleted before a new one is inserted; the delete and
// insert are separate statements, so concurrent requests can briefly leave
// more than one active record. The verify path always selects the single
// most recent one, which bounds that race.
type PhoneVerification struct {
	CodeID    string    `json:"id" dynamodbav:"code_id"`
	Phone     string    `json:"phone" dynamodbav:"phone"`
	Code      string    `json:"code" dynamodbav:"code"`
	Attempts  int       `json:"attempts" dynamodbav:"attempts"`
	Verified  bool      `json:"verified" dynamodbav:"verified"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // Unix seconds, doubles as DynamoDB TTL
}
