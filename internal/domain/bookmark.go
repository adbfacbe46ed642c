package domain

import "time"

// Bookmark records a user's interaction with a listing. Append-only from
// the user's perspective; the matchmaker reads it as a recency-weighted
// signal and never deletes it.
// PK: user_id, SK: bookmark_id (ULID, so range order is creation order).
type Bookmark struct {
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	BookmarkID string    `json:"id" dynamodbav:"bookmark_id"`
	ListingID  string    `json:"listing_id" dynamodbav:"listing_id"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}
