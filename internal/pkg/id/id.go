// Package id generates identifiers for profiles, listings, uploaded files
// and verification code records.
package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. The timestamp prefix makes identifiers sort
// in creation order, which the verification code index relies on to find
// the most recent code for a phone number.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID anchored at t. Useful in tests that need records
// with a known relative order.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
