// Package phoneverify implements one-time phone verification: issuing
// short-lived SMS codes and validating them against expiry and attempt
// limits before flagging the profile as phone-verified.
package phoneverify

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/materio/backend/internal/domain"
	"github.com/materio/backend/internal/pkg/id"
)

const (
	codeTTL     = 10 * time.Minute
	maxAttempts = 3
)

type Service interface {
	// RequestCode issues a fresh code for the phone number, superseding any
	// earlier one, and dispatches it over SMS. The code is never returned.
	RequestCode(ctx context.Context, phone string) error
	// VerifyCode validates a submitted code. Failure modes:
	// ErrNotFound (no active code), ErrTooManyAttempts, ErrInvalidCode.
	// Store and SMS errors pass through untouched.
	VerifyCode(ctx context.Context, phone, code string) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.PhoneVerification) error
	DeleteByPhone(ctx context.Context, phone string) error
	LatestActive(ctx context.Context, phone string, now time.Time) (*domain.PhoneVerification, error)
	IncrementAttempts(ctx context.Context, codeID string, limit int) error
	MarkVerified(ctx context.Context, codeID string) error
}

type profileStore interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Profile, error)
	Update(ctx context.Context, profileID string, updates map[string]interface{}) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	codes    verificationStore
	profiles profileStore
	sms      smsSender
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	ProfileRepo      profileStore
	SMSSender        smsSender
}

func NewService(deps ServiceDeps) Service {
	return &service{
		codes:    deps.VerificationRepo,
		profiles: deps.ProfileRepo,
		sms:      deps.SMSSender,
	}
}

func (s *service) RequestCode(ctx context.Context, phone string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	// Best-effort cleanup of superseded codes. Not transactional with the
	// insert below; the verify path tolerates leftovers by always taking
	// the latest active record.
	if err := s.codes.DeleteByPhone(ctx, phone); err != nil {
		slog.Warn("could not delete prior verification codes", "phone", phone, "err", err)
	}

	now := time.Now().UTC()
	v := &domain.PhoneVerification{
		CodeID:    id.New(),
		Phone:     phone,
		Code:      code,
		Attempts:  0,
		Verified:  false,
		CreatedAt: now,
		ExpiresAt: now.Add(codeTTL).Unix(),
	}
	if err := s.codes.Put(ctx, v); err != nil {
		return err
	}

	return s.sms.SendSMS(ctx, phone, "Your Materio verification code: "+code)
}

func (s *service) VerifyCode(ctx context.Context, phone, code string) error {
	v, err := s.codes.LatestActive(ctx, phone, time.Now().UTC())
	if err != nil {
		return err
	}

	if v.Attempts >= maxAttempts {
		return fmt.Errorf("verification locked: %w", domain.ErrTooManyAttempts)
	}
	// The attempt is consumed whether or not the code matches. The store
	// enforces the limit conditionally, so a concurrent verify racing this
	// one cannot push the counter past the cap.
	if err := s.codes.IncrementAttempts(ctx, v.CodeID, maxAttempts); err != nil {
		return err
	}

	if v.Code != code {
		return fmt.Errorf("code mismatch: %w", domain.ErrInvalidCode)
	}

	if err := s.codes.MarkVerified(ctx, v.CodeID); err != nil {
		return err
	}

	// The profile is resolved by phone but written by its primary key, so
	// if two profiles ever shared a phone value only the one the lookup
	// returns is flagged.
	prof, err := s.profiles.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Warn("verified phone has no profile", "phone", phone)
			return nil
		}
		return err
	}
	return s.profiles.Update(ctx, prof.ProfileID, map[string]interface{}{"phone_verified": true})
}

// generateCode returns a uniformly random 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}
