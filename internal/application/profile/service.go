// Package profile manages marketplace accounts: business profile data,
// the address book and listing bookmarks. Identity itself lives with the
// external provider; this service owns everything downstream of the token.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/materio/backend/internal/domain"
	"github.com/materio/backend/internal/pkg/id"
	"github.com/materio/backend/internal/pkg/validate"
)

type Service interface {
	// Ensure returns the caller's profile, creating a pending one on first
	// sight of a new token subject.
	Ensure(ctx context.Context, userID, email string) (*domain.Profile, error)
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.Profile, error)

	CreateAddress(ctx context.Context, userID string, req *domain.CreateAddressRequest) (*domain.Address, error)
	ListAddresses(ctx context.Context, userID string) ([]domain.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) error

	AddBookmark(ctx context.Context, userID, listingID string) (*domain.Bookmark, error)
	ListBookmarks(ctx context.Context, userID string) ([]domain.Bookmark, error)
	RemoveBookmark(ctx context.Context, userID, bookmarkID string) error
}

type profileStore interface {
	Put(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, profileID string) (*domain.Profile, error)
	Update(ctx context.Context, profileID string, updates map[string]interface{}) error
}

type addressStore interface {
	Put(ctx context.Context, a *domain.Address) error
	Get(ctx context.Context, addressID string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Update(ctx context.Context, addressID string, updates map[string]interface{}) error
	Delete(ctx context.Context, addressID string) error
}

type bookmarkStore interface {
	Put(ctx context.Context, b *domain.Bookmark) error
	ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error)
	Delete(ctx context.Context, userID, bookmarkID string) error
}

type listingStore interface {
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
}

type service struct {
	profiles  profileStore
	addresses addressStore
	bookmarks bookmarkStore
	listings  listingStore
}

type ServiceDeps struct {
	ProfileRepo  profileStore
	AddressRepo  addressStore
	BookmarkRepo bookmarkStore
	ListingRepo  listingStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		profiles:  deps.ProfileRepo,
		addresses: deps.AddressRepo,
		bookmarks: deps.BookmarkRepo,
		listings:  deps.ListingRepo,
	}
}

func (s *service) Ensure(ctx context.Context, userID, email string) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	p = &domain.Profile{
		ProfileID:          userID,
		Email:              email,
		UserType:           domain.UserTypeBusiness,
		VerificationStatus: domain.VerificationPending,
		Language:           "en",
		Timezone:           "Asia/Kolkata",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.profiles.Put(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	current, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Phone != nil {
		// A new phone number must be re-verified before it counts.
		if current.Phone == nil || *current.Phone != *req.Phone {
			updates["phone"] = *req.Phone
			updates["phone_verified"] = false
		}
	}
	if req.BusinessName != nil {
		updates["business_name"] = *req.BusinessName
	}
	if req.UserType != nil {
		updates["user_type"] = *req.UserType
	}
	if req.GSTNumber != nil {
		// Changing the GST number reopens business verification.
		if current.GSTNumber != *req.GSTNumber {
			updates["gst_number"] = *req.GSTNumber
			updates["verification_status"] = domain.VerificationPending
		}
	}
	if req.Language != nil {
		updates["language"] = *req.Language
	}
	if req.Timezone != nil {
		updates["timezone"] = *req.Timezone
	}
	if len(updates) == 0 {
		return current, nil
	}

	if err := s.profiles.Update(ctx, userID, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.profiles.Get(ctx, userID)
}

func (s *service) CreateAddress(ctx context.Context, userID string, req *domain.CreateAddressRequest) (*domain.Address, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	existing, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}

	// First address of its type becomes the default regardless of the
	// requested flag; otherwise an explicit default demotes the old one.
	isDefault := req.IsDefault
	hasType := false
	for _, a := range existing {
		if a.AddressType == req.AddressType {
			hasType = true
			break
		}
	}
	if !hasType {
		isDefault = true
	}
	if isDefault {
		for _, a := range existing {
			if a.AddressType == req.AddressType && a.IsDefault {
				if err := s.addresses.Update(ctx, a.AddressID, map[string]interface{}{"is_default": false}); err != nil {
					return nil, fmt.Errorf("demote default address: %w", err)
				}
			}
		}
	}

	a := &domain.Address{
		AddressID:            id.New(),
		UserID:               userID,
		AddressType:          req.AddressType,
		IsDefault:            isDefault,
		RecipientName:        req.RecipientName,
		StreetAddress:        req.StreetAddress,
		Apartment:            req.Apartment,
		City:                 req.City,
		State:                req.State,
		PostalCode:           req.PostalCode,
		Country:              req.Country,
		Phone:                req.Phone,
		DeliveryInstructions: req.DeliveryInstructions,
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.addresses.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("store address: %w", err)
	}
	return a, nil
}

func (s *service) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	a, err := s.addresses.Get(ctx, addressID)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return fmt.Errorf("%w: address belongs to another user", domain.ErrForbidden)
	}
	return s.addresses.Delete(ctx, addressID)
}

func (s *service) AddBookmark(ctx context.Context, userID, listingID string) (*domain.Bookmark, error) {
	if _, err := s.listings.Get(ctx, listingID); err != nil {
		return nil, err
	}

	// Duplicate bookmarks are intentional: each one is a distinct
	// interaction event the matchmaker weighs by recency.
	b := &domain.Bookmark{
		UserID:     userID,
		BookmarkID: id.New(),
		ListingID:  listingID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.bookmarks.Put(ctx, b); err != nil {
		return nil, fmt.Errorf("store bookmark: %w", err)
	}
	return b, nil
}

func (s *service) ListBookmarks(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	return s.bookmarks.ListByUser(ctx, userID)
}

func (s *service) RemoveBookmark(ctx context.Context, userID, bookmarkID string) error {
	return s.bookmarks.Delete(ctx, userID, bookmarkID)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
