// Package listing manages the material listing lifecycle: draft creation,
// edits, publish/archive transitions and image uploads. All mutations are
// owner-only.
package listing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/materio/backend/internal/domain"
	"github.com/materio/backend/internal/pkg/id"
	"github.com/materio/backend/internal/pkg/validate"
)

const (
	maxUploadSize = 5 << 20 // 5 MiB
	fileURLTTL    = 15 * time.Minute
)

type Service interface {
	Create(ctx context.Context, userID string, req *domain.CreateListingRequest) (*domain.Listing, error)
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Listing, error)

	// Search returns published listings matching the filter. The status
	// field of the filter is ignored; only published listings are public.
	Search(ctx context.Context, f domain.CandidateFilter) ([]domain.Listing, error)
	Update(ctx context.Context, userID, listingID string, req *domain.UpdateListingRequest) (*domain.Listing, error)
	Delete(ctx context.Context, userID, listingID string) error

	// Publish and Archive move a listing through its lifecycle. Publishing
	// requires draft or archived status; archiving requires published.
	Publish(ctx context.Context, userID, listingID string) (*domain.Listing, error)
	Archive(ctx context.Context, userID, listingID string) (*domain.Listing, error)

	// UploadImage stores an image for the listing, records its object key
	// and returns a presigned URL for immediate display. Only jpeg, png and
	// webp up to 5 MiB are accepted.
	UploadImage(ctx context.Context, userID, listingID string, r io.Reader, size int64, contentType string) (string, error)

	// UploadCertification stores a certification document (pdf or image)
	// for the listing and records its object key.
	UploadCertification(ctx context.Context, userID, listingID string, r io.Reader, size int64, contentType string) (string, error)

	// FileURL resolves an object key recorded on the listing to a
	// time-limited presigned GET URL.
	FileURL(ctx context.Context, listingID, key string) (string, error)

	// DeleteFile removes an uploaded image or certification from the
	// listing and from storage. Owner-only.
	DeleteFile(ctx context.Context, userID, listingID, key string) error
}

type listingStore interface {
	Put(ctx context.Context, l *domain.Listing) error
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	Update(ctx context.Context, listingID string, updates map[string]interface{}) error
	Delete(ctx context.Context, listingID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Listing, error)
	QueryCandidates(ctx context.Context, f domain.CandidateFilter) ([]domain.Listing, error)
}

type profileStore interface {
	Get(ctx context.Context, profileID string) (*domain.Profile, error)
}

type fileStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	listings listingStore
	profiles profileStore
	files    fileStore
}

type ServiceDeps struct {
	ListingRepo listingStore
	ProfileRepo profileStore
	FileStore   fileStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		listings: deps.ListingRepo,
		profiles: deps.ProfileRepo,
		files:    deps.FileStore,
	}
}

func (s *service) Create(ctx context.Context, userID string, req *domain.CreateListingRequest) (*domain.Listing, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be set together", domain.ErrBadRequest)
	}

	// The owner's business name is denormalized onto the listing so match
	// results render without a profile join.
	businessName := ""
	if p, err := s.profiles.Get(ctx, userID); err == nil {
		businessName = p.BusinessName
	} else {
		return nil, fmt.Errorf("resolve listing owner: %w", err)
	}

	now := time.Now().UTC()
	l := &domain.Listing{
		ListingID:     id.New(),
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		Condition:     req.Condition,
		Price:         req.Price,
		PriceUnit:     req.PriceUnit,
		Location:      req.Location,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		BusinessName:  businessName,
		Status:        domain.ListingStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.listings.Put(ctx, l); err != nil {
		return nil, fmt.Errorf("store listing: %w", err)
	}
	return l, nil
}

func (s *service) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	return s.listings.Get(ctx, listingID)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Listing, error) {
	return s.listings.ListByUser(ctx, userID)
}

func (s *service) Search(ctx context.Context, f domain.CandidateFilter) ([]domain.Listing, error) {
	f.Status = domain.ListingStatusPublished
	return s.listings.QueryCandidates(ctx, f)
}

func (s *service) Update(ctx context.Context, userID, listingID string, req *domain.UpdateListingRequest) (*domain.Listing, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}

	if _, err := s.owned(ctx, userID, listingID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.SubcategoryID != nil {
		updates["subcategory_id"] = *req.SubcategoryID
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.Condition != nil {
		updates["condition"] = *req.Condition
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.PriceUnit != nil {
		updates["price_unit"] = *req.PriceUnit
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if len(updates) == 0 {
		return s.listings.Get(ctx, listingID)
	}

	if err := s.listings.Update(ctx, listingID, updates); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return s.listings.Get(ctx, listingID)
}

func (s *service) Delete(ctx context.Context, userID, listingID string) error {
	if _, err := s.owned(ctx, userID, listingID); err != nil {
		return err
	}
	return s.listings.Delete(ctx, listingID)
}

func (s *service) Publish(ctx context.Context, userID, listingID string) (*domain.Listing, error) {
	return s.transition(ctx, userID, listingID, domain.ListingStatusPublished,
		domain.ListingStatusDraft, domain.ListingStatusArchived)
}

func (s *service) Archive(ctx context.Context, userID, listingID string) (*domain.Listing, error) {
	return s.transition(ctx, userID, listingID, domain.ListingStatusArchived,
		domain.ListingStatusPublished)
}

func (s *service) transition(ctx context.Context, userID, listingID, target string, allowedFrom ...string) (*domain.Listing, error) {
	l, err := s.owned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	ok := false
	for _, from := range allowedFrom {
		if l.Status == from {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: cannot move listing from %s to %s", domain.ErrConflict, l.Status, target)
	}

	if err := s.listings.Update(ctx, listingID, map[string]interface{}{"status": target}); err != nil {
		return nil, fmt.Errorf("update listing status: %w", err)
	}
	l.Status = target
	return l, nil
}

func (s *service) UploadImage(ctx context.Context, userID, listingID string, r io.Reader, size int64, contentType string) (string, error) {
	return s.uploadFile(ctx, userID, listingID, r, size, contentType, false)
}

func (s *service) UploadCertification(ctx context.Context, userID, listingID string, r io.Reader, size int64, contentType string) (string, error) {
	return s.uploadFile(ctx, userID, listingID, r, size, contentType, true)
}

func (s *service) uploadFile(ctx context.Context, userID, listingID string, r io.Reader, size int64, contentType string, certification bool) (string, error) {
	l, err := s.owned(ctx, userID, listingID)
	if err != nil {
		return "", err
	}
	if size > maxUploadSize {
		return "", fmt.Errorf("%w: file exceeds 5 MiB", domain.ErrBadRequest)
	}
	ext := extensionFor(contentType, certification)
	if ext == "" {
		return "", fmt.Errorf("%w: unsupported file type %q", domain.ErrBadRequest, contentType)
	}

	prefix, attr, keys := "images", "image_urls", l.ImageURLs
	if certification {
		prefix, attr, keys = "certifications", "certification_urls", l.CertificationURLs
	}

	key := fmt.Sprintf("listings/%s/%s/%s%s", listingID, prefix, id.New(), ext)
	stored, err := s.files.Upload(ctx, key, io.LimitReader(r, maxUploadSize), contentType)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	if err := s.listings.Update(ctx, listingID, map[string]interface{}{attr: append(keys, stored)}); err != nil {
		return "", fmt.Errorf("record file key: %w", err)
	}
	return s.files.PresignedURL(ctx, stored, fileURLTTL)
}

func (s *service) FileURL(ctx context.Context, listingID, key string) (string, error) {
	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return "", err
	}
	if !containsKey(l.ImageURLs, key) && !containsKey(l.CertificationURLs, key) {
		return "", fmt.Errorf("%w: file not found on listing", domain.ErrNotFound)
	}
	return s.files.PresignedURL(ctx, key, fileURLTTL)
}

func (s *service) DeleteFile(ctx context.Context, userID, listingID, key string) error {
	l, err := s.owned(ctx, userID, listingID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if rest, found := removeKey(l.ImageURLs, key); found {
		updates["image_urls"] = rest
	} else if rest, found := removeKey(l.CertificationURLs, key); found {
		updates["certification_urls"] = rest
	} else {
		return fmt.Errorf("%w: file not found on listing", domain.ErrNotFound)
	}

	if err := s.listings.Update(ctx, listingID, updates); err != nil {
		return fmt.Errorf("remove file key: %w", err)
	}
	if err := s.files.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func removeKey(keys []string, key string) ([]string, bool) {
	rest := make([]string, 0, len(keys))
	found := false
	for _, k := range keys {
		if k == key {
			found = true
			continue
		}
		rest = append(rest, k)
	}
	return rest, found
}

// owned loads the listing and verifies the caller is its owner.
func (s *service) owned(ctx context.Context, userID, listingID string) (*domain.Listing, error) {
	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, fmt.Errorf("%w: listing belongs to another user", domain.ErrForbidden)
	}
	return l, nil
}

func extensionFor(contentType string, allowPDF bool) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		if allowPDF {
			return ".pdf"
		}
		return ""
	default:
		return ""
	}
}
