// Package matchmaking ranks published listings for a requesting user by a
// weighted combination of proximity, recency, owner affinity, owner
// verification, the user's own interaction history and price
// competitiveness.
package matchmaking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/materio/backend/internal/domain"
	"github.com/materio/backend/internal/pkg/geo"
)

// Score weights and decay windows. Each term is capped independently; the
// composite score is their sum.
const (
	weightProximity = 30.0
	weightRecency   = 20.0
	weightAffinity  = 15.0
	weightVerified  = 10.0
	weightHistory   = 15.0
	weightPrice     = 10.0

	defaultMaxDistanceKm = 100.0
	recencyWindow        = 30 * 24 * time.Hour
	historyWindow        = 7 * 24 * time.Hour
)

type Service interface {
	// Matches returns ranked candidates or a typed error.
	Matches(ctx context.Context, params domain.MatchParams) ([]domain.MatchResult, error)
	// FindMatches is the lenient variant: any internal failure degrades to
	// an empty result, logged for diagnostics only. Callers that need to
	// distinguish "no matches" from "failure" must use Matches instead.
	FindMatches(ctx context.Context, params domain.MatchParams) []domain.MatchResult
}

type listingStore interface {
	QueryCandidates(ctx context.Context, f domain.CandidateFilter) ([]domain.Listing, error)
}

type profileStore interface {
	BatchGet(ctx context.Context, profileIDs []string) ([]domain.Profile, error)
}

type bookmarkStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error)
}

type service struct {
	listings  listingStore
	profiles  profileStore
	bookmarks bookmarkStore
}

type ServiceDeps struct {
	ListingRepo  listingStore
	ProfileRepo  profileStore
	BookmarkRepo bookmarkStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		listings:  deps.ListingRepo,
		profiles:  deps.ProfileRepo,
		bookmarks: deps.BookmarkRepo,
	}
}

// Matches fetches candidates under the hard filters and scores them.
//
// The price-competitiveness term is relative to the mean price of this
// call's candidate set, so scores are meaningful within one call but not
// comparable across calls with different filters.
func (s *service) Matches(ctx context.Context, params domain.MatchParams) ([]domain.MatchResult, error) {
	now := time.Now().UTC()

	// Interaction history is a scoring input only: if it cannot be fetched
	// it defaults to empty rather than failing the whole call.
	history, err := s.bookmarks.ListByUser(ctx, params.UserID)
	if err != nil {
		slog.Warn("matchmaking: history unavailable, scoring without it",
			"user_id", params.UserID, "err", err)
		history = nil
	}
	interactions := make(map[string][]time.Time, len(history))
	for _, b := range history {
		interactions[b.ListingID] = append(interactions[b.ListingID], b.CreatedAt)
	}

	candidates, err := s.listings.QueryCandidates(ctx, domain.CandidateFilter{
		Status:        domain.ListingStatusPublished,
		ExcludeUserID: params.UserID,
		CategoryID:    params.CategoryID,
		PriceMin:      params.PriceMin,
		PriceMax:      params.PriceMax,
		QuantityMin:   params.QuantityMin,
		QuantityMax:   params.QuantityMax,
		CreatedAfter:  params.CreatedAfter,
		CreatedBefore: params.CreatedBefore,
	})
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []domain.MatchResult{}, nil
	}

	owners, err := s.ownerProfiles(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("fetch owner profiles: %w", err)
	}

	// Mean price over the full candidate set, computed once and shared by
	// every candidate's competitiveness term.
	var meanPrice float64
	for _, l := range candidates {
		meanPrice += l.Price
	}
	meanPrice /= float64(len(candidates))

	maxDistance := defaultMaxDistanceKm
	if params.MaxDistanceKm != nil {
		maxDistance = *params.MaxDistanceKm
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	for _, l := range candidates {
		r := domain.MatchResult{Listing: l}

		if params.Origin != nil && l.Latitude != nil && l.Longitude != nil {
			d := geo.DistanceKm(params.Origin.Latitude, params.Origin.Longitude, *l.Latitude, *l.Longitude)
			r.DistanceKm = &d
			r.Score += max0(1-d/maxDistance) * weightProximity
		}

		timeRelevance := max0(1 - float64(now.Sub(l.CreatedAt))/float64(recencyWindow))
		r.TimeRelevance = &timeRelevance
		r.Score += timeRelevance * weightRecency

		if owner, ok := owners[l.UserID]; ok {
			if params.BusinessType != nil && owner.UserType == *params.BusinessType {
				r.Score += weightAffinity
			}
			if owner.VerificationStatus == domain.VerificationApproved {
				r.Score += weightVerified
			}
		}

		var historyScore float64
		for _, at := range interactions[l.ListingID] {
			historyScore += max0(1 - float64(now.Sub(at))/float64(historyWindow))
		}
		r.Score += historyScore * weightHistory

		if meanPrice > 0 {
			r.Score += max0(1-l.Price/meanPrice) * weightPrice
		}

		results = append(results, r)
	}

	// Stable: equal scores keep the store's return order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

func (s *service) FindMatches(ctx context.Context, params domain.MatchParams) []domain.MatchResult {
	results, err := s.Matches(ctx, params)
	if err != nil {
		slog.Error("matchmaking failed, returning empty result", "user_id", params.UserID, "err", err)
		return []domain.MatchResult{}
	}
	return results
}

// ownerProfiles batch-fetches the distinct owner profiles of the
// candidates, keyed by profile id.
func (s *service) ownerProfiles(ctx context.Context, candidates []domain.Listing) (map[string]domain.Profile, error) {
	ids := make([]string, 0, len(candidates))
	for _, l := range candidates {
		ids = append(ids, l.UserID)
	}
	profiles, err := s.profiles.BatchGet(ctx, ids)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]domain.Profile, len(profiles))
	for _, p := range profiles {
		owners[p.ProfileID] = p
	}
	return owners, nil
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
