package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/materio/backend/internal/domain"
	jwtinfra "github.com/materio/backend/internal/infrastructure/jwt"
	"github.com/materio/backend/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMatchSvc struct{ mock.Mock }

func (m *mockMatchSvc) Matches(ctx context.Context, params domain.MatchParams) ([]domain.MatchResult, error) {
	args := m.Called(ctx, params)
	if rs, _ := args.Get(0).([]domain.MatchResult); rs != nil {
		return rs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchSvc) FindMatches(ctx context.Context, params domain.MatchParams) []domain.MatchResult {
	args := m.Called(ctx, params)
	rs, _ := args.Get(0).([]domain.MatchResult)
	return rs
}

// authedReq returns a request whose context carries claims for userID, the
// way the auth middleware would have populated it.
func authedReq(method, target, userID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	claims := &jwtinfra.Claims{
		UserID:           userID,
		Email:            userID + "@materio.in",
		RegisteredClaims: jwt.RegisteredClaims{},
	}
	ctx := context.WithValue(req.Context(), middleware.ClaimsKey, claims)
	return req.WithContext(ctx)
}

func TestMatches_Unauthenticated(t *testing.T) {
	h := NewMatchHandler(&mockMatchSvc{})

	req := httptest.NewRequest(http.MethodPost, "/v1/matches", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()
	h.Find(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMatches_UserIDComesFromToken(t *testing.T) {
	svc := &mockMatchSvc{}
	svc.On("FindMatches", mock.Anything, mock.MatchedBy(func(p domain.MatchParams) bool {
		return p.UserID == "u1"
	})).Return([]domain.MatchResult{})
	h := NewMatchHandler(svc)

	// A spoofed user_id in the body is overwritten by the claims.
	rr := httptest.NewRecorder()
	h.Find(rr, authedReq(http.MethodPost, "/v1/matches", "u1", []byte(`{"user_id":"victim"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestMatches_LenientModeReturnsEmptyOnFailure(t *testing.T) {
	svc := &mockMatchSvc{}
	svc.On("FindMatches", mock.Anything, mock.Anything).Return([]domain.MatchResult{})
	h := NewMatchHandler(svc)

	rr := httptest.NewRecorder()
	h.Find(rr, authedReq(http.MethodPost, "/v1/matches", "u1", []byte(`{}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var env DataEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Empty(t, env.Data)
	svc.AssertNotCalled(t, "Matches")
}

func TestMatches_StrictModeSurfacesFailure(t *testing.T) {
	svc := &mockMatchSvc{}
	svc.On("Matches", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))
	h := NewMatchHandler(svc)

	rr := httptest.NewRecorder()
	h.Find(rr, authedReq(http.MethodPost, "/v1/matches?strict=true", "u1", []byte(`{}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	svc.AssertNotCalled(t, "FindMatches")
}

func TestMatches_StrictModeReturnsResults(t *testing.T) {
	svc := &mockMatchSvc{}
	svc.On("Matches", mock.Anything, mock.Anything).Return([]domain.MatchResult{
		{Listing: domain.Listing{ListingID: "l1"}, Score: 42.5},
	}, nil)
	h := NewMatchHandler(svc)

	rr := httptest.NewRecorder()
	h.Find(rr, authedReq(http.MethodPost, "/v1/matches?strict=true", "u1", []byte(`{}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"l1"`)
}

func TestMatches_InvalidFilterRejected(t *testing.T) {
	svc := &mockMatchSvc{}
	h := NewMatchHandler(svc)

	rr := httptest.NewRecorder()
	h.Find(rr, authedReq(http.MethodPost, "/v1/matches", "u1", []byte(`{"max_distance_km":-5}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "FindMatches")
}
