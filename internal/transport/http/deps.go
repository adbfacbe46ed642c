package http

import (
	"github.com/materio/backend/internal/infrastructure/dynamo"
	jwtinfra "github.com/materio/backend/internal/infrastructure/jwt"
	s3infra "github.com/materio/backend/internal/infrastructure/s3"
	"github.com/materio/backend/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ProfileRepo      *dynamo.ProfileRepo
	ListingRepo      *dynamo.ListingRepo
	BookmarkRepo     *dynamo.BookmarkRepo
	AddressRepo      *dynamo.AddressRepo
	CategoryRepo     *dynamo.CategoryRepo
	VerificationRepo *dynamo.PhoneVerificationRepo
	S3Store          *s3infra.Store
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
}
