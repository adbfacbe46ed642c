package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/materio/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) Put(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProfileStore) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	args := m.Called(ctx, profileID)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProfileStore) Update(ctx context.Context, profileID string, updates map[string]interface{}) error {
	return m.Called(ctx, profileID, updates).Error(0)
}

type mockAddressStore struct{ mock.Mock }

func (m *mockAddressStore) Put(ctx context.Context, a *domain.Address) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAddressStore) Get(ctx context.Context, addressID string) (*domain.Address, error) {
	args := m.Called(ctx, addressID)
	if a, _ := args.Get(0).(*domain.Address); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAddressStore) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	args := m.Called(ctx, userID)
	if as, _ := args.Get(0).([]domain.Address); as != nil {
		return as, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAddressStore) Update(ctx context.Context, addressID string, updates map[string]interface{}) error {
	return m.Called(ctx, addressID, updates).Error(0)
}
func (m *mockAddressStore) Delete(ctx context.Context, addressID string) error {
	return m.Called(ctx, addressID).Error(0)
}

type mockBookmarkStore struct{ mock.Mock }

func (m *mockBookmarkStore) Put(ctx context.Context, b *domain.Bookmark) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBookmarkStore) ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	args := m.Called(ctx, userID)
	if bs, _ := args.Get(0).([]domain.Bookmark); bs != nil {
		return bs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockBookmarkStore) Delete(ctx context.Context, userID, bookmarkID string) error {
	return m.Called(ctx, userID, bookmarkID).Error(0)
}

type mockListingStore struct{ mock.Mock }

func (m *mockListingStore) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	args := m.Called(ctx, listingID)
	if l, _ := args.Get(0).(*domain.Listing); l != nil {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func newService(ps *mockProfileStore, as *mockAddressStore, bs *mockBookmarkStore, ls *mockListingStore) Service {
	return NewService(ServiceDeps{ProfileRepo: ps, AddressRepo: as, BookmarkRepo: bs, ListingRepo: ls})
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
}

// --- profiles ---

func TestEnsure_ReturnsExistingProfile(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, "u1").Return(&domain.Profile{ProfileID: "u1", Email: "a@b.in"}, nil)

	p, err := newService(ps, nil, nil, nil).Ensure(context.Background(), "u1", "a@b.in")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ProfileID)
	ps.AssertNotCalled(t, "Put")
}

func TestEnsure_CreatesPendingProfileOnFirstSight(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, "u1").Return(nil, notFoundErr("profile"))

	var stored *domain.Profile
	ps.On("Put", mock.Anything, mock.AnythingOfType("*domain.Profile")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Profile)
	}).Return(nil)

	p, err := newService(ps, nil, nil, nil).Ensure(context.Background(), "u1", "a@b.in")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "u1", p.ProfileID)
	assert.Equal(t, "a@b.in", p.Email)
	assert.Equal(t, domain.VerificationPending, p.VerificationStatus)
	assert.False(t, p.PhoneVerified)
}

func TestEnsure_StoreErrorPassesThrough(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, "u1").Return(nil, errors.New("store unreachable"))

	_, err := newService(ps, nil, nil, nil).Ensure(context.Background(), "u1", "a@b.in")
	require.Error(t, err)
	ps.AssertNotCalled(t, "Put")
}

func TestUpdate_InvalidGSTNumberRejected(t *testing.T) {
	gst := "not-a-gstin"
	_, err := newService(&mockProfileStore{}, nil, nil, nil).Update(context.Background(), "u1",
		&domain.UpdateProfileRequest{GSTNumber: &gst})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdate_PhoneChangeResetsVerification(t *testing.T) {
	ps := &mockProfileStore{}
	old := "+911111111111"
	ps.On("Get", mock.Anything, "u1").Return(&domain.Profile{ProfileID: "u1", Phone: &old, PhoneVerified: true}, nil)

	phone := "+919999999999"
	ps.On("Update", mock.Anything, "u1", map[string]interface{}{
		"phone":          phone,
		"phone_verified": false,
	}).Return(nil)

	_, err := newService(ps, nil, nil, nil).Update(context.Background(), "u1",
		&domain.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	ps.AssertExpectations(t)
}

func TestUpdate_SamePhoneKeepsVerification(t *testing.T) {
	ps := &mockProfileStore{}
	phone := "+919999999999"
	ps.On("Get", mock.Anything, "u1").Return(&domain.Profile{ProfileID: "u1", Phone: &phone, PhoneVerified: true}, nil)

	p, err := newService(ps, nil, nil, nil).Update(context.Background(), "u1",
		&domain.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	assert.True(t, p.PhoneVerified)
	ps.AssertNotCalled(t, "Update")
}

func TestUpdate_GSTChangeReopensVerification(t *testing.T) {
	ps := &mockProfileStore{}
	ps.On("Get", mock.Anything, "u1").Return(&domain.Profile{
		ProfileID:          "u1",
		GSTNumber:          "27AAPFU0939F1ZV",
		VerificationStatus: domain.VerificationApproved,
	}, nil)

	gst := "29AAGCB7383J1Z4"
	ps.On("Update", mock.Anything, "u1", map[string]interface{}{
		"gst_number":          gst,
		"verification_status": domain.VerificationPending,
	}).Return(nil)

	_, err := newService(ps, nil, nil, nil).Update(context.Background(), "u1",
		&domain.UpdateProfileRequest{GSTNumber: &gst})
	require.NoError(t, err)
	ps.AssertExpectations(t)
}

// --- addresses ---

func shippingAddrReq(isDefault bool) *domain.CreateAddressRequest {
	return &domain.CreateAddressRequest{
		AddressType:   domain.AddressTypeShipping,
		IsDefault:     isDefault,
		RecipientName: "Ravi",
		StreetAddress: "12 MG Road",
		City:          "Pune",
		State:         "MH",
		PostalCode:    "411001",
		Country:       "IN",
	}
}

func TestCreateAddress_FirstOfTypeBecomesDefault(t *testing.T) {
	as := &mockAddressStore{}
	as.On("ListByUser", mock.Anything, "u1").Return([]domain.Address{}, nil)

	var stored *domain.Address
	as.On("Put", mock.Anything, mock.AnythingOfType("*domain.Address")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Address)
	}).Return(nil)

	a, err := newService(nil, as, nil, nil).CreateAddress(context.Background(), "u1", shippingAddrReq(false))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, a.IsDefault)
	as.AssertNotCalled(t, "Update")
}

func TestCreateAddress_NewDefaultDemotesOldOne(t *testing.T) {
	as := &mockAddressStore{}
	as.On("ListByUser", mock.Anything, "u1").Return([]domain.Address{
		{AddressID: "a1", UserID: "u1", AddressType: domain.AddressTypeShipping, IsDefault: true},
		{AddressID: "a2", UserID: "u1", AddressType: domain.AddressTypeBilling, IsDefault: true},
	}, nil)
	as.On("Update", mock.Anything, "a1", map[string]interface{}{"is_default": false}).Return(nil)
	as.On("Put", mock.Anything, mock.Anything).Return(nil)

	a, err := newService(nil, as, nil, nil).CreateAddress(context.Background(), "u1", shippingAddrReq(true))
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
	// The billing default is untouched.
	as.AssertNotCalled(t, "Update", mock.Anything, "a2", mock.Anything)
	as.AssertExpectations(t)
}

func TestCreateAddress_NonDefaultLeavesExistingDefault(t *testing.T) {
	as := &mockAddressStore{}
	as.On("ListByUser", mock.Anything, "u1").Return([]domain.Address{
		{AddressID: "a1", UserID: "u1", AddressType: domain.AddressTypeShipping, IsDefault: true},
	}, nil)
	as.On("Put", mock.Anything, mock.Anything).Return(nil)

	a, err := newService(nil, as, nil, nil).CreateAddress(context.Background(), "u1", shippingAddrReq(false))
	require.NoError(t, err)
	assert.False(t, a.IsDefault)
	as.AssertNotCalled(t, "Update")
}

func TestCreateAddress_ValidationFailure(t *testing.T) {
	req := shippingAddrReq(false)
	req.PostalCode = ""

	_, err := newService(nil, &mockAddressStore{}, nil, nil).CreateAddress(context.Background(), "u1", req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestDeleteAddress_OwnerOnly(t *testing.T) {
	as := &mockAddressStore{}
	as.On("Get", mock.Anything, "a1").Return(&domain.Address{AddressID: "a1", UserID: "u1"}, nil)

	err := newService(nil, as, nil, nil).DeleteAddress(context.Background(), "intruder", "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	as.AssertNotCalled(t, "Delete")
}

// --- bookmarks ---

func TestAddBookmark_RequiresExistingListing(t *testing.T) {
	ls := &mockListingStore{}
	bs := &mockBookmarkStore{}
	ls.On("Get", mock.Anything, "ghost").Return(nil, notFoundErr("listing"))

	_, err := newService(nil, nil, bs, ls).AddBookmark(context.Background(), "u1", "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	bs.AssertNotCalled(t, "Put")
}

func TestAddBookmark_RecordsInteraction(t *testing.T) {
	ls := &mockListingStore{}
	bs := &mockBookmarkStore{}
	ls.On("Get", mock.Anything, "l1").Return(&domain.Listing{ListingID: "l1"}, nil)

	var stored *domain.Bookmark
	bs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Bookmark")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Bookmark)
	}).Return(nil)

	b, err := newService(nil, nil, bs, ls).AddBookmark(context.Background(), "u1", "l1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "u1", b.UserID)
	assert.Equal(t, "l1", b.ListingID)
	assert.NotEmpty(t, b.BookmarkID)
}

func TestAddBookmark_DuplicatesAllowed(t *testing.T) {
	ls := &mockListingStore{}
	bs := &mockBookmarkStore{}
	ls.On("Get", mock.Anything, "l1").Return(&domain.Listing{ListingID: "l1"}, nil)
	bs.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newService(nil, nil, bs, ls)
	b1, err := svc.AddBookmark(context.Background(), "u1", "l1")
	require.NoError(t, err)
	b2, err := svc.AddBookmark(context.Background(), "u1", "l1")
	require.NoError(t, err)
	assert.NotEqual(t, b1.BookmarkID, b2.BookmarkID)
}
