package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/materio/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPhoneSvc struct{ mock.Mock }

func (m *mockPhoneSvc) RequestCode(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}

func (m *mockPhoneSvc) VerifyCode(ctx context.Context, phone, code string) error {
	return m.Called(ctx, phone, code).Error(0)
}

func postJSON(target string, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRequestCode_OK(t *testing.T) {
	svc := &mockPhoneSvc{}
	svc.On("RequestCode", mock.Anything, "+911234567890").Return(nil)
	h := NewPhoneVerificationHandler(svc)

	rr := httptest.NewRecorder()
	h.RequestCode(rr, postJSON("/v1/phone-verification/request", `{"phone":"+911234567890"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestRequestCode_BadPhone(t *testing.T) {
	svc := &mockPhoneSvc{}
	h := NewPhoneVerificationHandler(svc)

	rr := httptest.NewRecorder()
	h.RequestCode(rr, postJSON("/v1/phone-verification/request", `{"phone":"12345"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "RequestCode")
}

func TestRequestCode_MalformedBody(t *testing.T) {
	h := NewPhoneVerificationHandler(&mockPhoneSvc{})

	rr := httptest.NewRecorder()
	h.RequestCode(rr, postJSON("/v1/phone-verification/request", `{not json`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyCode_OK(t *testing.T) {
	svc := &mockPhoneSvc{}
	svc.On("VerifyCode", mock.Anything, "+911234567890", "482193").Return(nil)
	h := NewPhoneVerificationHandler(svc)

	rr := httptest.NewRecorder()
	h.VerifyCode(rr, postJSON("/v1/phone-verification/verify", `{"phone":"+911234567890","code":"482193"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestVerifyCode_WrongCode_Maps400(t *testing.T) {
	svc := &mockPhoneSvc{}
	svc.On("VerifyCode", mock.Anything, "+911234567890", "000000").
		Return(fmt.Errorf("code mismatch: %w", domain.ErrInvalidCode))
	h := NewPhoneVerificationHandler(svc)

	rr := httptest.NewRecorder()
	h.VerifyCode(rr, postJSON("/v1/phone-verification/verify", `{"phone":"+911234567890","code":"000000"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyCode_TooManyAttempts_Maps429(t *testing.T) {
	svc := &mockPhoneSvc{}
	svc.On("VerifyCode", mock.Anything, "+911234567890", "482193").
		Return(fmt.Errorf("attempt limit reached: %w", domain.ErrTooManyAttempts))
	h := NewPhoneVerificationHandler(svc)

	rr := httptest.NewRecorder()
	h.VerifyCode(rr, postJSON("/v1/phone-verification/verify", `{"phone":"+911234567890","code":"482193"}`))

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestVerifyCode_NoActiveCode_Maps404(t *testing.T) {
	svc := &mockPhoneSvc{}
	svc.On("VerifyCode", mock.Anything, "+911234567890", "482193").
		Return(fmt.Errorf("no active verification code: %w", domain.ErrNotFound))
	h := NewPhoneVerificationHandler(svc)

	rr := httptest.NewRecorder()
	h.VerifyCode(rr, postJSON("/v1/phone-verification/verify", `{"phone":"+911234567890","code":"482193"}`))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestVerifyCode_StoreFailure_Maps500WithoutDetail(t *testing.T) {
	svc := &mockPhoneSvc{}
	svc.On("VerifyCode", mock.Anything, "+911234567890", "482193").
		Return(errors.New("dynamodb: connection reset"))
	h := NewPhoneVerificationHandler(svc)

	rr := httptest.NewRecorder()
	h.VerifyCode(rr, postJSON("/v1/phone-verification/verify", `{"phone":"+911234567890","code":"482193"}`))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "dynamodb")
}

func TestVerifyCode_NonNumericCodeRejected(t *testing.T) {
	svc := &mockPhoneSvc{}
	h := NewPhoneVerificationHandler(svc)

	rr := httptest.NewRecorder()
	h.VerifyCode(rr, postJSON("/v1/phone-verification/verify", `{"phone":"+911234567890","code":"abc123"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "VerifyCode")
}
