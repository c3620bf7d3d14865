package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkoutsvc "github.com/angelmondragon/orgshop-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
)

type fakeCheckoutService struct {
	session *checkoutsvc.SessionDTO
	err     error
	got     checkoutsvc.CreateSessionInput
	calls   int
}

func (f *fakeCheckoutService) CreateSession(ctx context.Context, input checkoutsvc.CreateSessionInput) (*checkoutsvc.SessionDTO, error) {
	f.calls++
	f.got = input
	return f.session, f.err
}

func TestCheckoutCreate(t *testing.T) {
	svc := &fakeCheckoutService{
		session: &checkoutsvc.SessionDTO{ID: "cs_123", URL: "https://checkout.stripe.com/pay/cs_123"},
	}
	payload := `{
		"email": "buyer@utulsa.edu",
		"items": [
			{"id": "p1-v1", "name": "Org Hoodie", "price": 5500, "quantity": 2, "stripe_price_id": "price_1"},
			{"id": "p2", "name": "Sticker Pack", "price": 500, "quantity": 1, "stripe_price_id": "price_2"}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	CheckoutCreate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "buyer@utulsa.edu", svc.got.Email)
	require.Len(t, svc.got.Items, 2)
	assert.Equal(t, "price_1", svc.got.Items[0].StripePriceID)
	assert.Equal(t, 2, svc.got.Items[0].Quantity)

	var body struct {
		Data checkoutsvc.SessionDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cs_123", body.Data.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", body.Data.URL)
}

func TestCheckoutCreate_RejectsBadPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "missing email", payload: `{"items":[{"id":"p1","quantity":1,"stripe_price_id":"price_1"}]}`},
		{name: "bad email", payload: `{"email":"nope","items":[{"id":"p1","quantity":1,"stripe_price_id":"price_1"}]}`},
		{name: "empty items", payload: `{"email":"buyer@utulsa.edu","items":[]}`},
		{name: "missing price ref", payload: `{"email":"buyer@utulsa.edu","items":[{"id":"p1","quantity":1}]}`},
		{name: "zero quantity", payload: `{"email":"buyer@utulsa.edu","items":[{"id":"p1","quantity":0,"stripe_price_id":"price_1"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeCheckoutService{}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(tc.payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			CheckoutCreate(svc, nil).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Zero(t, svc.calls)
		})
	}
}

func TestCheckoutCreate_ServiceError(t *testing.T) {
	svc := &fakeCheckoutService{err: pkgerrors.New(pkgerrors.CodeDependency, "stripe unavailable")}
	payload := `{"email":"buyer@utulsa.edu","items":[{"id":"p1","quantity":1,"stripe_price_id":"price_1"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	CheckoutCreate(svc, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
}
