package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

type stubCourierUsecase struct {
	getFn func(ctx context.Context, id int64) (*domain.Courier, error)
}

func (s *stubCourierUsecase) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	if s.getFn == nil {
		panic("unexpected Get")
	}
	return s.getFn(ctx, id)
}

func TestCourierHandler_Get(t *testing.T) {
	t.Parallel()

	uc := &stubCourierUsecase{getFn: func(_ context.Context, id int64) (*domain.Courier, error) {
		require.Equal(t, int64(2), id)
		return &domain.Courier{
			ID:            2,
			Name:          "Dina",
			Phone:         "+70000000002",
			Status:        domain.CourierBusy,
			TransportType: domain.TransportTypeScooter,
			Version:       3,
		}, nil
	}}

	rr := httptest.NewRecorder()
	NewCourierHandler(nil, uc).Get(rr, withID(httptest.NewRequest(http.MethodGet, "/couriers/2", nil), "2"))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"success":true,"data":{"id":2,"name":"Dina","phone":"+70000000002",
		"status":"busy","transport_type":"scooter","version":3}}`, rr.Body.String())
}

func TestCourierHandler_Get_Errors(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewCourierHandler(nil, &stubCourierUsecase{}).Get(rr, withID(httptest.NewRequest(http.MethodGet, "/couriers/x", nil), "x"))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	uc := &stubCourierUsecase{getFn: func(context.Context, int64) (*domain.Courier, error) {
		return nil, apperr.ErrNotFound
	}}
	rr = httptest.NewRecorder()
	NewCourierHandler(nil, uc).Get(rr, withID(httptest.NewRequest(http.MethodGet, "/couriers/9", nil), "9"))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), `"error":"NotFound"`)
}
