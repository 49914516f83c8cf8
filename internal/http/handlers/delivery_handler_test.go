package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-service/internal/apperr"
	"parcel-service/internal/domain"
)

type stubDeliveryUsecase struct {
	createFn     func(ctx context.Context, in domain.PricingInputs) (*domain.Delivery, error)
	getFn        func(ctx context.Context, id int64) (*domain.Delivery, error)
	transitionFn func(ctx context.Context, id int64, target domain.DeliveryStatus, note domain.TransitionNote) (*domain.Delivery, error)
	assignFn     func(ctx context.Context, deliveryID, courierID int64) (domain.AssignResult, error)
	eventsFn     func(ctx context.Context, id int64) ([]domain.TrackingEvent, error)
	verifyFn     func(ctx context.Context, id int64) (domain.QuoteCheck, error)
}

func (s *stubDeliveryUsecase) Create(ctx context.Context, in domain.PricingInputs) (*domain.Delivery, error) {
	if s.createFn == nil {
		panic("Create not expected in this test")
	}
	return s.createFn(ctx, in)
}

func (s *stubDeliveryUsecase) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	if s.getFn == nil {
		panic("Get not expected in this test")
	}
	return s.getFn(ctx, id)
}

func (s *stubDeliveryUsecase) SubmitTransition(
	ctx context.Context, id int64, target domain.DeliveryStatus, note domain.TransitionNote,
) (*domain.Delivery, error) {
	if s.transitionFn == nil {
		panic("SubmitTransition not expected in this test")
	}
	return s.transitionFn(ctx, id, target, note)
}

func (s *stubDeliveryUsecase) AssignCourier(ctx context.Context, deliveryID, courierID int64) (domain.AssignResult, error) {
	if s.assignFn == nil {
		panic("AssignCourier not expected in this test")
	}
	return s.assignFn(ctx, deliveryID, courierID)
}

func (s *stubDeliveryUsecase) Events(ctx context.Context, id int64) ([]domain.TrackingEvent, error) {
	if s.eventsFn == nil {
		panic("Events not expected in this test")
	}
	return s.eventsFn(ctx, id)
}

func (s *stubDeliveryUsecase) VerifyQuote(ctx context.Context, id int64) (domain.QuoteCheck, error) {
	if s.verifyFn == nil {
		panic("VerifyQuote not expected in this test")
	}
	return s.verifyFn(ctx, id)
}

func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sampleDelivery(status domain.DeliveryStatus) *domain.Delivery {
	return &domain.Delivery{
		ID:             11,
		TrackingNumber: "PCL-11",
		Status:         status,
		Inputs: domain.PricingInputs{
			DeliveryType:    "standard",
			PackageWeightKg: decimal.NewFromInt(3),
			DistanceKm:      decimal.NewFromInt(10),
			PickupDate:      time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
			PickupTime:      12 * 60,
		},
		Breakdown:      domain.PricingBreakdown{EstimatedCost: decimal.NewFromInt(140), PricingVersion: "v1"},
		PricingVersion: "v1",
		PaymentStatus:  domain.PaymentUnpaid,
		Version:        1,
	}
}

const createBody = `{
	"delivery_type": "standard",
	"package_weight_kg": 3,
	"distance_km": "10",
	"pickup_date": "2025-01-08",
	"pickup_time": "12:00"
}`

func TestDeliveryHandler_Create_OK(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		createFn: func(_ context.Context, in domain.PricingInputs) (*domain.Delivery, error) {
			require.Equal(t, domain.DeliveryType("standard"), in.DeliveryType)
			require.True(t, in.PackageWeightKg.Equal(decimal.NewFromInt(3)))
			require.True(t, in.DistanceKm.Equal(decimal.NewFromInt(10)))
			require.Equal(t, time.Wednesday, in.PickupDate.Weekday())
			require.Equal(t, domain.TimeOfDay(720), in.PickupTime)
			return sampleDelivery(domain.DeliveryPending), nil
		},
	}

	rr := httptest.NewRecorder()
	NewDeliveryHandler(nil, uc).Create(rr, jsonRequest(http.MethodPost, "/deliveries", createBody))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "/deliveries/11", rr.Header().Get("Location"))

	var resp struct {
		Success bool        `json:"success"`
		Data    deliveryDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.True(t, resp.Success)
	require.Equal(t, "PCL-11", resp.Data.TrackingNumber)
	require.Equal(t, domain.DeliveryPending, resp.Data.Status)
	require.Equal(t, "2025-01-08", resp.Data.Inputs.PickupDate)
	require.Equal(t, "12:00", resp.Data.Inputs.PickupTime)
	require.Nil(t, resp.Data.CourierID)
}

func TestDeliveryHandler_Create_ValidationErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"malformed":      `{"delivery_type":`,
		"unknown field":  `{"delivery_type":"standard","colour":"red"}`,
		"missing type":   `{"pickup_date":"2025-01-08","pickup_time":"12:00"}`,
		"bad date":       `{"delivery_type":"standard","pickup_date":"08.01.2025","pickup_time":"12:00"}`,
		"bad time":       `{"delivery_type":"standard","pickup_date":"2025-01-08","pickup_time":"noon"}`,
		"trailing value": createBody + `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			NewDeliveryHandler(nil, &stubDeliveryUsecase{}).Create(rr, jsonRequest(http.MethodPost, "/deliveries", body))

			require.Equal(t, http.StatusBadRequest, rr.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			require.False(t, resp.Success)
			require.Equal(t, CodeValidation, resp.Error)
		})
	}
}

func TestDeliveryHandler_Create_ServiceRejectsInputs(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		createFn: func(context.Context, domain.PricingInputs) (*domain.Delivery, error) {
			return nil, fmt.Errorf("%w: package_weight_kg must be > 0", apperr.ErrInvalid)
		},
	}
	rr := httptest.NewRecorder()
	NewDeliveryHandler(nil, uc).Create(rr, jsonRequest(http.MethodPost, "/deliveries", createBody))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t,
		`{"success":false,"error":"ValidationError","message":"invalid input: package_weight_kg must be > 0"}`,
		rr.Body.String())
}

func TestDeliveryHandler_Get(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		getFn: func(_ context.Context, id int64) (*domain.Delivery, error) {
			if id == 11 {
				return sampleDelivery(domain.DeliveryInTransit), nil
			}
			return nil, apperr.ErrNotFound
		},
	}
	h := NewDeliveryHandler(nil, uc)

	rr := httptest.NewRecorder()
	h.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/deliveries/11", nil), "11"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/deliveries/12", nil), "12"))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.Get(rr, withID(httptest.NewRequest(http.MethodGet, "/deliveries/abc", nil), "abc"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeliveryHandler_Transition_OK(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		transitionFn: func(_ context.Context, id int64, target domain.DeliveryStatus, note domain.TransitionNote) (*domain.Delivery, error) {
			require.Equal(t, int64(11), id)
			require.Equal(t, domain.DeliveryConfirmed, target)
			require.Equal(t, "Depot 2", *note.Location)
			require.Nil(t, note.Notes)
			d := sampleDelivery(target)
			d.Version = 2
			return d, nil
		},
	}

	rr := httptest.NewRecorder()
	req := withID(jsonRequest(http.MethodPost, "/deliveries/11/transitions",
		`{"status":"confirmed","location":"Depot 2"}`), "11")
	NewDeliveryHandler(nil, uc).Transition(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Data deliveryDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, domain.DeliveryConfirmed, resp.Data.Status)
	require.Equal(t, int64(2), resp.Data.Version)
}

func TestDeliveryHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: pending -> delivered", apperr.ErrInvalidTransition), http.StatusUnprocessableEntity, CodeInvalidTransition},
		{apperr.ErrConcurrencyConflict, http.StatusConflict, CodeConcurrencyConflict},
		{apperr.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{apperr.ErrInvalid, http.StatusBadRequest, CodeValidation},
		{apperr.ErrCourierUnavailable, http.StatusUnprocessableEntity, CodeCourierUnavailable},
		{context.DeadlineExceeded, http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			t.Parallel()

			uc := &stubDeliveryUsecase{
				transitionFn: func(context.Context, int64, domain.DeliveryStatus, domain.TransitionNote) (*domain.Delivery, error) {
					return nil, tc.err
				},
				assignFn: func(context.Context, int64, int64) (domain.AssignResult, error) {
					return domain.AssignResult{}, tc.err
				},
			}
			h := NewDeliveryHandler(nil, uc)

			rr := httptest.NewRecorder()
			h.Transition(rr, withID(jsonRequest(http.MethodPost, "/", `{"status":"delivered"}`), "11"))
			require.Equal(t, tc.status, rr.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			require.Equal(t, tc.code, resp.Error)
			if tc.status == http.StatusInternalServerError {
				require.Equal(t, "internal error", resp.Message)
			}

			rr = httptest.NewRecorder()
			h.AssignCourier(rr, withID(jsonRequest(http.MethodPost, "/", `{"courier_id":7}`), "11"))
			require.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestDeliveryHandler_Transition_MissingStatus(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewDeliveryHandler(nil, &stubDeliveryUsecase{}).
		Transition(rr, withID(jsonRequest(http.MethodPost, "/", `{"location":"x"}`), "11"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "status: required")
}

func TestDeliveryHandler_AssignCourier_AdvisoryWarning(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		assignFn: func(_ context.Context, deliveryID, courierID int64) (domain.AssignResult, error) {
			require.Equal(t, int64(11), deliveryID)
			require.Equal(t, int64(7), courierID)
			d := sampleDelivery(domain.DeliveryConfirmed)
			d.CourierID = &courierID
			return domain.AssignResult{
				Delivery: d,
				Courier:  domain.Courier{ID: 7, Status: domain.CourierBusy},
				Policy:   "advisory",
				Warning:  "courier_busy",
			}, nil
		},
	}

	rr := httptest.NewRecorder()
	NewDeliveryHandler(nil, uc).AssignCourier(rr, withID(jsonRequest(http.MethodPost, "/", `{"courier_id":7}`), "11"))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Data assignResultDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "advisory", resp.Data.Policy)
	require.Equal(t, "courier_busy", resp.Data.Warning)
	require.Equal(t, int64(7), *resp.Data.Delivery.CourierID)
}

func TestDeliveryHandler_AssignCourier_RejectsZeroCourier(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewDeliveryHandler(nil, &stubDeliveryUsecase{}).
		AssignCourier(rr, withID(jsonRequest(http.MethodPost, "/", `{"courier_id":0}`), "11"))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeliveryHandler_Events(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	uc := &stubDeliveryUsecase{
		eventsFn: func(context.Context, int64) ([]domain.TrackingEvent, error) {
			return []domain.TrackingEvent{
				{ID: 1, DeliveryID: 11, Status: domain.DeliveryConfirmed, Timestamp: ts},
				{ID: 2, DeliveryID: 11, Status: domain.DeliveryScheduled, Timestamp: ts.Add(time.Hour)},
			}, nil
		},
	}

	rr := httptest.NewRecorder()
	NewDeliveryHandler(nil, uc).Events(rr, withID(httptest.NewRequest(http.MethodGet, "/", nil), "11"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"delivery_id":11,"events":[
		{"id":1,"status":"confirmed","timestamp":"2025-01-08T12:00:00Z"},
		{"id":2,"status":"scheduled","timestamp":"2025-01-08T13:00:00Z"}
	]}}`, rr.Body.String())
}

func TestDeliveryHandler_VerifyQuote(t *testing.T) {
	t.Parallel()

	uc := &stubDeliveryUsecase{
		verifyFn: func(_ context.Context, id int64) (domain.QuoteCheck, error) {
			return domain.QuoteCheck{DeliveryID: id, PricingVersion: "v1", Matches: true}, nil
		},
	}

	rr := httptest.NewRecorder()
	NewDeliveryHandler(nil, uc).VerifyQuote(rr, withID(httptest.NewRequest(http.MethodGet, "/", nil), "11"))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Data domain.QuoteCheck `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.True(t, resp.Data.Matches)
	require.Equal(t, "v1", resp.Data.PricingVersion)
}
