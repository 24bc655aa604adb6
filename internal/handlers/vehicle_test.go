package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/vehicle-quality/internal/duration"
	"github.com/ukydev/vehicle-quality/internal/models"
	"github.com/ukydev/vehicle-quality/internal/status"
	"github.com/ukydev/vehicle-quality/internal/tracking"
)

// MockVehicleService is a mock implementation of VehicleService
type MockVehicleService struct {
	mock.Mock
}

func (m *MockVehicleService) Now() time.Time {
	return m.Called().Get(0).(time.Time)
}

func (m *MockVehicleService) CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleService) DeleteVehicle(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockVehicleService) RecordEvent(ctx context.Context, vehicleID string, in models.EventInput) (*models.TimelineEvent, error) {
	args := m.Called(ctx, vehicleID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimelineEvent), args.Error(1)
}

func (m *MockVehicleService) DeleteEvent(ctx context.Context, vehicleID, eventID string) error {
	return m.Called(ctx, vehicleID, eventID).Error(0)
}

func (m *MockVehicleService) VehicleDetail(ctx context.Context, vehicleID string) (*models.VehicleDetail, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VehicleDetail), args.Error(1)
}

func (m *MockVehicleService) ListVehicles(ctx context.Context) ([]models.VehicleRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VehicleRow), args.Error(1)
}

func (m *MockVehicleService) Elapsed(ctx context.Context, vehicleID string, at time.Time) (duration.Elapsed, string, error) {
	args := m.Called(ctx, vehicleID, at)
	return args.Get(0).(duration.Elapsed), args.String(1), args.Error(2)
}

func (m *MockVehicleService) Totals(ctx context.Context, vehicleID string) (models.DurationTotals, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).(models.DurationTotals), args.Error(1)
}

func (m *MockVehicleService) QualityReport(ctx context.Context) ([]models.QualityReportRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QualityReportRow), args.Error(1)
}

func (m *MockVehicleService) StatusSummary(ctx context.Context) ([]status.SummaryRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]status.SummaryRow), args.Error(1)
}

func newRouter(svc VehicleService) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	NewVehicleHandler(svc).Register(r)
	return r
}

func serve(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := serve(newRouter(&MockVehicleService{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreateVehicle(t *testing.T) {
	svc := &MockVehicleService{}
	created := &models.Vehicle{ID: primitive.NewObjectID(), ChassisNumber: "NMB1", Status: "in_production"}
	svc.On("CreateVehicle", mock.Anything, models.Vehicle{ChassisNumber: "NMB1"}).Return(created, nil)

	rr := serve(newRouter(svc), http.MethodPost, "/api/vehicles", []byte(`{"chassis_number":"NMB1"}`))
	require.Equal(t, http.StatusCreated, rr.Code)

	var got models.Vehicle
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	svc.AssertExpectations(t)
}

func TestCreateVehicle_BadRequest(t *testing.T) {
	svc := &MockVehicleService{}
	svc.On("CreateVehicle", mock.Anything, mock.Anything).Return(nil, tracking.ErrInvalidVehicle)

	rr := serve(newRouter(svc), http.MethodPost, "/api/vehicles", []byte(`{"chassis_number":""}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(newRouter(svc), http.MethodPost, "/api/vehicles", []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRecordEvent(t *testing.T) {
	svc := &MockVehicleService{}
	in := models.EventInput{EventType: models.EventReworkStart, Notes: "scratch"}
	svc.On("RecordEvent", mock.Anything, "v1", in).
		Return(&models.TimelineEvent{ID: primitive.NewObjectID(), VehicleID: "v1", EventType: in.EventType}, nil)

	rr := serve(newRouter(svc), http.MethodPost, "/api/vehicles/v1/events", []byte(`{"event_type":"rework_start","notes":"scratch"}`))
	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}

func TestRecordEvent_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unknown vehicle", tracking.ErrVehicleNotFound, http.StatusNotFound},
		{"bad type", tracking.ErrInvalidEventType, http.StatusBadRequest},
		{"bad timestamp", tracking.ErrInvalidTimestamp, http.StatusBadRequest},
		{"store down", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockVehicleService{}
			svc.On("RecordEvent", mock.Anything, "v1", mock.Anything).Return(nil, tt.err)
			rr := serve(newRouter(svc), http.MethodPost, "/api/vehicles/v1/events", []byte(`{"event_type":"shipped"}`))
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func TestDeleteEndpoints(t *testing.T) {
	svc := &MockVehicleService{}
	svc.On("DeleteEvent", mock.Anything, "v1", "e1").Return(nil)
	svc.On("DeleteEvent", mock.Anything, "v1", "e2").Return(tracking.ErrEventNotFound)
	svc.On("DeleteVehicle", mock.Anything, "v1").Return(nil)
	r := newRouter(svc)

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/api/vehicles/v1/events/e1", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodDelete, "/api/vehicles/v1/events/e2", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/api/vehicles/v1", nil).Code)
}

func TestElapsed_NowOverride(t *testing.T) {
	svc := &MockVehicleService{}
	svc.On("Now").Return(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	at := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	svc.On("Elapsed", mock.Anything, "v1", mock.MatchedBy(func(got time.Time) bool { return got.Equal(at) })).
		Return(duration.Elapsed{Kind: duration.KindDuration, Duration: 150 * time.Minute}, "2 sa 30 dk", nil)

	rr := serve(newRouter(svc), http.MethodGet, "/api/vehicles/v1/elapsed?now=2024-03-01T08:30:00Z", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got ElapsedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "duration", got.Kind)
	assert.Equal(t, "2 sa 30 dk", got.Elapsed)
	assert.Equal(t, int64(150*60*1000), got.Millis)
	assert.Equal(t, "2024-03-01T08:30:00.000Z", got.At)
}

func TestElapsed_Sentinels(t *testing.T) {
	svc := &MockVehicleService{}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.On("Now").Return(now)
	svc.On("Elapsed", mock.Anything, "v1", now).Return(duration.Elapsed{Kind: duration.KindInvalid}, duration.InvalidDate, nil)

	rr := serve(newRouter(svc), http.MethodGet, "/api/vehicles/v1/elapsed", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got ElapsedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "invalid", got.Kind)
	assert.Equal(t, duration.InvalidDate, got.Elapsed)
	assert.Zero(t, got.Millis)

	rr = serve(newRouter(svc), http.MethodGet, "/api/vehicles/v1/elapsed?now=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTotalsAndReports(t *testing.T) {
	svc := &MockVehicleService{}
	totals := models.DurationTotals{ControlTime: "1 sa 0 dk", ReworkTime: "30 dk", QualityTime: "1 sa 0 dk"}
	svc.On("Totals", mock.Anything, "v1").Return(totals, nil)
	svc.On("QualityReport", mock.Anything).Return([]models.QualityReportRow{{VehicleID: "v1", Totals: &totals}}, nil)
	svc.On("StatusSummary", mock.Anything).Return([]status.SummaryRow{{Status: models.StatusShipped, Count: 2}}, nil)
	svc.On("ListVehicles", mock.Anything).Return(nil, errors.New("down"))
	r := newRouter(svc)

	rr := serve(r, http.MethodGet, "/api/vehicles/v1/totals", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"control_time":"1 sa 0 dk","rework_time":"30 dk","quality_time":"1 sa 0 dk"}`, rr.Body.String())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/reports/quality", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/reports/status-summary", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodGet, "/api/vehicles", nil).Code)
}

func TestGetVehicle_NotFound(t *testing.T) {
	svc := &MockVehicleService{}
	svc.On("VehicleDetail", mock.Anything, "nope").Return(nil, tracking.ErrVehicleNotFound)

	rr := serve(newRouter(svc), http.MethodGet, "/api/vehicles/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
