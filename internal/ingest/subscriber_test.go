package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/vehicle-quality/internal/models"
	"github.com/ukydev/vehicle-quality/internal/tracking"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordEvent(ctx context.Context, vehicleID string, in models.EventInput) (*models.TimelineEvent, error) {
	args := m.Called(ctx, vehicleID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimelineEvent), args.Error(1)
}

func TestVehicleIDFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
		ok    bool
	}{
		{"quality/vehicles/65f0c0ffee/events", "65f0c0ffee", true},
		{"plant2/quality/vehicles/abc/events", "abc", true},
		{"quality/vehicles//events", "", false},
		{"quality/events", "", false},
		{"quality/vehicles", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := VehicleIDFromTopic(tt.topic)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrBadTopic)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleMessage_Records(t *testing.T) {
	rec := &MockRecorder{}
	sub := NewSubscriber(Options{BrokerURL: "tcp://localhost:1883", Topic: "quality/vehicles/+/events", ClientID: "test"}, rec)

	in := models.EventInput{EventType: models.EventControlStart, Timestamp: "2024-03-01T10:00:00Z", Notes: "station 3"}
	rec.On("RecordEvent", mock.Anything, "v1", in).
		Return(&models.TimelineEvent{ID: primitive.NewObjectID(), VehicleID: "v1", EventType: in.EventType}, nil)

	err := sub.HandleMessage(context.Background(), "quality/vehicles/v1/events",
		[]byte(`{"event_type":"control_start","timestamp":"2024-03-01T10:00:00Z","notes":"station 3"}`))
	require.NoError(t, err)
	rec.AssertExpectations(t)
}

func TestHandleMessage_Rejects(t *testing.T) {
	rec := &MockRecorder{}
	sub := NewSubscriber(Options{BrokerURL: "tcp://localhost:1883", Topic: "#", ClientID: "test"}, rec)

	assert.ErrorIs(t, sub.HandleMessage(context.Background(), "quality/other", []byte(`{}`)), ErrBadTopic)
	assert.Error(t, sub.HandleMessage(context.Background(), "quality/vehicles/v1/events", []byte(`not json`)))
	rec.AssertNotCalled(t, "RecordEvent", mock.Anything, mock.Anything, mock.Anything)

	rec.On("RecordEvent", mock.Anything, "v2", mock.Anything).Return(nil, tracking.ErrInvalidEventType)
	err := sub.HandleMessage(context.Background(), "quality/vehicles/v2/events", []byte(`{"event_type":"painted"}`))
	assert.ErrorIs(t, err, tracking.ErrInvalidEventType)
}
