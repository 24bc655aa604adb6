// Package ingest consumes quality-station events published over MQTT and
// records them on the vehicle timeline.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-quality/internal/metrics"
	"github.com/ukydev/vehicle-quality/internal/models"
	"github.com/ukydev/vehicle-quality/internal/tracking"
)

const (
	// QoS is the subscription quality of service (at least once).
	QoS byte = 1

	connectTimeout = 10 * time.Second
	handleTimeout  = 5 * time.Second
)

var ErrBadTopic = errors.New("topic does not carry a vehicle id")

// Recorder records a timeline event for a vehicle.
type Recorder interface {
	RecordEvent(ctx context.Context, vehicleID string, in models.EventInput) (*models.TimelineEvent, error)
}

// Options configures a Subscriber.
type Options struct {
	BrokerURL string
	Topic     string
	ClientID  string
}

// Subscriber feeds MQTT station messages into a Recorder.
type Subscriber struct {
	opts     Options
	recorder Recorder
	client   mqtt.Client
}

// NewSubscriber creates a subscriber. A random suffix is appended to the
// client id so several API replicas can share one broker.
func NewSubscriber(opts Options, recorder Recorder) *Subscriber {
	s := &Subscriber{opts: opts, recorder: recorder}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(fmt.Sprintf("%s-%s", opts.ClientID, uuid.NewString()[:8])).
		SetAutoReconnect(true).
		SetCleanSession(false).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost, reconnecting")
		})
	s.client = mqtt.NewClient(clientOpts)
	return s
}

// Run connects to the broker and processes messages until ctx is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to %s: timed out", s.opts.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", s.opts.BrokerURL, err)
	}

	<-ctx.Done()
	s.client.Disconnect(250)
	log.Info("MQTT subscriber stopped")
	return nil
}

// onConnect subscribes on every (re)connection.
func (s *Subscriber) onConnect(c mqtt.Client) {
	log.WithFields(log.Fields{"broker": s.opts.BrokerURL, "topic": s.opts.Topic}).Info("MQTT connected")
	token := c.Subscribe(s.opts.Topic, QoS, func(_ mqtt.Client, msg mqtt.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()
		if err := s.HandleMessage(ctx, msg.Topic(), msg.Payload()); err != nil {
			log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropped station message")
		}
	})
	if token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).WithField("topic", s.opts.Topic).Error("MQTT subscribe failed")
	}
}

// HandleMessage decodes one station message and records it.
func (s *Subscriber) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	vehicleID, err := VehicleIDFromTopic(topic)
	if err != nil {
		metrics.EventsRecorded.WithLabelValues("mqtt", "rejected").Inc()
		return err
	}

	var in models.EventInput
	if err := json.Unmarshal(payload, &in); err != nil {
		metrics.EventsRecorded.WithLabelValues("mqtt", "rejected").Inc()
		return fmt.Errorf("decode payload: %w", err)
	}

	event, err := s.recorder.RecordEvent(ctx, vehicleID, in)
	if err != nil {
		result := "error"
		if errors.Is(err, tracking.ErrInvalidEventType) ||
			errors.Is(err, tracking.ErrInvalidTimestamp) ||
			errors.Is(err, tracking.ErrVehicleNotFound) {
			result = "rejected"
		}
		metrics.EventsRecorded.WithLabelValues("mqtt", result).Inc()
		return err
	}

	metrics.EventsRecorded.WithLabelValues("mqtt", "ok").Inc()
	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"event_type": event.EventType,
		"event_id":   event.ID.Hex(),
	}).Debug("Station event recorded")
	return nil
}

// VehicleIDFromTopic returns the segment following "vehicles" in topic.
func VehicleIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "vehicles" && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrBadTopic, topic)
}
