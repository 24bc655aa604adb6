// Package tracking records quality-line transitions and builds the vehicle
// views and reports on top of the duration accumulator.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/vehicle-quality/internal/db"
	"github.com/ukydev/vehicle-quality/internal/duration"
	"github.com/ukydev/vehicle-quality/internal/metrics"
	"github.com/ukydev/vehicle-quality/internal/models"
	"github.com/ukydev/vehicle-quality/internal/status"
)

var (
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrEventNotFound    = errors.New("timeline event not found")
	ErrInvalidEventType = errors.New("invalid event type")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidVehicle   = errors.New("invalid vehicle")
)

// Service handles vehicle tracking operations.
type Service struct {
	vehicles  db.VehicleCollection
	timeline  db.TimelineCollection
	formatter duration.Formatter
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithFormatter sets the formatter used for duration figures.
func WithFormatter(f duration.Formatter) Option {
	return func(s *Service) { s.formatter = f }
}

// NewService creates a tracking service over the given collections.
func NewService(vehicles db.VehicleCollection, timeline db.TimelineCollection, opts ...Option) *Service {
	s := &Service{
		vehicles:  vehicles,
		timeline:  timeline,
		formatter: duration.Default,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// CreateVehicle registers a new vehicle. The status defaults to in_production
// and the status entry time to now.
func (s *Service) CreateVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	v.ChassisNumber = strings.TrimSpace(v.ChassisNumber)
	if v.ChassisNumber == "" {
		return nil, fmt.Errorf("%w: chassis number is required", ErrInvalidVehicle)
	}
	if v.Status == "" {
		v.Status = string(models.StatusInProduction)
	}
	st := models.NormalizeStatus(v.Status)
	if st == models.StatusUnknown {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidVehicle, v.Status)
	}
	v.Status = string(st)

	now := models.FormatTimestamp(s.now())
	v.ID = primitive.NewObjectID()
	v.CreatedAt = now
	if v.StatusEnteredAt == "" {
		v.StatusEnteredAt = now
	}
	v.ReworkCycles = nil

	if err := s.vehicles.InsertVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("insert vehicle: %w", err)
	}
	log.WithFields(log.Fields{
		"vehicle_id": v.ID.Hex(),
		"chassis":    v.ChassisNumber,
		"status":     v.Status,
	}).Info("Created vehicle")
	return &v, nil
}

// GetVehicle loads a vehicle by id.
func (s *Service) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := s.vehicles.FindVehicleByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return v, nil
}

// DeleteVehicle removes a vehicle and its timeline.
func (s *Service) DeleteVehicle(ctx context.Context, id string) error {
	if _, err := s.GetVehicle(ctx, id); err != nil {
		return err
	}
	removed, err := s.timeline.DeleteEventsByVehicle(ctx, id)
	if err != nil {
		return fmt.Errorf("delete timeline: %w", err)
	}
	if err := s.vehicles.DeleteVehicle(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
		}
		return fmt.Errorf("delete vehicle: %w", err)
	}
	log.WithFields(log.Fields{"vehicle_id": id, "events": removed}).Info("Deleted vehicle")
	return nil
}

// RecordEvent appends a timeline event and moves the vehicle to the status
// the event implies. Events older than the current status entry are stored
// without changing the status. Recording the same event twice is a no-op
// that returns the stored event.
func (s *Service) RecordEvent(ctx context.Context, vehicleID string, in models.EventInput) (*models.TimelineEvent, error) {
	if !models.IsValidEventType(in.EventType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEventType, in.EventType)
	}

	// Missing timestamps mean "now"
	at := s.now()
	if strings.TrimSpace(in.Timestamp) != "" {
		parsed, err := duration.ParseTimestamp(in.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		at = parsed
	}

	v, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	event := models.TimelineEvent{
		ID:        primitive.NewObjectID(),
		VehicleID: v.ID.Hex(),
		EventType: in.EventType,
		Timestamp: models.FormatTimestamp(at),
		Notes:     strings.TrimSpace(in.Notes),
	}
	fields := log.Fields{
		"vehicle_id": event.VehicleID,
		"event_type": event.EventType,
		"timestamp":  event.Timestamp,
	}

	// Store the event; a redelivery resolves to the already stored copy so
	// a status update that failed last time is still applied
	if err := s.timeline.InsertEvent(ctx, event); err != nil {
		if !errors.Is(err, db.ErrDuplicateEvent) {
			return nil, fmt.Errorf("insert event: %w", err)
		}
		stored, err := s.storedEvent(ctx, event)
		if err != nil {
			return nil, err
		}
		event = *stored
		log.WithFields(fields).Info("Timeline event already recorded")
	}

	// Move the status forward, or only close a rework cycle for a late event
	changed := false
	if advancesStatus(v, at) {
		changed = applyEvent(v, event)
	} else {
		log.WithFields(fields).Warn("Late timeline event stored without status change")
		if event.EventType == models.EventReworkEnd {
			changed = closeReworkCycle(v, event.Timestamp, at)
		}
	}
	if !changed {
		return &event, nil
	}

	if err := s.vehicles.UpdateVehicle(ctx, event.VehicleID, *v); err != nil {
		return nil, fmt.Errorf("update vehicle status: %w", err)
	}
	fields["status"] = v.Status
	log.WithFields(fields).Info("Recorded timeline event")
	return &event, nil
}

// storedEvent finds the stored event with the same type and timestamp as e.
func (s *Service) storedEvent(ctx context.Context, e models.TimelineEvent) (*models.TimelineEvent, error) {
	events, err := s.timeline.FindEventsByVehicle(ctx, e.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	for i := range events {
		if events[i].EventType == e.EventType && events[i].Timestamp == e.Timestamp {
			return &events[i], nil
		}
	}
	return nil, fmt.Errorf("duplicate %s event at %s not found", e.EventType, e.Timestamp)
}

func advancesStatus(v *models.Vehicle, at time.Time) bool {
	entered, err := duration.ParseTimestamp(v.StatusEnteredAt)
	if err != nil {
		return true
	}
	return !at.Before(entered)
}

// applyEvent moves v to the status of e and reports whether v changed.
func applyEvent(v *models.Vehicle, e models.TimelineEvent) bool {
	target := string(models.StatusForEvent(e.EventType))
	changed := v.Status != target || v.StatusEnteredAt != e.Timestamp
	v.Status = target
	v.StatusEnteredAt = e.Timestamp

	switch e.EventType {
	case models.EventReworkStart:
		if i := v.OpenReworkCycle(); i >= 0 && v.ReworkCycles[i].StartedAt == e.Timestamp {
			break
		}
		v.ReworkCycles = append(v.ReworkCycles, models.ReworkCycle{StartedAt: e.Timestamp, Reason: e.Notes})
		changed = true
	case models.EventReworkEnd:
		if i := v.OpenReworkCycle(); i >= 0 {
			v.ReworkCycles[i].EndedAt = e.Timestamp
			changed = true
		}
	}
	return changed
}

// closeReworkCycle ends the open rework cycle at ts when it started no later
// than at.
func closeReworkCycle(v *models.Vehicle, ts string, at time.Time) bool {
	i := v.OpenReworkCycle()
	if i < 0 {
		return false
	}
	started, err := duration.ParseTimestamp(v.ReworkCycles[i].StartedAt)
	if err != nil || at.Before(started) {
		return false
	}
	v.ReworkCycles[i].EndedAt = ts
	return true
}

// DeleteEvent removes a mis-recorded event. Derived figures change on the next read.
func (s *Service) DeleteEvent(ctx context.Context, vehicleID, eventID string) error {
	if _, err := s.GetVehicle(ctx, vehicleID); err != nil {
		return err
	}
	if err := s.timeline.DeleteEvent(ctx, vehicleID, eventID); err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return fmt.Errorf("delete event: %w", err)
	}
	log.WithFields(log.Fields{"vehicle_id": vehicleID, "event_id": eventID}).Info("Deleted timeline event")
	return nil
}

// Events returns the timeline of a vehicle.
func (s *Service) Events(ctx context.Context, vehicleID string) ([]models.TimelineEvent, error) {
	events, err := s.timeline.FindEventsByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	return events, nil
}

// Elapsed resolves the current elapsed figure of a vehicle as of at.
func (s *Service) Elapsed(ctx context.Context, vehicleID string, at time.Time) (duration.Elapsed, string, error) {
	v, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return duration.Elapsed{}, "", err
	}
	events, err := s.Events(ctx, vehicleID)
	if err != nil {
		return duration.Elapsed{}, "", err
	}
	e := s.resolveElapsed(v, events, at)
	return e, s.formatter.Elapsed(e), nil
}

// Totals returns the historical control/rework/quality totals of a vehicle.
func (s *Service) Totals(ctx context.Context, vehicleID string) (models.DurationTotals, error) {
	v, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return models.DurationTotals{}, err
	}
	events, err := s.Events(ctx, vehicleID)
	if err != nil {
		return models.DurationTotals{}, err
	}
	return s.formatter.Totals(s.accumulate(v, events)), nil
}

// VehicleDetail builds the full view of one vehicle.
func (s *Service) VehicleDetail(ctx context.Context, vehicleID string) (*models.VehicleDetail, error) {
	v, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	events, err := s.Events(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return &models.VehicleDetail{
		VehicleRow: s.row(v, events, s.now()),
		Events:     events,
		Totals:     s.formatter.Totals(s.accumulate(v, events)),
	}, nil
}

// ListVehicles returns one row per vehicle, newest first. The clock is read
// once so every row shares the same reference instant.
func (s *Service) ListVehicles(ctx context.Context) ([]models.VehicleRow, error) {
	vehicles, err := s.allVehicles(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := make([]models.VehicleRow, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		events, err := s.timeline.FindEventsByVehicle(ctx, v.ID.Hex())
		if err != nil {
			log.WithError(err).WithField("vehicle_id", v.ID.Hex()).Warn("Timeline unavailable for vehicle row")
			row := s.row(v, nil, now)
			row.Elapsed = duration.NoData
			rows = append(rows, row)
			continue
		}
		rows = append(rows, s.row(v, events, now))
	}
	return rows, nil
}

// QualityReport computes the totals of every vehicle. A vehicle whose
// timeline cannot be loaded gets an error row instead of failing the report.
func (s *Service) QualityReport(ctx context.Context) ([]models.QualityReportRow, error) {
	vehicles, err := s.allVehicles(ctx)
	if err != nil {
		return nil, err
	}
	report := make([]models.QualityReportRow, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		row := models.QualityReportRow{
			VehicleID:     v.ID.Hex(),
			ChassisNumber: v.ChassisNumber,
			Status:        v.Status,
		}
		events, err := s.timeline.FindEventsByVehicle(ctx, v.ID.Hex())
		if err != nil {
			log.WithError(err).WithField("vehicle_id", row.VehicleID).Warn("Timeline unavailable for quality report")
			row.Error = "timeline unavailable"
			report = append(report, row)
			continue
		}
		acc := s.accumulate(v, events)
		totals := s.formatter.Totals(acc)
		row.Totals = &totals
		row.SkippedEvents = acc.Skipped
		report = append(report, row)
	}
	return report, nil
}

// StatusSummary counts vehicles per status.
func (s *Service) StatusSummary(ctx context.Context) ([]status.SummaryRow, error) {
	vehicles, err := s.allVehicles(ctx)
	if err != nil {
		return nil, err
	}
	return status.Summarize(vehicles), nil
}

func (s *Service) allVehicles(ctx context.Context) ([]models.Vehicle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.vehicles.FindVehicles(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *Service) row(v *models.Vehicle, events []models.TimelineEvent, now time.Time) models.VehicleRow {
	p := status.Project(v.Status)
	return models.VehicleRow{
		Vehicle:     *v,
		StatusLabel: p.Label,
		Variant:     p.Variant,
		Icon:        p.Icon,
		Elapsed:     s.formatter.Elapsed(s.resolveElapsed(v, events, now)),
	}
}

func (s *Service) resolveElapsed(v *models.Vehicle, events []models.TimelineEvent, now time.Time) duration.Elapsed {
	e := duration.ResolveElapsed(v, events, now)
	metrics.FiguresComputed.WithLabelValues("elapsed", e.Kind.String()).Inc()
	return e
}

func (s *Service) accumulate(v *models.Vehicle, events []models.TimelineEvent) duration.Accumulation {
	acc := duration.Accumulate(v, events)
	metrics.FiguresComputed.WithLabelValues("totals", "duration").Inc()
	if acc.Skipped > 0 {
		metrics.SkippedEvents.Add(float64(acc.Skipped))
		log.WithFields(log.Fields{"vehicle_id": v.IDHex(), "skipped": acc.Skipped}).Warn("Skipped timeline events with malformed timestamps")
	}
	return acc
}
