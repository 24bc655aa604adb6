package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/vehicle-quality/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	VehiclesCollectionName = "vehicles"
	TimelineCollectionName = "timeline_events"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Store bundles the collections used by the service.
type Store struct {
	Vehicles *MongoVehicleCollection
	Timeline *MongoTimelineCollection
}

// NewStore wires the vehicle and timeline collections of database dbName.
func NewStore(client *mongo.Client, dbName string) *Store {
	database := client.Database(dbName)
	return &Store{
		Vehicles: &MongoVehicleCollection{Collection: database.Collection(VehiclesCollectionName)},
		Timeline: &MongoTimelineCollection{Collection: database.Collection(TimelineCollectionName)},
	}
}

// EnsureIndexes creates the per-vehicle timeline index. The index is unique
// over (vehicle_id, event_type, timestamp) so a redelivered event is stored once.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.Timeline == nil || s.Timeline.Collection == nil {
		return ErrNilCollection
	}
	_, err := s.Timeline.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "vehicle_id", Value: 1},
			{Key: "timestamp", Value: 1},
			{Key: "event_type", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("vehicle_timestamp_type_unique"),
	})
	if err != nil {
		return fmt.Errorf("create timeline index: %w", err)
	}
	return nil
}

func objectIDFromHex(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return objectID, nil
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// mongoVehicleCursor wraps a MongoDB cursor for vehicle queries.
type mongoVehicleCursor struct {
	cursor *mongo.Cursor
}

// All retrieves all results from the cursor.
func (m *mongoVehicleCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

// Close closes the cursor.
func (m *mongoVehicleCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicles queries vehicle records from the collection.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (VehicleCursor, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return &mongoVehicleCursor{cursor: cursor}, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var vehicle models.Vehicle
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &vehicle, nil
}

// UpdateVehicle replaces the stored fields of a vehicle.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	vehicle.ID = primitive.NilObjectID
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": vehicle})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteVehicle deletes a vehicle by its ID.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
	}
	return nil
}

// MongoTimelineCollection implements TimelineCollection for MongoDB.
type MongoTimelineCollection struct {
	Collection *mongo.Collection
}

// InsertEvent appends a timeline event. An event with the same vehicle,
// type and timestamp as a stored one yields ErrDuplicateEvent.
func (c *MongoTimelineCollection) InsertEvent(ctx context.Context, event models.TimelineEvent) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	if _, err := c.Collection.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s %s", ErrDuplicateEvent, event.EventType, event.Timestamp)
		}
		return err
	}
	return nil
}

// FindEventsByVehicle returns the events of one vehicle ordered by timestamp.
func (c *MongoTimelineCollection) FindEventsByVehicle(ctx context.Context, vehicleID string) ([]models.TimelineEvent, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []models.TimelineEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// DeleteEvent removes one event of a vehicle.
func (c *MongoTimelineCollection) DeleteEvent(ctx context.Context, vehicleID, eventID string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	objectID, err := objectIDFromHex(eventID)
	if err != nil {
		return err
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID, "vehicle_id": vehicleID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return nil
}

// DeleteEventsByVehicle removes every event of a vehicle.
func (c *MongoTimelineCollection) DeleteEventsByVehicle(ctx context.Context, vehicleID string) (int64, error) {
	if c.Collection == nil {
		return 0, ErrNilCollection
	}
	result, err := c.Collection.DeleteMany(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
