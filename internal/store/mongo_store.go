package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"device-inventory-backend/internal/model"
)

// deviceDocument is the BSON layout of a device. The device type is stored
// as device_type.
type deviceDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	IPAddress  string             `bson:"ip_address"`
	MACAddress string             `bson:"mac_address"`
	Location   string             `bson:"location"`
	DeviceType string             `bson:"device_type"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (doc deviceDocument) device() model.Device {
	return model.Device{
		ID:         doc.ID.Hex(),
		Name:       doc.Name,
		IPAddress:  doc.IPAddress,
		MACAddress: doc.MACAddress,
		Location:   doc.Location,
		DeviceType: doc.DeviceType,
		CreatedAt:  doc.CreatedAt.UTC(),
		UpdatedAt:  doc.UpdatedAt.UTC(),
	}
}

// MongoStore implements Store on two MongoDB collections. Only the devices
// collection is read or written; logs is provisioned by EnsureIndexes.
type MongoStore struct {
	db      *mongo.Database
	devices *mongo.Collection
	logs    *mongo.Collection
}

// NewMongoStore wraps the named collections of db. The client behind db is
// shared by every request.
func NewMongoStore(db *mongo.Database, devicesCollection, logsCollection string) *MongoStore {
	return &MongoStore{
		db:      db,
		devices: db.Collection(devicesCollection),
		logs:    db.Collection(logsCollection),
	}
}

// EnsureIndexes creates the device and log indexes. Every index is
// attempted; failures are joined into the returned error so the caller can
// log them and keep starting.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	plan := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.devices, mongo.IndexModel{
			Keys:    bson.D{{Key: "mac_address", Value: 1}},
			Options: options.Index().SetName("uniq_mac").SetUnique(true),
		}},
		{s.devices, mongo.IndexModel{
			Keys:    bson.D{{Key: "ip_address", Value: 1}},
			Options: options.Index().SetName("idx_ip"),
		}},
		{s.devices, mongo.IndexModel{
			Keys:    bson.D{{Key: "device_type", Value: 1}},
			Options: options.Index().SetName("idx_type"),
		}},
		{s.devices, mongo.IndexModel{
			Keys:    bson.D{{Key: "location", Value: 1}, {Key: "device_type", Value: 1}},
			Options: options.Index().SetName("idx_location_type"),
		}},
		{s.logs, mongo.IndexModel{
			Keys:    bson.D{{Key: "device_id", Value: 1}},
			Options: options.Index().SetName("idx_log_device"),
		}},
		{s.logs, mongo.IndexModel{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("idx_log_ts"),
		}},
	}

	var errs []error
	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateOne(ctx, p.model); err != nil {
			errs = append(errs, fmt.Errorf("index %s on %s: %w", *p.model.Options.Name, p.coll.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *MongoStore) List(ctx context.Context) ([]model.Device, error) {
	cur, err := s.devices.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	var docs []deviceDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode devices: %w", err)
	}

	devices := make([]model.Device, 0, len(docs))
	for _, doc := range docs {
		devices = append(devices, doc.device())
	}
	return devices, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*model.Device, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc deviceDocument
	if err := s.devices.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	d := doc.device()
	return &d, nil
}

func (s *MongoStore) Create(ctx context.Context, d *model.Device) error {
	doc := deviceDocument{
		Name:       d.Name,
		IPAddress:  d.IPAddress,
		MACAddress: d.MACAddress,
		Location:   d.Location,
		DeviceType: d.DeviceType,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}

	res, err := s.devices.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create device: %w: %w", ErrDuplicate, err)
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	d.ID = oid.Hex()
	return nil
}

func (s *MongoStore) Update(ctx context.Context, id string, f model.DeviceFields, now time.Time) (*model.Device, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":        f.Name,
		"ip_address":  f.IPAddress,
		"mac_address": f.MACAddress,
		"location":    f.Location,
		"device_type": f.DeviceType,
		"updated_at":  now,
	}}

	res, err := s.devices.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to update device: %w: %w", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("failed to update device: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.devices.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
