package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
)

// MongoPackageRepository implements PackageRepository on a MongoDB collection
type MongoPackageRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoPackageRepository creates a package repository backed by coll
func NewMongoPackageRepository(coll *mongo.Collection) *MongoPackageRepository {
	return &MongoPackageRepository{coll: coll, now: time.Now}
}

// Create inserts settings and fills in its ID and timestamps
func (r *MongoPackageRepository) Create(ctx context.Context, settings *models.PackageSettings) error {
	now := timestamp(r.now())
	settings.ID = primitive.NewObjectID()
	settings.CreatedAt = now
	settings.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, settings); err != nil {
		return fmt.Errorf("failed to insert package settings: %w", err)
	}
	return nil
}

// List returns all package settings
func (r *MongoPackageRepository) List(ctx context.Context) ([]models.PackageSettings, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query package settings: %w", err)
	}

	settings := make([]models.PackageSettings, 0)
	if err := cursor.All(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode package settings: %w", err)
	}
	return settings, nil
}

// GetByID returns package settings by ID
func (r *MongoPackageRepository) GetByID(ctx context.Context, id string) (*models.PackageSettings, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, ErrPackageNotFound
	}

	var settings models.PackageSettings
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load package settings %s: %w", id, err)
	}
	return &settings, nil
}

// Update sets the fields present in patch and returns the updated document
func (r *MongoPackageRepository) Update(ctx context.Context, id string, patch models.PackageSettingsPatch) (*models.PackageSettings, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, ErrPackageNotFound
	}

	set := bson.M{"updatedAt": timestamp(r.now())}
	if patch.DeliveryTime != nil {
		set["deliveryTime"] = *patch.DeliveryTime
	}
	if patch.DeliveryRadius != nil {
		set["deliveryRadius"] = *patch.DeliveryRadius
	}
	if patch.FreeDeliveryRadius != nil {
		set["freeDeliveryRadius"] = *patch.FreeDeliveryRadius
	}
	if patch.OrderValueRanges != nil {
		set["orderValueRanges"] = models.ToRanges(patch.OrderValueRanges)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var settings models.PackageSettings
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update package settings %s: %w", id, err)
	}
	return &settings, nil
}

// Delete removes package settings by ID
func (r *MongoPackageRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return ErrPackageNotFound
	}

	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrPackageNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete package settings %s: %w", id, err)
	}
	return nil
}

// InMemoryPackageRepository implements PackageRepository with in-memory storage
type InMemoryPackageRepository struct {
	mu       sync.RWMutex
	settings map[primitive.ObjectID]models.PackageSettings
	order    []primitive.ObjectID
	now      func() time.Time
}

// NewInMemoryPackageRepository creates an empty in-memory package repository
func NewInMemoryPackageRepository() *InMemoryPackageRepository {
	return &InMemoryPackageRepository{
		settings: make(map[primitive.ObjectID]models.PackageSettings),
		now:      time.Now,
	}
}

// Create stores settings and fills in its ID and timestamps
func (r *InMemoryPackageRepository) Create(ctx context.Context, settings *models.PackageSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := timestamp(r.now())
	settings.ID = primitive.NewObjectID()
	settings.CreatedAt = now
	settings.UpdatedAt = now

	r.settings[settings.ID] = clonePackage(*settings)
	r.order = append(r.order, settings.ID)
	return nil
}

// List returns all package settings in insertion order
func (r *InMemoryPackageRepository) List(ctx context.Context) ([]models.PackageSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.PackageSettings, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clonePackage(r.settings[id]))
	}
	return out, nil
}

// GetByID returns package settings by ID
func (r *InMemoryPackageRepository) GetByID(ctx context.Context, id string) (*models.PackageSettings, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, ErrPackageNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	settings, exists := r.settings[oid]
	if !exists {
		return nil, ErrPackageNotFound
	}
	settings = clonePackage(settings)
	return &settings, nil
}

// Update sets the fields present in patch and returns the updated settings
func (r *InMemoryPackageRepository) Update(ctx context.Context, id string, patch models.PackageSettingsPatch) (*models.PackageSettings, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, ErrPackageNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	settings, exists := r.settings[oid]
	if !exists {
		return nil, ErrPackageNotFound
	}
	patch.Apply(&settings)
	settings.UpdatedAt = timestamp(r.now())
	r.settings[oid] = settings

	settings = clonePackage(settings)
	return &settings, nil
}

// Delete removes package settings by ID
func (r *InMemoryPackageRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return ErrPackageNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[oid]; !exists {
		return ErrPackageNotFound
	}
	delete(r.settings, oid)
	for i, existing := range r.order {
		if existing == oid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func clonePackage(p models.PackageSettings) models.PackageSettings {
	p.OrderValueRanges = append([]models.OrderValueRange(nil), p.OrderValueRanges...)
	if p.OrderValueRanges == nil {
		p.OrderValueRanges = []models.OrderValueRange{}
	}
	return p
}
