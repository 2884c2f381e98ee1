package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
)

// MongoShopRepository implements ShopRepository on a MongoDB collection
type MongoShopRepository struct {
	coll *mongo.Collection
}

// NewMongoShopRepository creates a shop repository backed by coll
func NewMongoShopRepository(coll *mongo.Collection) *MongoShopRepository {
	return &MongoShopRepository{coll: coll}
}

// ListSummaries returns the name and FSSAI number of every shop
func (r *MongoShopRepository) ListSummaries(ctx context.Context) ([]models.ShopSummary, error) {
	opts := options.Find().SetProjection(bson.M{"name": 1, "fssaiNumber": 1})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query shops: %w", err)
	}

	shops := make([]models.ShopSummary, 0)
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, fmt.Errorf("failed to decode shops: %w", err)
	}
	return shops, nil
}

// GetByID returns a shop by its ID
func (r *MongoShopRepository) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, ErrShopNotFound
	}

	var shop models.Shop
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&shop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shop %s: %w", id, err)
	}
	return &shop, nil
}

// Save writes the mutable fields of an existing shop
func (r *MongoShopRepository) Save(ctx context.Context, shop *models.Shop) error {
	update := bson.M{"$set": bson.M{
		"name":        shop.Name,
		"fssaiNumber": shop.FssaiNumber,
		"imageUrl":    shop.ImageURL,
	}}

	res, err := r.coll.UpdateByID(ctx, shop.ID, update)
	if err != nil {
		return fmt.Errorf("failed to save shop %s: %w", shop.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrShopNotFound
	}
	return nil
}

// InMemoryShopRepository implements ShopRepository with in-memory storage
type InMemoryShopRepository struct {
	mu    sync.RWMutex
	shops map[primitive.ObjectID]models.Shop
	order []primitive.ObjectID
}

// NewInMemoryShopRepository creates an in-memory shop repository seeded with shops
func NewInMemoryShopRepository(seed ...models.Shop) *InMemoryShopRepository {
	r := &InMemoryShopRepository{shops: make(map[primitive.ObjectID]models.Shop)}
	r.Seed(seed...)
	return r
}

// Seed inserts shops, assigning IDs to those without one. Shops are created
// outside the API, so this is the only way to add them.
func (r *InMemoryShopRepository) Seed(shops ...models.Shop) []models.Shop {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Shop, 0, len(shops))
	for _, s := range shops {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		if _, exists := r.shops[s.ID]; !exists {
			r.order = append(r.order, s.ID)
		}
		r.shops[s.ID] = s
		out = append(out, s)
	}
	return out
}

// ListSummaries returns the name and FSSAI number of every shop
func (r *InMemoryShopRepository) ListSummaries(ctx context.Context) ([]models.ShopSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shops := make([]models.ShopSummary, 0, len(r.order))
	for _, id := range r.order {
		shops = append(shops, r.shops[id].Summary())
	}
	return shops, nil
}

// GetByID returns a shop by its ID
func (r *InMemoryShopRepository) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, ErrShopNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	shop, exists := r.shops[oid]
	if !exists {
		return nil, ErrShopNotFound
	}
	return &shop, nil
}

// Save writes the mutable fields of an existing shop
func (r *InMemoryShopRepository) Save(ctx context.Context, shop *models.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.shops[shop.ID]; !exists {
		return ErrShopNotFound
	}
	r.shops[shop.ID] = *shop
	return nil
}
