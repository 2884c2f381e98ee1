package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Lixing-Zhang/shop-admin/backend/internal/models"
)

// MongoProductRepository implements ProductRepository on a MongoDB collection
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a product repository backed by coll
func NewMongoProductRepository(coll *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{coll: coll}
}

// Create inserts a product, assigning its ID and creation time when unset
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	product.CreatedAt = timestamp(product.CreatedAt)

	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// List returns all products
func (r *MongoProductRepository) List(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products []models.Product
}

// NewInMemoryProductRepository creates an empty in-memory product repository
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{}
}

// Create stores a product, assigning its ID and creation time when unset
func (r *InMemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = primitive.NewObjectID()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	product.CreatedAt = timestamp(product.CreatedAt)

	stored := *product
	stored.Images = append([]string(nil), product.Images...)
	r.products = append(r.products, stored)
	return nil
}

// List returns all products in insertion order
func (r *InMemoryProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, len(r.products))
	for i, p := range r.products {
		p.Images = append([]string(nil), p.Images...)
		products[i] = p
	}
	return products, nil
}
