package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Shop is a shop profile. Shops are created outside this API; the only
// write path here attaches an uploaded image.
type Shop struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	FssaiNumber string             `json:"fssaiNumber" bson:"fssaiNumber"`
	ImageURL    string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// ShopSummary is the projection returned when listing shops
type ShopSummary struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	FssaiNumber string             `json:"fssaiNumber" bson:"fssaiNumber"`
}

// Summary projects the shop onto its listing fields
func (s Shop) Summary() ShopSummary {
	return ShopSummary{ID: s.ID, Name: s.Name, FssaiNumber: s.FssaiNumber}
}
