package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Food preferences a product may declare
const (
	Vegetarian    = "Vegetarian"
	NonVegetarian = "Non-Vegetarian"
	Vegan         = "Vegan"
	ContainsEgg   = "Contains Egg"
)

// FoodPreferences lists the accepted food preference values
var FoodPreferences = []string{Vegetarian, NonVegetarian, Vegan, ContainsEgg}

// ServingInformation describes portions of a product
type ServingInformation struct {
	ServingSize         string `json:"servingSize" bson:"servingSize"`
	ServingPerContainer int    `json:"servingPerContainer" bson:"servingPerContainer"`
	PreparationTime     int    `json:"preparationTime" bson:"preparationTime"`
}

// Product represents a catalog item
type Product struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Description        string             `json:"description" bson:"description"`
	Images             []string           `json:"images" bson:"images"`
	InStock            bool               `json:"inStock" bson:"inStock"`
	FoodPreference     string             `json:"foodPreference" bson:"foodPreference"`
	ServingInformation ServingInformation `json:"servingInformation" bson:"servingInformation"`
	Notes              string             `json:"notes" bson:"notes"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
}

// ProductInput holds the raw multipart form values of a create request
// together with the URLs of the images saved for it.
type ProductInput struct {
	Name                string   `json:"name" validate:"required"`
	Description         string   `json:"description" validate:"required"`
	FoodPreference      string   `json:"foodPreference" validate:"required,oneof=Vegetarian Non-Vegetarian Vegan 'Contains Egg'"`
	ServingSize         string   `json:"servingSize" validate:"required"`
	ServingPerContainer string   `json:"servingPerContainer" validate:"required,number"`
	PreparationTime     string   `json:"preparationTime" validate:"required,number"`
	InStock             string   `json:"inStock" validate:"omitempty,boolean"`
	Notes               string   `json:"notes"`
	Images              []string `json:"images" validate:"min=1,max=5"`
}
