package models

import "github.com/google/uuid"

// Bike represents a bike offered for rent.
type Bike struct {
	ID           string   `bson:"_id" json:"id"`
	SerialNumber string   `bson:"serial_number,omitempty" json:"serial_number,omitempty"`
	Name         string   `bson:"name" json:"name"`
	Type         string   `bson:"type" json:"type"` // "mountain bike", "road bike", ...
	BodySize     int      `bson:"body_size" json:"body_size"`
	MaxLoad      int      `bson:"max_load" json:"max_load"` // in kilograms
	Rate         float64  `bson:"rate" json:"rate"`         // per hour
	Description  string   `bson:"description" json:"description"`
	Ratings      int      `bson:"ratings" json:"ratings"`
	ImageURLs    []string `bson:"image_urls" json:"image_urls"`
	Parts        []string `bson:"parts,omitempty" json:"parts,omitempty"` // assembly descriptors
	Available    bool     `bson:"available" json:"available"`
	Location     Location `bson:"location" json:"location"`
}

// NewBike creates an available bike with a freshly generated ID.
func NewBike(name, bikeType string, bodySize, maxLoad int, rate float64,
	description string, ratings int, imageURLs []string) *Bike {
	return &Bike{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        bikeType,
		BodySize:    bodySize,
		MaxLoad:     maxLoad,
		Rate:        rate,
		Description: description,
		Ratings:     ratings,
		ImageURLs:   imageURLs,
		Available:   true,
	}
}
