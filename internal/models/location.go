package models

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Latitude  float64 `bson:"lat" json:"lat"`
	Longitude float64 `bson:"lon" json:"lon"`
}

// NewLocation returns the Location at the given coordinates.
func NewLocation(latitude, longitude float64) Location {
	return Location{Latitude: latitude, Longitude: longitude}
}
