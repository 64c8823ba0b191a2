package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rent represents a bike rented by a user. It stays open until End is set.
type Rent struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Bike   *Bike              `bson:"bike" json:"bike"`
	User   *User              `bson:"user" json:"user"`
	Start  time.Time          `bson:"start" json:"start"`
	End    *time.Time         `bson:"end,omitempty" json:"end,omitempty"`
	Amount float64            `bson:"amount" json:"amount"`
}

// NewRent opens a rent of bike by user starting at start.
func NewRent(bike *Bike, user *User, start time.Time) *Rent {
	return &Rent{
		ID:    primitive.NewObjectID(),
		Bike:  bike,
		User:  user,
		Start: start,
	}
}

// Open reports whether the bike has not been returned yet.
func (r *Rent) Open() bool {
	return r.End == nil
}

// Duration returns the elapsed rent time, measured up to now while the rent is open.
func (r *Rent) Duration(now time.Time) time.Duration {
	if r.End != nil {
		return r.End.Sub(r.Start)
	}
	return now.Sub(r.Start)
}
