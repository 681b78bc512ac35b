package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User mirrors an externally authenticated identity into the local store.
// ExternalAuthID is the identity provider's id and is unique; a second sync
// for the same identity returns the existing record untouched.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExternalAuthID string             `bson:"external_auth_id" json:"externalAuthId"`
	Email          string             `bson:"email" json:"email"`
	Username       string             `bson:"username" json:"username"`
	FirstName      string             `bson:"first_name" json:"firstName"`
	LastName       string             `bson:"last_name" json:"lastName"`
	Photo          string             `bson:"photo" json:"photo"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}
