package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 24-character hex identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a 24-character hex identifier.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
