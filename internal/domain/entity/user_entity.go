package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in Password and are never
// serialized; avatarUrl is a pointer so an absent avatar renders as null.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	AvatarURL *string            `bson:"avatarUrl" json:"avatarUrl"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
