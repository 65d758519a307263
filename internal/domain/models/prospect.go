// internal/domain/models/prospect.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prospect is a newsletter sign-up.
type Prospect struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`

	FirstName   string `bson:"first_name" json:"first_name"`
	LastName    string `bson:"last_name" json:"last_name"`
	Email       string `bson:"email" json:"email"`
	EmailCI     string `bson:"email_ci" json:"-"` // folded for uniqueness
	CompanyName string `bson:"company_name,omitempty" json:"company_name,omitempty"`

	CountryCode string `bson:"country_code" json:"country_code"`
	RoleCode    string `bson:"role_code" json:"role_code"`

	SignedUpAt time.Time `bson:"signed_up_at" json:"signed_up_at"`
}
