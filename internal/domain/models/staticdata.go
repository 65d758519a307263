// internal/domain/models/staticdata.go
package models

// NotTellingCode is the code of the placeholder entry present in every
// reference list so a visitor can decline to answer.
const NotTellingCode = "-"

// NotTellingName is the label shown for NotTellingCode.
const NotTellingName = "--Not telling--"

// Country is a row of static reference data shown in the sign-up form.
type Country struct {
	Code string `bson:"code" json:"code"`
	Name string `bson:"name" json:"name"`
}

// Role is a job role a prospect can pick on the sign-up form.
type Role struct {
	Code string `bson:"code" json:"code"`
	Name string `bson:"name" json:"name"`
}
