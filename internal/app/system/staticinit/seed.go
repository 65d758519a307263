package staticinit

import "github.com/dalemusser/signup/internal/domain/models"

// DefaultCountries is the country list seeded into an empty database.
func DefaultCountries() []models.Country {
	return []models.Country{
		{Code: models.NotTellingCode, Name: models.NotTellingName},
		{Code: "AU", Name: "Australia"},
		{Code: "BR", Name: "Brazil"},
		{Code: "CA", Name: "Canada"},
		{Code: "CN", Name: "China"},
		{Code: "DK", Name: "Denmark"},
		{Code: "FR", Name: "France"},
		{Code: "DE", Name: "Germany"},
		{Code: "IN", Name: "India"},
		{Code: "IE", Name: "Ireland"},
		{Code: "IT", Name: "Italy"},
		{Code: "JP", Name: "Japan"},
		{Code: "MX", Name: "Mexico"},
		{Code: "NL", Name: "Netherlands"},
		{Code: "NZ", Name: "New Zealand"},
		{Code: "NO", Name: "Norway"},
		{Code: "ES", Name: "Spain"},
		{Code: "SE", Name: "Sweden"},
		{Code: "CH", Name: "Switzerland"},
		{Code: "GB", Name: "United Kingdom"},
		{Code: "US", Name: "United States"},
	}
}

// DefaultRoles is the role list seeded into an empty database.
func DefaultRoles() []models.Role {
	return []models.Role{
		{Code: models.NotTellingCode, Name: models.NotTellingName},
		{Code: "ARCH", Name: "Architect"},
		{Code: "DEV", Name: "Developer"},
		{Code: "DEVOPS", Name: "DevOps"},
		{Code: "ITM", Name: "IT Manager"},
		{Code: "OPS", Name: "Operations"},
		{Code: "TEST", Name: "Tester"},
		{Code: "OTH", Name: "Other"},
	}
}
