package models

import "strings"

// VehicleMakes are the makes offered during onboarding. Other makes are
// accepted as typed.
var VehicleMakes = []string{
	"Acura", "Audi", "BMW", "Buick", "Cadillac", "Chevrolet", "Chrysler",
	"Dodge", "Ford", "Genesis", "GMC", "Honda", "Hyundai", "Infiniti",
	"Jaguar", "Jeep", "Kia", "Land Rover", "Lexus", "Lincoln", "Mazda",
	"Mercedes-Benz", "Nissan", "Porsche", "Ram", "Subaru", "Tesla", "Toyota",
	"Volkswagen", "Volvo",
}

// Year range offered during onboarding, newest first.
const (
	SuggestedYearFrom = 2015
	SuggestedYearTo   = MaxPreferenceYear
)

// CanonicalMake returns the listed spelling of s when it names one of
// VehicleMakes regardless of case, and the trimmed input otherwise.
func CanonicalMake(s string) string {
	s = strings.TrimSpace(s)
	for _, m := range VehicleMakes {
		if strings.EqualFold(m, s) {
			return m
		}
	}
	return s
}
