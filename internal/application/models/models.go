package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "adopsi/pkg/domain"
)

// GenderPreference is the applicant's preference for the child's gender.
type GenderPreference string

const (
	GenderMale         GenderPreference = "male"
	GenderFemale       GenderPreference = "female"
	GenderNoPreference GenderPreference = "no_preference"
)

var validGenderPreferences = map[GenderPreference]bool{
	GenderMale:         true,
	GenderFemale:       true,
	GenderNoPreference: true,
}

func (g GenderPreference) IsValid() bool {
	return validGenderPreferences[g]
}

func (g GenderPreference) String() string {
	return string(g)
}

// ReviewStamp records who decided and when. Modeling the pair as one optional
// composite makes the both-or-neither invariant structural: an Application
// either has a stamp or it does not.
type ReviewStamp struct {
	By id.UserID
	At time.Time
}

// Application is the central aggregate: one applicant's adoption request,
// its profile data, and the caseworker's decision state.
//
// Monetary fields use decimal values so incomes round-trip through storage
// without floating-point drift.
type Application struct {
	ID     id.ApplicationID
	UserID id.UserID
	Status Status

	FullName      string
	DateOfBirth   time.Time
	PlaceOfBirth  string
	Address       string
	Phone         string
	Occupation    string
	MonthlyIncome decimal.Decimal

	// Spouse fields are nullable as a group.
	SpouseName       *string
	SpouseOccupation *string
	SpouseIncome     *decimal.Decimal

	NumberOfChildren  int
	ReasonForAdoption string

	PreferredChildAgeMin int
	PreferredChildAgeMax int
	PreferredChildGender GenderPreference

	AdminNotes *string
	Review     *ReviewStamp

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Page is one page of applications plus the unpaginated total.
type Page struct {
	Items []*Application
	Total int
}
