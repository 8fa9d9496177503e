package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "adopsi/pkg/domain"
	dErrors "adopsi/pkg/domain-errors"
)

// Optional distinguishes "field not provided" from "field explicitly set to
// null" in a sparse patch. Nullable spouse fields may be cleared as a group;
// a plain pointer cannot express that.
type Optional[T any] struct {
	Set   bool
	Valid bool // false with Set means an explicit null
	Value T
}

// Some returns an Optional carrying a value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns an Optional that explicitly clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON is only invoked for keys present in the payload, which is
// exactly the presence signal Optional needs.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// CreateRequest carries the profile fields for a new application.
type CreateRequest struct {
	FullName      string
	DateOfBirth   time.Time
	PlaceOfBirth  string
	Address       string
	Phone         string
	Occupation    string
	MonthlyIncome decimal.Decimal

	SpouseName       *string
	SpouseOccupation *string
	SpouseIncome     *decimal.Decimal

	NumberOfChildren  int
	ReasonForAdoption string

	PreferredChildAgeMin int
	PreferredChildAgeMax int
	PreferredChildGender GenderPreference
}

// Normalize trims whitespace on free-text fields.
func (r *CreateRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.PlaceOfBirth = strings.TrimSpace(r.PlaceOfBirth)
	r.Address = strings.TrimSpace(r.Address)
	r.Occupation = strings.TrimSpace(r.Occupation)
	r.ReasonForAdoption = strings.TrimSpace(r.ReasonForAdoption)
}

// Validate enforces the field constraints applied at creation.
func (r *CreateRequest) Validate() error {
	if len(r.FullName) < 2 {
		return dErrors.New(dErrors.CodeValidation, "full name must be at least 2 characters")
	}
	if r.DateOfBirth.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "date of birth is required")
	}
	if len(r.PlaceOfBirth) < 2 {
		return dErrors.New(dErrors.CodeValidation, "place of birth must be at least 2 characters")
	}
	if len(r.Address) < 10 {
		return dErrors.New(dErrors.CodeValidation, "address must be at least 10 characters")
	}
	if r.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	if len(r.Occupation) < 2 {
		return dErrors.New(dErrors.CodeValidation, "occupation must be at least 2 characters")
	}
	if !r.MonthlyIncome.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "monthly income must be positive")
	}
	if r.SpouseIncome != nil && !r.SpouseIncome.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "spouse income must be positive")
	}
	if r.NumberOfChildren < 0 {
		return dErrors.New(dErrors.CodeValidation, "number of children cannot be negative")
	}
	if len(r.ReasonForAdoption) < 50 {
		return dErrors.New(dErrors.CodeValidation, "reason for adoption must be at least 50 characters")
	}
	if err := validateAgeRange(r.PreferredChildAgeMin, r.PreferredChildAgeMax); err != nil {
		return err
	}
	if !r.PreferredChildGender.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid child gender preference")
	}
	return nil
}

// Patch is the sparse update applied while an application is still editable.
// A nil pointer means "leave unchanged"; spouse fields use Optional so an
// explicit null clears them.
type Patch struct {
	FullName      *string
	DateOfBirth   *time.Time
	PlaceOfBirth  *string
	Address       *string
	Phone         *string
	Occupation    *string
	MonthlyIncome *decimal.Decimal

	SpouseName       Optional[string]
	SpouseOccupation Optional[string]
	SpouseIncome     Optional[decimal.Decimal]

	NumberOfChildren  *int
	ReasonForAdoption *string

	PreferredChildAgeMin *int
	PreferredChildAgeMax *int
	PreferredChildGender *GenderPreference
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	return p.FullName == nil && p.DateOfBirth == nil && p.PlaceOfBirth == nil &&
		p.Address == nil && p.Phone == nil && p.Occupation == nil &&
		p.MonthlyIncome == nil && !p.SpouseName.Set && !p.SpouseOccupation.Set &&
		!p.SpouseIncome.Set && p.NumberOfChildren == nil && p.ReasonForAdoption == nil &&
		p.PreferredChildAgeMin == nil && p.PreferredChildAgeMax == nil &&
		p.PreferredChildGender == nil
}

// Apply overwrites only the provided fields on a copy of app and returns it.
// Field constraints are re-validated against the patched result, so the
// age-range invariant holds across partial updates that touch either bound.
func (p *Patch) Apply(app *Application) (*Application, error) {
	patched := *app

	if p.FullName != nil {
		v := strings.TrimSpace(*p.FullName)
		if len(v) < 2 {
			return nil, dErrors.New(dErrors.CodeValidation, "full name must be at least 2 characters")
		}
		patched.FullName = v
	}
	if p.DateOfBirth != nil {
		patched.DateOfBirth = *p.DateOfBirth
	}
	if p.PlaceOfBirth != nil {
		v := strings.TrimSpace(*p.PlaceOfBirth)
		if len(v) < 2 {
			return nil, dErrors.New(dErrors.CodeValidation, "place of birth must be at least 2 characters")
		}
		patched.PlaceOfBirth = v
	}
	if p.Address != nil {
		v := strings.TrimSpace(*p.Address)
		if len(v) < 10 {
			return nil, dErrors.New(dErrors.CodeValidation, "address must be at least 10 characters")
		}
		patched.Address = v
	}
	if p.Phone != nil {
		if *p.Phone == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "phone cannot be empty")
		}
		patched.Phone = *p.Phone
	}
	if p.Occupation != nil {
		v := strings.TrimSpace(*p.Occupation)
		if len(v) < 2 {
			return nil, dErrors.New(dErrors.CodeValidation, "occupation must be at least 2 characters")
		}
		patched.Occupation = v
	}
	if p.MonthlyIncome != nil {
		if !p.MonthlyIncome.IsPositive() {
			return nil, dErrors.New(dErrors.CodeValidation, "monthly income must be positive")
		}
		patched.MonthlyIncome = *p.MonthlyIncome
	}

	if p.SpouseName.Set {
		if p.SpouseName.Valid {
			v := p.SpouseName.Value
			patched.SpouseName = &v
		} else {
			patched.SpouseName = nil
		}
	}
	if p.SpouseOccupation.Set {
		if p.SpouseOccupation.Valid {
			v := p.SpouseOccupation.Value
			patched.SpouseOccupation = &v
		} else {
			patched.SpouseOccupation = nil
		}
	}
	if p.SpouseIncome.Set {
		if p.SpouseIncome.Valid {
			if !p.SpouseIncome.Value.IsPositive() {
				return nil, dErrors.New(dErrors.CodeValidation, "spouse income must be positive")
			}
			v := p.SpouseIncome.Value
			patched.SpouseIncome = &v
		} else {
			patched.SpouseIncome = nil
		}
	}

	if p.NumberOfChildren != nil {
		if *p.NumberOfChildren < 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "number of children cannot be negative")
		}
		patched.NumberOfChildren = *p.NumberOfChildren
	}
	if p.ReasonForAdoption != nil {
		v := strings.TrimSpace(*p.ReasonForAdoption)
		if len(v) < 50 {
			return nil, dErrors.New(dErrors.CodeValidation, "reason for adoption must be at least 50 characters")
		}
		patched.ReasonForAdoption = v
	}
	if p.PreferredChildAgeMin != nil {
		patched.PreferredChildAgeMin = *p.PreferredChildAgeMin
	}
	if p.PreferredChildAgeMax != nil {
		patched.PreferredChildAgeMax = *p.PreferredChildAgeMax
	}
	if err := validateAgeRange(patched.PreferredChildAgeMin, patched.PreferredChildAgeMax); err != nil {
		return nil, err
	}
	if p.PreferredChildGender != nil {
		if !p.PreferredChildGender.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid child gender preference")
		}
		patched.PreferredChildGender = *p.PreferredChildGender
	}

	return &patched, nil
}

func validateAgeRange(ageMin, ageMax int) error {
	if ageMin < 0 || ageMax < 0 {
		return dErrors.New(dErrors.CodeValidation, "preferred child ages cannot be negative")
	}
	if ageMin > ageMax {
		return dErrors.New(dErrors.CodeValidation, "preferred child age minimum cannot exceed the maximum")
	}
	return nil
}

// ReviewRequest is a caseworker decision on an application.
type ReviewRequest struct {
	ApplicationID id.ApplicationID
	TargetStatus  Status
	AdminNotes    *string
}

// Validate enforces that the decision targets one of the review statuses.
func (r *ReviewRequest) Validate() error {
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "application id is required")
	}
	if !r.TargetStatus.IsReviewTarget() {
		return dErrors.New(dErrors.CodeValidation, "review status must be under_review, approved, or rejected")
	}
	return nil
}

// ListQuery filters and paginates the application list.
type ListQuery struct {
	Status  *Status
	OwnerID *id.UserID
	Limit   int
	Offset  int
}

// Normalize clamps pagination to the supported window.
func (q *ListQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}
