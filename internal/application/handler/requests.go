package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"adopsi/internal/application/models"
)

// CreateApplicationRequest is the HTTP request for POST /applications.
type CreateApplicationRequest struct {
	FullName      string          `json:"full_name"`
	DateOfBirth   time.Time       `json:"date_of_birth"`
	PlaceOfBirth  string          `json:"place_of_birth"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	Occupation    string          `json:"occupation"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`

	SpouseName       *string          `json:"spouse_name,omitempty"`
	SpouseOccupation *string          `json:"spouse_occupation,omitempty"`
	SpouseIncome     *decimal.Decimal `json:"spouse_income,omitempty"`

	NumberOfChildren  int    `json:"number_of_children"`
	ReasonForAdoption string `json:"reason_for_adoption"`

	PreferredChildAgeMin int    `json:"preferred_child_age_min"`
	PreferredChildAgeMax int    `json:"preferred_child_age_max"`
	PreferredChildGender string `json:"preferred_child_gender"`
}

// ToDomain converts the HTTP request to the domain create request. Field
// validation happens in the service.
func (r *CreateApplicationRequest) ToDomain() models.CreateRequest {
	return models.CreateRequest{
		FullName:      r.FullName,
		DateOfBirth:   r.DateOfBirth,
		PlaceOfBirth:  r.PlaceOfBirth,
		Address:       r.Address,
		Phone:         r.Phone,
		Occupation:    r.Occupation,
		MonthlyIncome: r.MonthlyIncome,

		SpouseName:       r.SpouseName,
		SpouseOccupation: r.SpouseOccupation,
		SpouseIncome:     r.SpouseIncome,

		NumberOfChildren:  r.NumberOfChildren,
		ReasonForAdoption: r.ReasonForAdoption,

		PreferredChildAgeMin: r.PreferredChildAgeMin,
		PreferredChildAgeMax: r.PreferredChildAgeMax,
		PreferredChildGender: models.GenderPreference(r.PreferredChildGender),
	}
}

// UpdateApplicationRequest is the sparse HTTP request for PATCH
// /applications/{id}. Absent keys leave fields unchanged; a literal null on
// a spouse field clears it.
type UpdateApplicationRequest struct {
	FullName      *string          `json:"full_name"`
	DateOfBirth   *time.Time       `json:"date_of_birth"`
	PlaceOfBirth  *string          `json:"place_of_birth"`
	Address       *string          `json:"address"`
	Phone         *string          `json:"phone"`
	Occupation    *string          `json:"occupation"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income"`

	SpouseName       models.Optional[string]          `json:"spouse_name"`
	SpouseOccupation models.Optional[string]          `json:"spouse_occupation"`
	SpouseIncome     models.Optional[decimal.Decimal] `json:"spouse_income"`

	NumberOfChildren  *int    `json:"number_of_children"`
	ReasonForAdoption *string `json:"reason_for_adoption"`

	PreferredChildAgeMin *int    `json:"preferred_child_age_min"`
	PreferredChildAgeMax *int    `json:"preferred_child_age_max"`
	PreferredChildGender *string `json:"preferred_child_gender"`
}

// ToDomain converts the HTTP request to a domain patch.
func (r *UpdateApplicationRequest) ToDomain() models.Patch {
	patch := models.Patch{
		FullName:      r.FullName,
		DateOfBirth:   r.DateOfBirth,
		PlaceOfBirth:  r.PlaceOfBirth,
		Address:       r.Address,
		Phone:         r.Phone,
		Occupation:    r.Occupation,
		MonthlyIncome: r.MonthlyIncome,

		SpouseName:       r.SpouseName,
		SpouseOccupation: r.SpouseOccupation,
		SpouseIncome:     r.SpouseIncome,

		NumberOfChildren:     r.NumberOfChildren,
		ReasonForAdoption:    r.ReasonForAdoption,
		PreferredChildAgeMin: r.PreferredChildAgeMin,
		PreferredChildAgeMax: r.PreferredChildAgeMax,
	}
	if r.PreferredChildGender != nil {
		gender := models.GenderPreference(*r.PreferredChildGender)
		patch.PreferredChildGender = &gender
	}
	return patch
}

// ReviewApplicationRequest is the HTTP request for POST
// /applications/{id}/review.
type ReviewApplicationRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// listQueryFromURL builds a ListQuery from the request's query string.
// Unparseable numbers fall back to the defaults applied by Normalize.
func listQueryFromURL(r *http.Request) (models.ListQuery, error) {
	var q models.ListQuery
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return q, err
		}
		q.Status = &status
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.Offset = n
		}
	}
	return q, nil
}
