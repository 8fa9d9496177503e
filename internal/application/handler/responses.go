package handler

import (
	"time"

	"adopsi/internal/application/models"
	"adopsi/internal/history"
)

// ApplicationResponse is the HTTP view of an application.
type ApplicationResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Status string `json:"status"`

	FullName      string    `json:"full_name"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	PlaceOfBirth  string    `json:"place_of_birth"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	Occupation    string    `json:"occupation"`
	MonthlyIncome string    `json:"monthly_income"`

	SpouseName       *string `json:"spouse_name,omitempty"`
	SpouseOccupation *string `json:"spouse_occupation,omitempty"`
	SpouseIncome     *string `json:"spouse_income,omitempty"`

	NumberOfChildren  int    `json:"number_of_children"`
	ReasonForAdoption string `json:"reason_for_adoption"`

	PreferredChildAgeMin int    `json:"preferred_child_age_min"`
	PreferredChildAgeMax int    `json:"preferred_child_age_max"`
	PreferredChildGender string `json:"preferred_child_gender"`

	AdminNotes *string    `json:"admin_notes,omitempty"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResponse is one page of applications with the unpaginated total.
type ListResponse struct {
	Items []*ApplicationResponse `json:"items"`
	Total int                    `json:"total"`
}

// HistoryEntryResponse is one status ledger entry.
type HistoryEntryResponse struct {
	ID        int64     `json:"id"`
	OldStatus *string   `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromApplication converts a domain application to its HTTP representation.
func FromApplication(app *models.Application) *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:     app.ID.String(),
		UserID: app.UserID.String(),
		Status: app.Status.String(),

		FullName:      app.FullName,
		DateOfBirth:   app.DateOfBirth,
		PlaceOfBirth:  app.PlaceOfBirth,
		Address:       app.Address,
		Phone:         app.Phone,
		Occupation:    app.Occupation,
		MonthlyIncome: app.MonthlyIncome.String(),

		SpouseName:       app.SpouseName,
		SpouseOccupation: app.SpouseOccupation,

		NumberOfChildren:  app.NumberOfChildren,
		ReasonForAdoption: app.ReasonForAdoption,

		PreferredChildAgeMin: app.PreferredChildAgeMin,
		PreferredChildAgeMax: app.PreferredChildAgeMax,
		PreferredChildGender: app.PreferredChildGender.String(),

		AdminNotes: app.AdminNotes,
		CreatedAt:  app.CreatedAt,
		UpdatedAt:  app.UpdatedAt,
	}
	if app.SpouseIncome != nil {
		income := app.SpouseIncome.String()
		resp.SpouseIncome = &income
	}
	if app.Review != nil {
		by := app.Review.By.String()
		at := app.Review.At
		resp.ReviewedBy = &by
		resp.ReviewedAt = &at
	}
	return resp
}

// FromPage converts a domain page to its HTTP representation.
func FromPage(page *models.Page) *ListResponse {
	items := make([]*ApplicationResponse, 0, len(page.Items))
	for _, app := range page.Items {
		items = append(items, FromApplication(app))
	}
	return &ListResponse{Items: items, Total: page.Total}
}

// FromHistory converts ledger entries to their HTTP representation.
func FromHistory(entries []*history.Entry) []*HistoryEntryResponse {
	out := make([]*HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := &HistoryEntryResponse{
			ID:        e.ID,
			NewStatus: e.NewStatus.String(),
			ChangedBy: e.ChangedBy.String(),
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt,
		}
		if e.OldStatus != nil {
			old := e.OldStatus.String()
			resp.OldStatus = &old
		}
		out = append(out, resp)
	}
	return out
}
