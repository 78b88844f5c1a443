package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/marketplace"
	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/repository"
)

// ProfileHandler lets runners view and complete the personal details
// required before they may buy a bib. Each response reports which
// required fields are still missing so the UI can guide completion.
type ProfileHandler struct {
	Users *repository.UserRepo
}

func NewProfileHandler(u *repository.UserRepo) *ProfileHandler {
	return &ProfileHandler{Users: u}
}

type profileView struct {
	ID                    uint64   `json:"id"`
	Email                 string   `json:"email"`
	Role                  string   `json:"role"`
	FirstName             string   `json:"first_name,omitempty"`
	LastName              string   `json:"last_name,omitempty"`
	BirthDate             string   `json:"birth_date,omitempty"` // YYYY-MM-DD
	Phone                 string   `json:"phone,omitempty"`
	EmergencyContactName  string   `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string   `json:"emergency_contact_phone,omitempty"`
	Address               string   `json:"address,omitempty"`
	PostalCode            string   `json:"postal_code,omitempty"`
	City                  string   `json:"city,omitempty"`
	Country               string   `json:"country,omitempty"`
	Complete              bool     `json:"complete"`
	MissingFields         []string `json:"missing_fields,omitempty"`
}

type updateProfileReq struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	BirthDate             string `json:"birth_date"` // YYYY-MM-DD
	Phone                 string `json:"phone"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	Address               string `json:"address"`
	PostalCode            string `json:"postal_code"`
	City                  string `json:"city"`
	Country               string `json:"country"`
}

func toProfileView(u model.User) profileView {
	v := profileView{
		ID:                    u.ID,
		Email:                 u.Email,
		Role:                  u.Role,
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		Phone:                 u.Phone,
		EmergencyContactName:  u.EmergencyContactName,
		EmergencyContactPhone: u.EmergencyContactPhone,
		Address:               u.Address,
		PostalCode:            u.PostalCode,
		City:                  u.City,
		Country:               u.Country,
	}
	if u.BirthDate != nil {
		v.BirthDate = u.BirthDate.Format("2006-01-02")
	}
	v.MissingFields = marketplace.MissingProfileFields(u)
	v.Complete = len(v.MissingFields) == 0
	return v
}

// GetProfile returns the caller's profile plus completeness status.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileView(u))
}

// UpdateProfile overwrites the profile fields. The body is a full
// replacement: sending an empty field clears it, which also makes the
// profile incomplete again for purchases.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return domainError(c, err)
	}

	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.Phone = req.Phone
	u.EmergencyContactName = req.EmergencyContactName
	u.EmergencyContactPhone = req.EmergencyContactPhone
	u.Address = req.Address
	u.PostalCode = req.PostalCode
	u.City = req.City
	u.Country = req.Country
	u.BirthDate = nil
	if req.BirthDate != "" {
		d, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "birth_date must be YYYY-MM-DD"})
		}
		u.BirthDate = &d
	}

	if err := h.Users.UpdateProfile(ctx, u); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileView(u))
}
