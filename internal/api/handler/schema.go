package handler

import (
	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/navigation"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) toInput() ports.LoginInput {
	return ports.LoginInput{Email: r.Email, Password: r.Password}
}

// registerRequest is the role-tagged registration form. Only the fields of
// the selected role are required.
type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
	MobileNumber string `json:"mobile_number"`
	Role         string `json:"role" example:"farmer"`

	MinistryID       string `json:"ministry_id,omitempty"`
	Designation      string `json:"designation,omitempty"`
	JurisdictionArea string `json:"jurisdiction_area,omitempty"`

	LicenseNumber  string `json:"license_number,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	PracticeArea   string `json:"practice_area,omitempty"`

	FarmName      string `json:"farm_name,omitempty"`
	FarmSize      string `json:"farm_size,omitempty"`
	LivestockType string `json:"livestock_type,omitempty"`
	Location      string `json:"location,omitempty"`
}

func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		Email:            r.Email,
		Password:         r.Password,
		FullName:         r.FullName,
		MobileNumber:     r.MobileNumber,
		Role:             r.Role,
		MinistryID:       r.MinistryID,
		Designation:      r.Designation,
		JurisdictionArea: r.JurisdictionArea,
		LicenseNumber:    r.LicenseNumber,
		Specialization:   r.Specialization,
		PracticeArea:     r.PracticeArea,
		FarmName:         r.FarmName,
		FarmSize:         r.FarmSize,
		LivestockType:    r.LivestockType,
		Location:         r.Location,
	}
}

type authResponse struct {
	Token string           `json:"token,omitempty"`
	User  *domain.Identity `json:"user,omitempty"`
}

type listAccountsRequest struct {
	Role string `query:"role" validate:"omitempty,oneof=admin vet farmer"`
}

type listAccountsResponse struct {
	Accounts []domain.Identity `json:"accounts"`
}

type screenRequest struct {
	Path string `query:"path" validate:"required,startswith=/"`
}

// viewResponse describes what the browser should render. Only state and
// screen are set while signed out.
type viewResponse struct {
	State      string             `json:"state" example:"authenticated"`
	Screen     string             `json:"screen" example:"vet_dashboard"`
	User       *domain.Identity   `json:"user,omitempty"`
	Role       domain.Role        `json:"role,omitempty" example:"vet"`
	RoleLabel  string             `json:"role_label,omitempty" example:"Veterinarian"`
	Navigation []navigation.Entry `json:"navigation,omitempty"`
	Settings   *navigation.Entry  `json:"settings,omitempty"`
}

type screenResponse struct {
	Role  domain.Role      `json:"role"`
	Entry navigation.Entry `json:"entry"`
}
