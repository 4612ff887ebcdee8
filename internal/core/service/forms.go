package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

var validate = validator.New()

type loginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type commonRegistration struct {
	Email        string `validate:"required"`
	Password     string `validate:"required"`
	FullName     string `validate:"required"`
	MobileNumber string `validate:"required"`
}

type adminRegistration struct {
	MinistryID       string `validate:"required"`
	Designation      string `validate:"required"`
	JurisdictionArea string `validate:"required"`
}

type vetRegistration struct {
	LicenseNumber  string `validate:"required"`
	Specialization string `validate:"required"`
	PracticeArea   string `validate:"required"`
}

type farmerRegistration struct {
	FarmName      string `validate:"required"`
	FarmSize      string `validate:"required"`
	LivestockType string `validate:"required"`
	Location      string `validate:"required"`
}

// checkLogin validates the sign-in form.
func checkLogin(in ports.LoginInput) error {
	if validate.Struct(loginForm{Email: strings.TrimSpace(in.Email), Password: in.Password}) != nil {
		return domain.NewValidationError("Please enter email and password")
	}
	return nil
}

// checkRegistration validates the registration form and returns the parsed
// role. Messages are shown to the user verbatim.
func checkRegistration(in ports.RegisterInput) (domain.Role, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return "", domain.NewValidationError("Please select a valid role")
	}

	common := commonRegistration{
		Email:        strings.TrimSpace(in.Email),
		Password:     in.Password,
		FullName:     strings.TrimSpace(in.FullName),
		MobileNumber: strings.TrimSpace(in.MobileNumber),
	}
	if validate.Struct(common) != nil {
		return "", domain.NewValidationError("Please fill in all required fields")
	}
	if validate.Var(common.Email, "email") != nil {
		return "", domain.NewValidationError("Please enter a valid email address")
	}

	switch role {
	case domain.RoleAdmin:
		f := adminRegistration{
			MinistryID:       strings.TrimSpace(in.MinistryID),
			Designation:      strings.TrimSpace(in.Designation),
			JurisdictionArea: strings.TrimSpace(in.JurisdictionArea),
		}
		if validate.Struct(f) != nil {
			return "", domain.NewValidationError("Please fill in all admin fields")
		}
	case domain.RoleVet:
		f := vetRegistration{
			LicenseNumber:  strings.TrimSpace(in.LicenseNumber),
			Specialization: strings.TrimSpace(in.Specialization),
			PracticeArea:   strings.TrimSpace(in.PracticeArea),
		}
		if validate.Struct(f) != nil {
			return "", domain.NewValidationError("Please fill in all veterinarian fields")
		}
	case domain.RoleFarmer:
		f := farmerRegistration{
			FarmName:      strings.TrimSpace(in.FarmName),
			FarmSize:      strings.TrimSpace(in.FarmSize),
			LivestockType: strings.TrimSpace(in.LivestockType),
			Location:      strings.TrimSpace(in.Location),
		}
		if validate.Struct(f) != nil {
			return "", domain.NewValidationError("Please fill in all farmer fields")
		}
	}
	return role, nil
}

// profiles builds the role-specific profile records from the form.
func profiles(in ports.RegisterInput) (*domain.AdminProfile, *domain.VetProfile, *domain.FarmerProfile) {
	return &domain.AdminProfile{
			MinistryID:       strings.TrimSpace(in.MinistryID),
			Designation:      strings.TrimSpace(in.Designation),
			JurisdictionArea: strings.TrimSpace(in.JurisdictionArea),
		}, &domain.VetProfile{
			LicenseNumber:  strings.TrimSpace(in.LicenseNumber),
			Specialization: strings.TrimSpace(in.Specialization),
			PracticeArea:   strings.TrimSpace(in.PracticeArea),
		}, &domain.FarmerProfile{
			FarmName:      strings.TrimSpace(in.FarmName),
			FarmSize:      strings.TrimSpace(in.FarmSize),
			LivestockType: strings.TrimSpace(in.LivestockType),
			Location:      strings.TrimSpace(in.Location),
		}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
