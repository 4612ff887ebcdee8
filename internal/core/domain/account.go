package domain

import "time"

// Account is a registered portal user as persisted by the accounts backend.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	MobileNumber string
	Role         Role
	Admin        *AdminProfile
	Vet          *VetProfile
	Farmer       *FarmerProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity projects the account onto the identity record handed to clients.
func (a *Account) Identity() Identity {
	return Identity{
		ID:           a.ID,
		Email:        a.Email,
		FullName:     a.FullName,
		MobileNumber: a.MobileNumber,
		Role:         a.Role,
	}.WithProfile(a.Admin, a.Vet, a.Farmer)
}
