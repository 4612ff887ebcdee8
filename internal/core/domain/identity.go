package domain

// Credential is the opaque bearer string handed out at login or registration.
// The shell never parses it.
type Credential string

// AdminProfile holds the fields specific to ministry administrators.
type AdminProfile struct {
	MinistryID       string `json:"ministry_id,omitempty" bson:"ministry_id,omitempty"`
	Designation      string `json:"designation,omitempty" bson:"designation,omitempty"`
	JurisdictionArea string `json:"jurisdiction_area,omitempty" bson:"jurisdiction_area,omitempty"`
}

// VetProfile holds the fields specific to veterinarians.
type VetProfile struct {
	LicenseNumber  string `json:"license_number,omitempty" bson:"license_number,omitempty"`
	Specialization string `json:"specialization,omitempty" bson:"specialization,omitempty"`
	PracticeArea   string `json:"practice_area,omitempty" bson:"practice_area,omitempty"`
}

// FarmerProfile holds the fields specific to farmers.
type FarmerProfile struct {
	FarmName      string `json:"farm_name,omitempty" bson:"farm_name,omitempty"`
	FarmSize      string `json:"farm_size,omitempty" bson:"farm_size,omitempty"`
	LivestockType string `json:"livestock_type,omitempty" bson:"livestock_type,omitempty"`
	Location      string `json:"location,omitempty" bson:"location,omitempty"`
}

// Identity is the decoded principal behind a credential. Only the profile
// matching Role is populated; the role does not change for the lifetime of
// a session.
type Identity struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	MobileNumber string `json:"mobile_number"`
	Role         Role   `json:"role"`

	*AdminProfile
	*VetProfile
	*FarmerProfile
}

// WithProfile returns a copy of id that keeps only the profile belonging to
// its role.
func (id Identity) WithProfile(admin *AdminProfile, vet *VetProfile, farmer *FarmerProfile) Identity {
	id.AdminProfile, id.VetProfile, id.FarmerProfile = nil, nil, nil
	switch id.Role {
	case RoleAdmin:
		id.AdminProfile = admin
	case RoleVet:
		id.VetProfile = vet
	case RoleFarmer:
		id.FarmerProfile = farmer
	}
	return id
}
