package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]struct {
		role Role
		ok   bool
	}{
		"admin":    {RoleAdmin, true},
		" Vet ":    {RoleVet, true},
		"FARMER":   {RoleFarmer, true},
		"":         {"", false},
		"minister": {"", false},
	}
	for in, want := range cases {
		got, ok := ParseRole(in)
		if got != want.role || ok != want.ok {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q, %v", in, got, ok, want.role, want.ok)
		}
	}
}

func TestRole_EffectiveDefaultsToFarmer(t *testing.T) {
	if Role("inspector").Effective() != RoleFarmer {
		t.Fatalf("unknown role should fall back to farmer")
	}
	if Role("").Effective() != RoleFarmer {
		t.Fatalf("empty role should fall back to farmer")
	}
	if RoleVet.Effective() != RoleVet {
		t.Fatalf("known role must be kept")
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleAdmin.DisplayName() != "Ministry Admin" {
		t.Fatalf("unexpected admin label %q", RoleAdmin.DisplayName())
	}
	if Role("x").DisplayName() != "User" {
		t.Fatalf("unexpected fallback label %q", Role("x").DisplayName())
	}
}

func TestAccount_IdentityKeepsOnlyRoleProfile(t *testing.T) {
	acc := &Account{
		ID:     "a1",
		Email:  "vet@example.com",
		Role:   RoleVet,
		Vet:    &VetProfile{LicenseNumber: "LIC-1"},
		Farmer: &FarmerProfile{FarmName: "stale"},
	}

	id := acc.Identity()
	if id.VetProfile == nil || id.LicenseNumber != "LIC-1" {
		t.Fatalf("vet profile missing: %+v", id)
	}
	if id.FarmerProfile != nil || id.AdminProfile != nil {
		t.Fatalf("foreign profiles must be dropped: %+v", id)
	}
}
