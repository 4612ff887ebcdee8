package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/p3biosecurity/portal/internal/core/domain"
	"github.com/p3biosecurity/portal/internal/core/ports"
)

func fixedDemo() *DemoAuthenticator {
	d := NewDemoAuthenticator(zerolog.Nop())
	d.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return d
}

func TestDemoAuthenticator_LoginAlwaysFarmer(t *testing.T) {
	token, id, err := fixedDemo().Login(context.Background(), ports.LoginInput{Email: "minister@gov.in", Password: "x"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token != "mock-token-1700000000000" {
		t.Fatalf("unexpected token %q", token)
	}
	if id.Role != domain.RoleFarmer || id.FullName != "Demo User" || id.ID != "1" || id.MobileNumber != "1234567890" {
		t.Fatalf("unexpected demo identity: %+v", id)
	}
	if id.Email != "minister@gov.in" {
		t.Fatalf("email must be echoed, got %q", id.Email)
	}
}

func TestDemoAuthenticator_LoginRequiresFields(t *testing.T) {
	_, _, err := fixedDemo().Login(context.Background(), ports.LoginInput{Email: "a@b.c"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != "Please enter email and password" {
		t.Fatalf("expected validation message, got %v", err)
	}
}

func TestDemoAuthenticator_RegisterEchoesForm(t *testing.T) {
	in := ports.RegisterInput{
		Email: "admin@gov.in", Password: "x", FullName: "A. Officer", MobileNumber: "99",
		Role: "admin", MinistryID: "MOA-1", Designation: "Director", JurisdictionArea: "Kerala",
	}

	token, id, err := fixedDemo().Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if token != "mock-token-1700000000000" {
		t.Fatalf("unexpected token %q", token)
	}
	if id.Role != domain.RoleAdmin || id.AdminProfile == nil || id.Designation != "Director" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if id.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestDemoAuthenticator_RegisterValidates(t *testing.T) {
	in := ports.RegisterInput{Email: "v@x.io", Password: "x", FullName: "V", MobileNumber: "1", Role: "vet"}

	_, _, err := fixedDemo().Register(context.Background(), in)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Message != "Please fill in all veterinarian fields" {
		t.Fatalf("expected vet validation message, got %v", err)
	}
}
