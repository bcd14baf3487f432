package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

func TestAuthService_Login_OperatorLandsOnHome(t *testing.T) {
	identity := &stubIdentity{loginRes: &ports.LoginResult{Token: "T", RoleName: "user", FullName: "Jane Doe"}}
	store := newStubStore()
	holder := NewSessionHolder("sid", store, zerolog.Nop())
	svc := NewAuthService(identity, zerolog.Nop())

	route, err := svc.Login(context.Background(), holder, LoginForm{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if route != domain.RouteOperatorHome {
		t.Fatalf("expected %s, got %s", domain.RouteOperatorHome, route)
	}

	want := domain.Session{Token: "T", Role: domain.RoleOperator, DisplayName: "Jane Doe"}
	if got := holder.Current(); got != want {
		t.Fatalf("got session %+v, want %+v", got, want)
	}
	if rec, _ := store.record("sid"); rec != (ports.SessionRecord{Token: "T", Role: "user", DisplayName: "Jane Doe"}) {
		t.Fatalf("unexpected persisted record %+v", rec)
	}
}

func TestAuthService_Login_ReviewerLandsOnAdmin(t *testing.T) {
	identity := &stubIdentity{loginRes: &ports.LoginResult{Token: "R", RoleName: "police", FullName: "Officer"}}
	holder := NewSessionHolder("sid", newStubStore(), zerolog.Nop())
	svc := NewAuthService(identity, zerolog.Nop())

	route, err := svc.Login(context.Background(), holder, LoginForm{Email: "p@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if route != domain.RouteReviewerHome {
		t.Fatalf("expected %s, got %s", domain.RouteReviewerHome, route)
	}
}

func TestAuthService_Login_FailureLeavesSessionUntouched(t *testing.T) {
	cases := []struct {
		name     string
		identity *stubIdentity
		form     LoginForm
	}{
		{"network failure", &stubIdentity{loginErr: errUnavailable}, LoginForm{Email: "a@b.com", Password: "x"}},
		{"unknown role", &stubIdentity{loginRes: &ports.LoginResult{Token: "T", RoleName: "admin"}}, LoginForm{Email: "a@b.com", Password: "x"}},
		{"invalid form", &stubIdentity{}, LoginForm{Email: "not-an-email"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			holder := signedIn(t, domain.RoleReviewer)
			before := holder.Current()
			svc := NewAuthService(tc.identity, zerolog.Nop())

			if _, err := svc.Login(context.Background(), holder, tc.form); err == nil {
				t.Fatal("expected error")
			}
			if holder.Current() != before {
				t.Fatalf("session mutated to %+v", holder.Current())
			}
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	identity := &stubIdentity{}
	svc := NewAuthService(identity, zerolog.Nop())

	_, err := svc.Register(context.Background(), RegisterForm{
		FirstName:       "Jane",
		LastName:        "Doe",
		MiddleName:      "Q",
		Email:           "jane@example.com",
		Password:        "secret",
		ConfirmPassword: "secret",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if len(identity.registered) != 1 {
		t.Fatalf("expected one registration, got %d", len(identity.registered))
	}
	p := identity.registered[0]
	if p.FullName != "Jane Doe Q" || p.RoleID != 1 {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	identity := &stubIdentity{}
	svc := NewAuthService(identity, zerolog.Nop())

	_, err := svc.Register(context.Background(), RegisterForm{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Password:        "secret",
		ConfirmPassword: "secreT",
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Violations[0].Field != "confirm_password" {
		t.Fatalf("unexpected violation %+v", ve.Violations)
	}
	if len(identity.registered) != 0 {
		t.Fatal("identity service must not be called with invalid input")
	}
}
