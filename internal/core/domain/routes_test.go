package domain

import (
	"testing"
	"time"
)

func TestGate(t *testing.T) {
	anon := Session{}
	operator := Session{Token: "T", Role: RoleOperator, DisplayName: "Jane Doe"}
	reviewer := Session{Token: "R", Role: RoleReviewer, DisplayName: "Officer"}

	cases := []struct {
		name     string
		session  Session
		path     string
		allowed  bool
		redirect string
	}{
		{"public entry", anon, "/", true, ""},
		{"public login", anon, "/login", true, ""},
		{"anon to reviewer page", anon, "/admin", false, "/"},
		{"anon to operator page", anon, "/home", false, "/"},
		{"operator to reviewer page", operator, "/admin", false, "/"},
		{"operator to fleet monitor", operator, "/admin-monitor", false, "/"},
		{"operator home", operator, "/home", true, ""},
		{"operator monitor", operator, "/home/7", true, ""},
		{"operator lookalike prefix", operator, "/homely", false, "/"},
		{"reviewer home", reviewer, "/admin", true, ""},
		{"reviewer fleet monitor", reviewer, "/admin-monitor", true, ""},
		{"reviewer to operator page", reviewer, "/home", false, "/"},
		{"token without role", Session{Token: "T"}, "/home", false, "/"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			redirect, allowed := Gate(tc.session, tc.path)
			if allowed != tc.allowed || redirect != tc.redirect {
				t.Fatalf("Gate(%q) = (%q, %v), want (%q, %v)", tc.path, redirect, allowed, tc.redirect, tc.allowed)
			}
		})
	}
}

func TestHomeRoute(t *testing.T) {
	if got := HomeRoute(RoleReviewer); got != "/admin" {
		t.Fatalf("reviewer home = %q", got)
	}
	if got := HomeRoute(RoleOperator); got != "/home" {
		t.Fatalf("operator home = %q", got)
	}
}

func TestParseRole_UnknownFallsBackToNone(t *testing.T) {
	for _, raw := range []string{"", "admin", "POLICE", "user ", "root"} {
		if r := ParseRole(raw); r != RoleNone {
			t.Errorf("ParseRole(%q) = %q, want none", raw, r)
		}
	}
	if ParseRole("police") != RoleReviewer || ParseRole("user") != RoleOperator {
		t.Fatal("known roles not parsed")
	}
}

func TestParseStatuses_UnknownValues(t *testing.T) {
	if ParseRequestStatus("APPROVED") != RequestApproved {
		t.Error("expected case-insensitive request status")
	}
	if ParseRequestStatus("cancelled") != RequestUnknown {
		t.Error("expected unknown request status")
	}
	if ParseDroneStatus("depleted-battery") != DroneDepletedBattery {
		t.Error("expected depleted-battery to map")
	}
	if ParseDroneStatus("") != DroneUnknown {
		t.Error("expected empty drone status to be unknown")
	}
	if ParseZoneStatus("ACTIVE") != ZoneActive || ParseZoneStatus("x") != ZoneUnknown {
		t.Error("zone status mapping")
	}
}

func TestRestrictedZone_InForce(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	z := RestrictedZone{Status: ZoneActive, ExpiresAt: now.Add(time.Hour)}
	if !z.InForce(now) {
		t.Fatal("expected zone in force before expiry")
	}
	if z.InForce(now.Add(2 * time.Hour)) {
		t.Fatal("expected zone expired")
	}
	if (RestrictedZone{Status: ZoneActive}).Expired(now) {
		t.Fatal("zero expiry must never expire")
	}
}
