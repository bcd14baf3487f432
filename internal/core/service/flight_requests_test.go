package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
)

func pendingRequests() []domain.FlightRequest {
	return []domain.FlightRequest{
		{ID: 1, DroneID: 7, Status: domain.RequestPending},
		{ID: 2, DroneID: 8, Status: domain.RequestPending},
	}
}

func loadedRequests(t *testing.T, drones *stubDrones, role domain.Role) *FlightRequests {
	t.Helper()
	m := NewFlightRequests(drones, signedIn(t, role), zerolog.Nop())
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func TestFlightRequests_LoadAttachesSessionToken(t *testing.T) {
	drones := &stubDrones{requests: pendingRequests()}
	m := loadedRequests(t, drones, domain.RoleReviewer)

	if got := m.View().Requests; len(got) != 2 || got[0].StatusLabel != "Pending" {
		t.Fatalf("unexpected view %+v", got)
	}
	if drones.tokens[0] != "T" {
		t.Fatalf("expected session token on call, got %q", drones.tokens[0])
	}
}

func TestFlightRequests_LoadFailureKeepsRecords(t *testing.T) {
	drones := &stubDrones{requests: pendingRequests()}
	m := loadedRequests(t, drones, domain.RoleReviewer)

	drones.listErr = errUnavailable
	if err := m.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	v := m.View()
	if len(v.Requests) != 2 {
		t.Fatalf("expected previous records, got %d", len(v.Requests))
	}
	if v.Alert == "" {
		t.Fatal("expected alert to be set")
	}
}

func TestFlightRequests_ApproveAndRejectAreDistinct(t *testing.T) {
	drones := &stubDrones{requests: pendingRequests()}
	m := loadedRequests(t, drones, domain.RoleReviewer)

	if err := m.Approve(context.Background(), 1); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := m.Reject(context.Background(), 2); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if drones.updates[0] != domain.RequestApproved || drones.updates[1] != domain.RequestRejected {
		t.Fatalf("unexpected updates sent: %v", drones.updates)
	}
	v := m.View()
	if v.Requests[0].Status != domain.RequestApproved || v.Requests[1].Status != domain.RequestRejected {
		t.Fatalf("unexpected statuses: %+v", v.Requests)
	}
}

func TestFlightRequests_UnacknowledgedUpdateLeavesViewUnchanged(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"explicit failure", &domain.RejectedError{Op: "drones.update_request_status", Reason: "drone busy"}},
		{"missing acknowledgement", &domain.RejectedError{Op: "drones.update_request_status", Reason: "missing acknowledgement"}},
		{"network failure", errUnavailable},
		{"decode failure", &domain.DecodeError{Op: "drones.update_request_status", Err: errors.New("bad json")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			drones := &stubDrones{requests: pendingRequests()}
			m := loadedRequests(t, drones, domain.RoleReviewer)
			drones.updateErr = tc.err

			if err := m.Approve(context.Background(), 1); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			v := m.View()
			if v.Requests[0].Status != domain.RequestPending {
				t.Fatalf("status changed without acknowledgement: %s", v.Requests[0].Status)
			}
			if v.Alert != domain.UserMessage(tc.err) {
				t.Fatalf("unexpected alert %q", v.Alert)
			}
		})
	}
}

func TestFlightRequests_ReviewRequiresReviewer(t *testing.T) {
	drones := &stubDrones{requests: pendingRequests()}
	m := loadedRequests(t, drones, domain.RoleOperator)

	if err := m.Approve(context.Background(), 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(drones.updates) != 0 {
		t.Fatal("no update must be sent for an operator")
	}
}

func TestFlightRequests_UnknownRequest(t *testing.T) {
	m := loadedRequests(t, &stubDrones{requests: pendingRequests()}, domain.RoleReviewer)
	if err := m.Approve(context.Background(), 99); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestFlightRequests_Submit(t *testing.T) {
	drones := &stubDrones{}
	m := loadedRequests(t, drones, domain.RoleOperator)

	fr, err := m.Submit(context.Background(), FlightRequestForm{
		DroneID:       7,
		DepartureTime: time.Now().Add(time.Hour),
		Altitude:      100,
		StartLat:      51.1694,
		StartLng:      71.4491,
		EndLat:        51.18,
		EndLng:        71.46,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if fr.Status != domain.RequestPending {
		t.Fatalf("expected pending, got %s", fr.Status)
	}
	if got := m.View().Requests; len(got) != 1 || got[0].ID != 100 {
		t.Fatalf("expected submitted request in view, got %+v", got)
	}
}

func TestFlightRequests_SubmitValidation(t *testing.T) {
	drones := &stubDrones{}
	m := loadedRequests(t, drones, domain.RoleOperator)

	_, err := m.Submit(context.Background(), FlightRequestForm{DroneID: 7, Altitude: 100, StartLat: 91})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(drones.submitted) != 0 {
		t.Fatal("invalid form must not reach the registry")
	}
	if m.View().Alert == "" {
		t.Fatal("expected alert for invalid form")
	}
}

func TestFlightRequests_RequiresSession(t *testing.T) {
	m := NewFlightRequests(&stubDrones{}, NewSessionHolder("sid", newStubStore(), zerolog.Nop()), zerolog.Nop())
	if err := m.Load(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
