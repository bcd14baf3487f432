package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/infrastructure/schedule"
)

// --- session store ---

type stubStore struct {
	mu      sync.Mutex
	recs    map[string]ports.SessionRecord
	saveErr error
	delErr  error
	loadErr error
}

func newStubStore() *stubStore {
	return &stubStore{recs: make(map[string]ports.SessionRecord)}
}

func (s *stubStore) Load(_ context.Context, id string) (ports.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return ports.SessionRecord{}, s.loadErr
	}
	rec, ok := s.recs[id]
	if !ok {
		return ports.SessionRecord{}, domain.ErrSessionNotFound
	}
	return rec, nil
}

func (s *stubStore) Save(_ context.Context, id string, rec ports.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.recs[id] = rec
	return nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.recs, id)
	return nil
}

func (s *stubStore) Ping(context.Context) error { return nil }

func (s *stubStore) record(id string) (ports.SessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[id]
	return rec, ok
}

// --- identity ---

type stubIdentity struct {
	loginRes    *ports.LoginResult
	loginErr    error
	registerErr error
	registered  []ports.Profile
}

func (s *stubIdentity) Login(context.Context, string, string) (*ports.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	res := *s.loginRes
	return &res, nil
}

func (s *stubIdentity) Register(_ context.Context, p ports.Profile) (*ports.Ack, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	s.registered = append(s.registered, p)
	return &ports.Ack{Message: "user registered"}, nil
}

// --- drones ---

type stubDrones struct {
	mu sync.Mutex

	requests  []domain.FlightRequest
	listErr   error
	updateErr error
	updates   []domain.RequestStatus
	submitted []ports.FlightRequestInput

	drones []domain.Drone

	statusFn    func(ctx context.Context) (*domain.Telemetry, error)
	statusCalls atomic.Int32
	moveErr     error
	moves       []domain.Position
	tokens      []string
}

func (s *stubDrones) ListDrones(ctx context.Context) ([]domain.Drone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, SessionTokens.Token(ctx))
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Drone(nil), s.drones...), nil
}

func (s *stubDrones) RegisterDrone(_ context.Context, in ports.DroneRegistration) (*domain.DroneRegistration, error) {
	return &domain.DroneRegistration{DroneID: 42, Name: in.Name}, nil
}

func (s *stubDrones) ListRequests(ctx context.Context) ([]domain.FlightRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, SessionTokens.Token(ctx))
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.FlightRequest(nil), s.requests...), nil
}

func (s *stubDrones) SubmitRequest(_ context.Context, in ports.FlightRequestInput) (*domain.FlightRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, in)
	return &domain.FlightRequest{ID: 100, DroneID: in.DroneID, Start: in.Start, End: in.End, Status: domain.RequestPending}, nil
}

func (s *stubDrones) UpdateRequestStatus(_ context.Context, _ int64, status domain.RequestStatus) (*ports.Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, status)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &ports.Ack{Message: "request updated"}, nil
}

func (s *stubDrones) DroneStatus(ctx context.Context, _ int64) (*domain.Telemetry, error) {
	s.statusCalls.Add(1)
	if s.statusFn != nil {
		return s.statusFn(ctx)
	}
	return &domain.Telemetry{Status: domain.DroneActive}, nil
}

func (s *stubDrones) MoveToStart(ctx context.Context, id int64, target domain.Position) (*ports.Ack, error) {
	return s.MoveTo(ctx, id, target)
}

func (s *stubDrones) MoveTo(_ context.Context, _ int64, target domain.Position) (*ports.Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moveErr != nil {
		return nil, s.moveErr
	}
	s.moves = append(s.moves, target)
	return &ports.Ack{Message: "move command sent"}, nil
}

// --- zones ---

type stubZones struct {
	mu    sync.Mutex
	zones []domain.RestrictedZone
	err   error
	calls atomic.Int32
}

func (s *stubZones) ListZones(context.Context) ([]domain.RestrictedZone, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.RestrictedZone(nil), s.zones...), nil
}

func (s *stubZones) CreateZone(_ context.Context, in ports.ZoneInput) (*domain.RestrictedZone, error) {
	return &domain.RestrictedZone{ID: 9, OwnerID: in.OwnerID, Name: in.Name, Center: in.Center, Radius: in.Radius, Status: in.Status, ExpiresAt: in.ExpiresAt}, nil
}

// --- weather ---

type stubWeather struct {
	mu    sync.Mutex
	snap  *domain.WeatherSnapshot
	err   error
	calls atomic.Int32
}

func (s *stubWeather) Current(context.Context) (*domain.WeatherSnapshot, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	w := *s.snap
	return &w, nil
}

func (s *stubWeather) set(snap *domain.WeatherSnapshot, err error) {
	s.mu.Lock()
	s.snap, s.err = snap, err
	s.mu.Unlock()
}

// --- helpers ---

var errUnavailable = &domain.NetworkError{Op: "test", StatusCode: 503, Err: errors.New("unavailable")}

func signedIn(t *testing.T, role domain.Role) *SessionHolder {
	t.Helper()
	h := NewSessionHolder("sid", newStubStore(), zerolog.Nop())
	if err := h.Login(context.Background(), "T", role, "Jane Doe"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return h
}

func newScheduler(t *testing.T) *schedule.Scheduler {
	t.Helper()
	s := schedule.New(zerolog.Nop())
	t.Cleanup(s.Shutdown)
	return s
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
