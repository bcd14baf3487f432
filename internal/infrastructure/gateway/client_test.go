package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// mutableToken is a TokenSource whose value can change after the client is built.
type mutableToken struct {
	mu  sync.Mutex
	tok string
}

func (m *mutableToken) Token(context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok
}

func (m *mutableToken) set(tok string) {
	m.mu.Lock()
	m.tok = tok
	m.mu.Unlock()
}

type recordedHeaders struct {
	mu      sync.Mutex
	auth    []string
	tunnel  []string
	methods []string
	paths   []string
}

func (r *recordedHeaders) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth = append(r.auth, req.Header.Get("Authorization"))
	r.tunnel = append(r.tunnel, req.Header.Get(TunnelBypassHeader))
	r.methods = append(r.methods, req.Method)
	r.paths = append(r.paths, req.URL.Path)
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func newServer(t *testing.T, rec *recordedHeaders, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec != nil {
			rec.record(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_TokenReadPerCall(t *testing.T) {
	rec := &recordedHeaders{}
	srv := newServer(t, rec, http.StatusOK, `[]`)

	tokens := &mutableToken{}
	g := NewZones(NewClient("zones", srv.URL, WithTokenSource(tokens)))

	if _, err := g.ListZones(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Token obtained after the gateway was constructed.
	tokens.set("T")
	if _, err := g.ListZones(context.Background()); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if rec.auth[0] != "" {
		t.Fatalf("expected no credential before login, got %q", rec.auth[0])
	}
	if rec.auth[1] != "Bearer T" {
		t.Fatalf("expected bearer token after login, got %q", rec.auth[1])
	}
	for i, v := range rec.tunnel {
		if v != "true" {
			t.Fatalf("call %d missing tunnel bypass header", i)
		}
	}
}

func TestClient_NetworkErrorCarriesStatus(t *testing.T) {
	srv := newServer(t, nil, http.StatusBadGateway, `oops`)
	g := NewZones(NewClient("zones", srv.URL))

	_, err := g.ListZones(context.Background())
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", ne.StatusCode)
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	srv := newServer(t, nil, http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	g := NewZones(NewClient("zones", url))
	_, err := g.ListZones(context.Background())
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.StatusCode != 0 {
		t.Fatalf("expected no status for transport failure, got %d", ne.StatusCode)
	}
}

func TestClient_ShapeMismatchIsDecodeError(t *testing.T) {
	srv := newServer(t, nil, http.StatusOK, `{"zones": "not-a-list"}`)
	g := NewZones(NewClient("zones", srv.URL))

	_, err := g.ListZones(context.Background())
	var de *domain.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestAck(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		accepted bool
	}{
		{"explicit success", `{"success": true}`, true},
		{"explicit failure", `{"success": false, "message": "drone busy"}`, false},
		{"status phrase", `{"status": "move command sent"}`, true},
		{"unknown status phrase", `{"status": "queued"}`, false},
		{"missing indicator", `{}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, nil, http.StatusOK, tc.body)
			g := NewDrones(NewClient("drones", srv.URL), NewClient("control", srv.URL))

			_, err := g.MoveTo(context.Background(), 7, domain.Position{Lat: 51.1, Lng: 71.4, Altitude: 40})
			if tc.accepted && err != nil {
				t.Fatalf("expected acceptance, got %v", err)
			}
			if !tc.accepted {
				var re *domain.RejectedError
				if !errors.As(err, &re) {
					t.Fatalf("expected RejectedError, got %v", err)
				}
			}
		})
	}
}

func TestDrones_UpdateRequestStatusSendsDistinctStates(t *testing.T) {
	var (
		mu     sync.Mutex
		states []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body updateRequestBody
		if err := decodeBody(r, &body); err != nil {
			t.Errorf("decode: %v", err)
		}
		mu.Lock()
		states = append(states, body.State)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	t.Cleanup(srv.Close)

	g := NewDrones(NewClient("drones", srv.URL), NewClient("control", srv.URL))
	if _, err := g.UpdateRequestStatus(context.Background(), 1, domain.RequestApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := g.UpdateRequestStatus(context.Background(), 2, domain.RequestRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if len(states) != 2 || states[0] != "approved" || states[1] != "rejected" {
		t.Fatalf("unexpected states sent: %v", states)
	}
}

func TestDrones_DroneStatus(t *testing.T) {
	rec := &recordedHeaders{}
	srv := newServer(t, rec, http.StatusOK,
		`{"status": {"latitude": 51.17, "longitude": 71.45, "altitude": 100, "speed": 15, "battery": 45, "is_flying": true}}`)
	g := NewDrones(NewClient("drones", srv.URL), NewClient("control", srv.URL))

	tel, err := g.DroneStatus(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tel.Status != domain.DroneFlying {
		t.Fatalf("expected flying status, got %s", tel.Status)
	}
	if tel.Position.Lat != 51.17 || tel.Battery != 45 {
		t.Fatalf("unexpected telemetry: %+v", tel)
	}
	if rec.paths[0] != "/drones/3/status" {
		t.Fatalf("unexpected path %s", rec.paths[0])
	}
}

func TestDrones_DroneStatusMissingBody(t *testing.T) {
	srv := newServer(t, nil, http.StatusOK, `{"ok": true}`)
	g := NewDrones(NewClient("drones", srv.URL), NewClient("control", srv.URL))

	_, err := g.DroneStatus(context.Background(), 3)
	var de *domain.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestIdentity_Login(t *testing.T) {
	srv := newServer(t, nil, http.StatusOK,
		`{"token": "T", "user": {"role_name": "user", "full_name": "Jane Doe"}}`)
	g := NewIdentity(NewClient("identity", srv.URL))

	res, err := g.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ports.LoginResult{Token: "T", RoleName: "user", FullName: "Jane Doe"}
	if *res != want {
		t.Fatalf("got %+v, want %+v", *res, want)
	}
}

func TestIdentity_LoginWithoutToken(t *testing.T) {
	srv := newServer(t, nil, http.StatusOK, `{"user": {"role_name": "user"}}`)
	g := NewIdentity(NewClient("identity", srv.URL))

	_, err := g.Login(context.Background(), "a@b.com", "x")
	var de *domain.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestWeather_CurrentWithoutCredential(t *testing.T) {
	rec := &recordedHeaders{}
	srv := newServer(t, rec, http.StatusOK,
		`{"current": {"temp_c": 20, "wind_kph": 36, "wind_degree": 180, "vis_km": 10}}`)

	// Built the way the composition root builds it: no token source, no tunnel.
	g := NewWeather(NewClient("weather", srv.URL, WithTunnelBypass(false)), "key", 51.1694, 71.4491)

	w, err := g.Current(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.WindSpeed != 10 {
		t.Fatalf("expected 36 km/h converted to 10 m/s, got %v", w.WindSpeed)
	}
	if w.Temperature != 20 || w.WindDirection != 180 || w.Visibility != 10 {
		t.Fatalf("unexpected snapshot: %+v", w)
	}
	if rec.auth[0] != "" || rec.tunnel[0] != "" {
		t.Fatalf("weather call must not carry credentials or tunnel header")
	}
	if rec.paths[0] != "/current.json" {
		t.Fatalf("unexpected path %s", rec.paths[0])
	}
}
