package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
)

// FlightRequestForm is the operator's flight request form. Altitude is in
// metres above ground.
type FlightRequestForm struct {
	DroneID       int64     `json:"drone_id" validate:"required,gt=0"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	Altitude      float64   `json:"altitude" validate:"gt=0"`
	StartLat      float64   `json:"start_lat" validate:"gte=-90,lte=90"`
	StartLng      float64   `json:"start_lng" validate:"gte=-180,lte=180"`
	EndLat        float64   `json:"end_lat" validate:"gte=-90,lte=90"`
	EndLng        float64   `json:"end_lng" validate:"gte=-180,lte=180"`
}

// FlightRequestView is what the request table renders.
type FlightRequestView struct {
	Requests []FlightRequestRow `json:"requests"`
	Alert    string             `json:"alert,omitempty"`
	LoadedAt time.Time          `json:"loaded_at,omitempty"`
}

// FlightRequestRow is one display-ready request.
type FlightRequestRow struct {
	domain.FlightRequest
	StatusLabel string `json:"status_label"`
}

// FlightRequests is the flight request view model of one workspace. Local
// records only change on load or after the registry acknowledged an update.
type FlightRequests struct {
	drones  ports.DroneGateway
	session *SessionHolder
	log     zerolog.Logger

	mu       sync.Mutex
	records  []domain.FlightRequest
	alert    string
	loadedAt time.Time
}

func NewFlightRequests(drones ports.DroneGateway, session *SessionHolder, log zerolog.Logger) *FlightRequests {
	return &FlightRequests{drones: drones, session: session, log: log}
}

// Load replaces the local records with the requests visible to the caller.
// On failure the previous records are kept and the alert is set.
func (m *FlightRequests) Load(ctx context.Context) error {
	if !m.session.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	reqs, err := m.drones.ListRequests(WithSession(ctx, m.session))
	if err != nil {
		m.fail("load flight requests", err)
		return err
	}

	m.mu.Lock()
	m.records = reqs
	m.alert = ""
	m.loadedAt = time.Now().UTC()
	m.mu.Unlock()
	return nil
}

// Approve asks the registry to approve request id.
func (m *FlightRequests) Approve(ctx context.Context, id int64) error {
	return m.review(ctx, id, domain.RequestApproved)
}

// Reject asks the registry to reject request id.
func (m *FlightRequests) Reject(ctx context.Context, id int64) error {
	return m.review(ctx, id, domain.RequestRejected)
}

func (m *FlightRequests) review(ctx context.Context, id int64, status domain.RequestStatus) error {
	if err := m.require(domain.RoleReviewer); err != nil {
		return err
	}
	if _, ok := m.find(id); !ok {
		return domain.ErrRequestNotFound
	}

	if _, err := m.drones.UpdateRequestStatus(WithSession(ctx, m.session), id, status); err != nil {
		m.fail("update flight request", err, func(e *zerolog.Event) {
			e.Int64("request_id", id).Str("status", string(status))
		})
		return err
	}

	m.mu.Lock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Status = status
		}
	}
	m.alert = ""
	m.mu.Unlock()

	m.log.Info().Int64("request_id", id).Str("status", string(status)).Msg("flight request reviewed")
	return nil
}

// Submit files a new flight request for the operator. The acknowledged
// request is appended locally as pending.
func (m *FlightRequests) Submit(ctx context.Context, form FlightRequestForm) (*domain.FlightRequest, error) {
	if err := m.require(domain.RoleOperator); err != nil {
		return nil, err
	}
	if err := Validate(form); err != nil {
		m.setAlert(domain.UserMessage(err))
		return nil, err
	}

	fr, err := m.drones.SubmitRequest(WithSession(ctx, m.session), ports.FlightRequestInput{
		DroneID:       form.DroneID,
		DepartureTime: form.DepartureTime,
		Altitude:      form.Altitude,
		Start:         domain.Position{Lat: form.StartLat, Lng: form.StartLng, Altitude: form.Altitude},
		End:           domain.Position{Lat: form.EndLat, Lng: form.EndLng, Altitude: form.Altitude},
	})
	if err != nil {
		m.fail("submit flight request", err, func(e *zerolog.Event) { e.Int64("drone_id", form.DroneID) })
		return nil, err
	}

	m.mu.Lock()
	m.records = append(m.records, *fr)
	m.alert = ""
	m.mu.Unlock()
	return fr, nil
}

// View returns a snapshot of the records and the last alert.
func (m *FlightRequests) View() FlightRequestView {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]FlightRequestRow, 0, len(m.records))
	for _, r := range m.records {
		rows = append(rows, FlightRequestRow{FlightRequest: r, StatusLabel: r.Status.Label()})
	}
	return FlightRequestView{Requests: rows, Alert: m.alert, LoadedAt: m.loadedAt}
}

// Reset drops every record and the alert.
func (m *FlightRequests) Reset() {
	m.mu.Lock()
	m.records = nil
	m.alert = ""
	m.loadedAt = time.Time{}
	m.mu.Unlock()
}

func (m *FlightRequests) require(role domain.Role) error {
	s := m.session.Current()
	if !s.Authenticated() {
		return domain.ErrNotAuthenticated
	}
	if s.Role != role {
		return domain.ErrForbidden
	}
	return nil
}

func (m *FlightRequests) find(id int64) (domain.FlightRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, true
		}
	}
	return domain.FlightRequest{}, false
}

func (m *FlightRequests) setAlert(msg string) {
	m.mu.Lock()
	m.alert = msg
	m.mu.Unlock()
}

// fail logs err and surfaces it as the view's alert.
func (m *FlightRequests) fail(msg string, err error, fields ...func(*zerolog.Event)) {
	ev := m.log.Warn().Err(err)
	for _, f := range fields {
		f(ev)
	}
	ev.Msg(msg + " failed")
	m.setAlert(domain.UserMessage(err))
}
