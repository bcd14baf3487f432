package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/geo"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/infrastructure/schedule"
	"github.com/zhangir128/UAV/internal/pkg/metrics"
)

// MonitorState is where a monitor is in its polling lifecycle.
type MonitorState string

const (
	MonitorIdle       MonitorState = "idle"
	MonitorPolling    MonitorState = "polling"
	MonitorUpdated    MonitorState = "updated"
	MonitorPollFailed MonitorState = "poll_failed"
	MonitorStopped    MonitorState = "stopped"
)

// MonitorConfig holds the polling cadence of live and fleet monitors.
type MonitorConfig struct {
	Interval     time.Duration
	ZoneInterval time.Duration
}

func (c MonitorConfig) withDefaults() MonitorConfig {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.ZoneInterval <= 0 {
		c.ZoneInterval = time.Minute
	}
	return c
}

// ZoneView is a restricted zone as drawn on the map.
type ZoneView struct {
	domain.RestrictedZone
	InForce bool `json:"in_force"`
}

// MonitorSnapshot is the display-ready state of one monitored drone.
type MonitorSnapshot struct {
	DroneID    int64                   `json:"drone_id"`
	State      MonitorState            `json:"state"`
	Telemetry  *domain.Telemetry       `json:"telemetry,omitempty"`
	Weather    *domain.WeatherSnapshot `json:"weather,omitempty"`
	Start      *domain.Position        `json:"start,omitempty"`
	End        *domain.Position        `json:"end,omitempty"`
	Zones      []ZoneView              `json:"zones"`
	Violations []string                `json:"violations"`
	Alert      string                  `json:"alert,omitempty"`
	Version    uint64                  `json:"version"`
	UpdatedAt  time.Time               `json:"updated_at,omitempty"`
}

// LiveMonitor polls one drone's telemetry together with the weather at the
// reference location and merges both into a snapshot for the map.
//
// Every poll and move command draws a sequence number when it is issued.
// Position only accepts results newer than the last applied one, so a slow
// poll cannot overwrite a move the control service already acknowledged.
// Once stopped, nothing is applied any more.
type LiveMonitor struct {
	droneID int64
	session *SessionHolder
	drones  ports.DroneGateway
	weather ports.WeatherGateway
	zones   ports.ZoneGateway
	sched   *schedule.Scheduler
	cfg     MonitorConfig
	log     zerolog.Logger
	now     func() time.Time

	seq atomic.Uint64

	mu         sync.Mutex
	state      MonitorState
	telemetry  *domain.Telemetry
	posSeq     uint64
	weatherNow *domain.WeatherSnapshot
	weatherSeq uint64
	start      *domain.Position
	end        *domain.Position
	zoneList   []domain.RestrictedZone
	alert      string
	version    uint64
	updatedAt  time.Time
	disposers  []schedule.Disposer

	stopOnce sync.Once
	subs     *latest[MonitorSnapshot]
}

// LiveMonitorDeps are the collaborators of a LiveMonitor. Zones may be nil.
type LiveMonitorDeps struct {
	Drones    ports.DroneGateway
	Weather   ports.WeatherGateway
	Zones     ports.ZoneGateway
	Scheduler *schedule.Scheduler
}

func NewLiveMonitor(droneID int64, session *SessionHolder, deps LiveMonitorDeps, cfg MonitorConfig, log zerolog.Logger) *LiveMonitor {
	return &LiveMonitor{
		droneID: droneID,
		session: session,
		drones:  deps.Drones,
		weather: deps.Weather,
		zones:   deps.Zones,
		sched:   deps.Scheduler,
		cfg:     cfg.withDefaults(),
		log:     log.With().Int64("drone_id", droneID).Logger(),
		now:     func() time.Time { return time.Now().UTC() },
		state:   MonitorIdle,
		subs:    newLatest[MonitorSnapshot](),
	}
}

// DroneID returns the monitored drone.
func (m *LiveMonitor) DroneID() int64 { return m.droneID }

// Start begins polling. The first poll runs immediately. The returned
// Disposer is Stop. Starting a running monitor is a no-op.
func (m *LiveMonitor) Start() (schedule.Disposer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case MonitorStopped:
		return nil, domain.ErrMonitorStopped
	case MonitorIdle:
	default:
		return m.Stop, nil
	}

	m.state = MonitorPolling
	ctx := WithSession(context.Background(), m.session)
	m.disposers = append(m.disposers,
		m.sched.Every(ctx, fmt.Sprintf("monitor:%d:poll", m.droneID), m.cfg.Interval, m.Poll),
	)
	if m.zones != nil {
		m.disposers = append(m.disposers,
			m.sched.Every(ctx, fmt.Sprintf("monitor:%d:zones", m.droneID), m.cfg.ZoneInterval, m.RefreshZones),
		)
	}
	metrics.MonitorsActive.Inc()
	m.log.Debug().Dur("interval", m.cfg.Interval).Msg("monitor started")
	return m.Stop, nil
}

// Stop cancels every scheduled task and waits for them to return. Results
// that resolve afterwards are dropped. Safe to call more than once.
func (m *LiveMonitor) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		wasRunning := m.state != MonitorIdle
		m.state = MonitorStopped
		disposers := m.disposers
		m.disposers = nil
		m.version++
		snap := m.snapshotLocked()
		m.mu.Unlock()

		for _, d := range disposers {
			d()
		}
		if wasRunning {
			metrics.MonitorsActive.Dec()
		}
		m.subs.publish(snap)
		m.subs.close()
		m.log.Debug().Msg("monitor stopped")
	})
}

// Poll fetches telemetry and weather concurrently and merges whatever
// succeeded. A failed sub-fetch keeps the previous value of its fields.
func (m *LiveMonitor) Poll(ctx context.Context) error {
	if m.stopped() {
		return nil
	}
	ctx = WithSession(ctx, m.session)
	token := m.seq.Add(1)

	var (
		wg      sync.WaitGroup
		tel     *domain.Telemetry
		telErr  error
		wthr    *domain.WeatherSnapshot
		wthrErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		tel, telErr = m.drones.DroneStatus(ctx, m.droneID)
	}()
	if m.weather != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wthr, wthrErr = m.weather.Current(ctx)
		}()
	}
	wg.Wait()

	m.mu.Lock()
	if m.state == MonitorStopped {
		m.mu.Unlock()
		metrics.MonitorStaleResultsTotal.WithLabelValues("stopped").Inc()
		return nil
	}

	if telErr == nil {
		m.mergeTelemetryLocked(token, tel)
	}
	if wthrErr == nil && wthr != nil && token > m.weatherSeq {
		m.weatherNow = wthr
		m.weatherSeq = token
	}

	err := errors.Join(telErr, wthrErr)
	switch {
	case telErr != nil && (wthrErr != nil || m.weather == nil):
		m.state = MonitorPollFailed
		metrics.MonitorPollsTotal.WithLabelValues("failed").Inc()
	case err != nil:
		m.state = MonitorUpdated
		metrics.MonitorPollsTotal.WithLabelValues("partial").Inc()
	default:
		m.state = MonitorUpdated
		metrics.MonitorPollsTotal.WithLabelValues("updated").Inc()
	}
	if err != nil {
		m.alert = domain.UserMessage(firstErr(telErr, wthrErr))
	} else {
		m.alert = ""
	}
	m.subs.publish(m.touchLocked())
	m.mu.Unlock()
	return err
}

// mergeTelemetryLocked applies a poll result. Non-position fields always
// take the polled values; position only when token is the newest applied.
func (m *LiveMonitor) mergeTelemetryLocked(token uint64, tel *domain.Telemetry) {
	next := *tel
	if m.telemetry != nil && token <= m.posSeq {
		next.Position = m.telemetry.Position
		metrics.MonitorStaleResultsTotal.WithLabelValues("superseded").Inc()
	} else {
		m.posSeq = token
	}
	m.telemetry = &next
}

// SetStart sends the drone to its take-off point. The displayed position
// and start marker change only when the command is acknowledged.
func (m *LiveMonitor) SetStart(ctx context.Context, target domain.Position) error {
	return m.command(ctx, "move to start", target, m.drones.MoveToStart, func() { m.start = &target })
}

// SetEnd sends the drone towards target. The displayed position and end
// marker change only when the command is acknowledged.
func (m *LiveMonitor) SetEnd(ctx context.Context, target domain.Position) error {
	return m.command(ctx, "move to target", target, m.drones.MoveTo, func() { m.end = &target })
}

type moveFunc func(ctx context.Context, droneID int64, target domain.Position) (*ports.Ack, error)

func (m *LiveMonitor) command(ctx context.Context, name string, target domain.Position, send moveFunc, mark func()) error {
	if m.stopped() {
		return domain.ErrMonitorStopped
	}
	token := m.seq.Add(1)

	_, err := send(WithSession(ctx, m.session), m.droneID, target)

	m.mu.Lock()
	if m.state == MonitorStopped {
		m.mu.Unlock()
		metrics.MonitorStaleResultsTotal.WithLabelValues("stopped").Inc()
		return domain.ErrMonitorStopped
	}
	if err != nil {
		m.alert = domain.UserMessage(err)
		m.subs.publish(m.touchLocked())
		m.mu.Unlock()

		m.log.Warn().Err(err).Float64("lat", target.Lat).Float64("lng", target.Lng).Msg(name + " failed")
		return err
	}

	mark()
	if token > m.posSeq {
		m.posSeq = token
		if m.telemetry == nil {
			m.telemetry = &domain.Telemetry{Status: domain.DroneUnknown}
		}
		tel := *m.telemetry
		tel.Position = target
		tel.ReceivedAt = m.now()
		m.telemetry = &tel
	} else {
		metrics.MonitorStaleResultsTotal.WithLabelValues("superseded").Inc()
	}
	m.alert = ""
	m.subs.publish(m.touchLocked())
	m.mu.Unlock()

	m.log.Info().Float64("lat", target.Lat).Float64("lng", target.Lng).Msg(name + " acknowledged")
	return nil
}

// RefreshZones reloads the restricted zones. On failure the previous list
// is kept.
func (m *LiveMonitor) RefreshZones(ctx context.Context) error {
	if m.zones == nil || m.stopped() {
		return nil
	}
	zones, err := m.zones.ListZones(WithSession(ctx, m.session))

	m.mu.Lock()
	if m.state == MonitorStopped {
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		m.alert = domain.UserMessage(err)
	} else {
		m.zoneList = zones
	}
	m.subs.publish(m.touchLocked())
	m.mu.Unlock()
	return err
}

// Snapshot returns the current display state.
func (m *LiveMonitor) Snapshot() MonitorSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel that always holds the newest snapshot and is
// closed when the monitor stops, plus a func to unsubscribe early.
func (m *LiveMonitor) Subscribe() (<-chan MonitorSnapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs.subscribe(m.snapshotLocked())
}

func (m *LiveMonitor) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == MonitorStopped
}

func (m *LiveMonitor) touchLocked() MonitorSnapshot {
	m.version++
	m.updatedAt = m.now()
	return m.snapshotLocked()
}

func (m *LiveMonitor) snapshotLocked() MonitorSnapshot {
	now := m.now()
	s := MonitorSnapshot{
		DroneID:    m.droneID,
		State:      m.state,
		Alert:      m.alert,
		Version:    m.version,
		UpdatedAt:  m.updatedAt,
		Zones:      make([]ZoneView, 0, len(m.zoneList)),
		Violations: []string{},
	}
	if m.telemetry != nil {
		t := *m.telemetry
		s.Telemetry = &t
	}
	if m.weatherNow != nil {
		w := *m.weatherNow
		s.Weather = &w
	}
	if m.start != nil {
		p := *m.start
		s.Start = &p
	}
	if m.end != nil {
		p := *m.end
		s.End = &p
	}
	for _, z := range m.zoneList {
		inForce := z.InForce(now)
		s.Zones = append(s.Zones, ZoneView{RestrictedZone: z, InForce: inForce})
		if inForce && s.Telemetry != nil && zoneContains(z, s.Telemetry.Position) {
			s.Violations = append(s.Violations, z.Name)
		}
	}
	return s
}

func zoneContains(z domain.RestrictedZone, p domain.Position) bool {
	return geo.WithinCylinder(p.Lat, p.Lng, p.Altitude, z.Center.Lat, z.Center.Lng, z.Radius, z.Center.Altitude)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
