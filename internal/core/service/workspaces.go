package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/infrastructure/schedule"
)

// Gateways bundles the remote services a workspace talks to.
type Gateways struct {
	Identity ports.IdentityGateway
	Drones   ports.DroneGateway
	Zones    ports.ZoneGateway
	Weather  ports.WeatherGateway
}

// WorkspaceConfig controls monitor cadence and idle eviction.
type WorkspaceConfig struct {
	Monitor       MonitorConfig
	FleetInterval time.Duration
	IdleTimeout   time.Duration
}

// Workspace is everything the console holds for one browser session.
type Workspace struct {
	ID       string
	Session  *SessionHolder
	Requests *FlightRequests

	gw    Gateways
	sched *schedule.Scheduler
	cfg   WorkspaceConfig
	log   zerolog.Logger
	now   func() time.Time

	mu       sync.Mutex
	monitors map[int64]*LiveMonitor
	fleet    *FleetMonitor
	lastSeen time.Time
	watchers int
	closed   bool
}

// OpenMonitor returns the running monitor for droneID, starting one when
// none is running.
func (w *Workspace) OpenMonitor(droneID int64) (*LiveMonitor, error) {
	if !w.Session.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, domain.ErrWorkspaceClosed
	}

	if m, ok := w.monitors[droneID]; ok && !m.stopped() {
		return m, nil
	}
	m := NewLiveMonitor(droneID, w.Session, LiveMonitorDeps{
		Drones:    w.gw.Drones,
		Weather:   w.gw.Weather,
		Zones:     w.gw.Zones,
		Scheduler: w.sched,
	}, w.cfg.Monitor, w.log)
	if _, err := m.Start(); err != nil {
		return nil, err
	}
	w.monitors[droneID] = m
	return m, nil
}

// Monitor returns the monitor for droneID.
func (w *Workspace) Monitor(droneID int64) (*LiveMonitor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.monitors[droneID]
	if !ok {
		return nil, domain.ErrMonitorNotFound
	}
	return m, nil
}

// CloseMonitor stops and forgets the monitor for droneID.
func (w *Workspace) CloseMonitor(droneID int64) error {
	w.mu.Lock()
	m, ok := w.monitors[droneID]
	delete(w.monitors, droneID)
	w.mu.Unlock()

	if !ok {
		return domain.ErrMonitorNotFound
	}
	m.Stop()
	return nil
}

// Fleet returns the running fleet monitor, starting one when needed.
// Reviewers only.
func (w *Workspace) Fleet() (*FleetMonitor, error) {
	s := w.Session.Current()
	if !s.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if s.Role != domain.RoleReviewer {
		return nil, domain.ErrForbidden
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, domain.ErrWorkspaceClosed
	}
	if w.fleet != nil && !w.fleet.stopped() {
		return w.fleet, nil
	}
	f := NewFleetMonitor(w.Session, w.gw.Drones, w.gw.Zones, w.sched, w.cfg.FleetInterval, w.log)
	if _, err := f.Start(); err != nil {
		return nil, err
	}
	w.fleet = f
	return f, nil
}

// CloseFleet stops the fleet monitor if one is running.
func (w *Workspace) CloseFleet() {
	w.mu.Lock()
	f := w.fleet
	w.fleet = nil
	w.mu.Unlock()
	if f != nil {
		f.Stop()
	}
}

// Reset stops every monitor and drops the view models' state.
func (w *Workspace) Reset() {
	w.mu.Lock()
	monitors := w.monitors
	w.monitors = make(map[int64]*LiveMonitor)
	fleet := w.fleet
	w.fleet = nil
	w.mu.Unlock()

	for _, m := range monitors {
		m.Stop()
	}
	if fleet != nil {
		fleet.Stop()
	}
	w.Requests.Reset()
}

// MonitorCount returns how many live monitors the workspace holds.
func (w *Workspace) MonitorCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.monitors)
}

// Watch marks the workspace as in use by an open stream. A watched workspace
// is never idle. The returned release must be called once the stream ends.
func (w *Workspace) Watch() (release func()) {
	w.mu.Lock()
	w.watchers++
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			w.watchers--
			w.lastSeen = w.now()
			w.mu.Unlock()
		})
	}
}

// close resets the workspace and refuses any later monitor.
func (w *Workspace) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.Reset()
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watchers > 0 {
		return 0
	}
	return now.Sub(w.lastSeen)
}

// Workspaces maps session ids to workspaces. A workspace is built and its
// session restored from the store the first time its id is seen.
type Workspaces struct {
	store ports.SessionStore
	gw    Gateways
	sched *schedule.Scheduler
	cfg   WorkspaceConfig
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewWorkspaces(store ports.SessionStore, gw Gateways, sched *schedule.Scheduler, cfg WorkspaceConfig, log zerolog.Logger) *Workspaces {
	return &Workspaces{
		store: store,
		gw:    gw,
		sched: sched,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		items: make(map[string]*Workspace),
	}
}

// Get returns the workspace for id, restoring it on first use.
func (ws *Workspaces) Get(ctx context.Context, id string) (*Workspace, error) {
	ws.mu.Lock()
	w, ok := ws.items[id]
	ws.mu.Unlock()
	if ok {
		w.touch(ws.now())
		return w, nil
	}

	holder := NewSessionHolder(id, ws.store, ws.log)
	if err := holder.Restore(ctx); err != nil {
		return nil, err
	}
	w = &Workspace{
		ID:       id,
		Session:  holder,
		Requests: NewFlightRequests(ws.gw.Drones, holder, ws.log),
		gw:       ws.gw,
		sched:    ws.sched,
		cfg:      ws.cfg,
		log:      ws.log.With().Str("session_id", id).Logger(),
		now:      func() time.Time { return ws.now() },
		monitors: make(map[int64]*LiveMonitor),
		lastSeen: ws.now(),
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if existing, ok := ws.items[id]; ok {
		return existing, nil
	}
	ws.items[id] = w
	return w, nil
}

// Evict stops the workspace's monitors and forgets it. Callers still holding
// the workspace can no longer open monitors on it. The persisted session is
// left in the store.
func (ws *Workspaces) Evict(id string) {
	ws.mu.Lock()
	w, ok := ws.items[id]
	delete(ws.items, id)
	ws.mu.Unlock()
	if ok {
		w.close()
	}
}

// Len returns the number of live workspaces.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}

// EvictIdle drops workspaces not seen for longer than the idle timeout.
func (ws *Workspaces) EvictIdle(context.Context) error {
	if ws.cfg.IdleTimeout <= 0 {
		return nil
	}
	now := ws.now()

	ws.mu.Lock()
	var idle []*Workspace
	for id, w := range ws.items {
		if w.idleSince(now) > ws.cfg.IdleTimeout {
			idle = append(idle, w)
			delete(ws.items, id)
		}
	}
	ws.mu.Unlock()

	for _, w := range idle {
		w.close()
	}
	if len(idle) > 0 {
		ws.log.Info().Int("evicted", len(idle)).Msg("evicted idle workspaces")
	}
	return nil
}

// Shutdown stops every workspace's monitors.
func (ws *Workspaces) Shutdown() {
	ws.mu.Lock()
	items := ws.items
	ws.items = make(map[string]*Workspace)
	ws.mu.Unlock()

	for _, w := range items {
		w.close()
	}
}
