package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhangir128/UAV/internal/core/domain"
	"github.com/zhangir128/UAV/internal/core/ports"
	"github.com/zhangir128/UAV/internal/infrastructure/schedule"
	"github.com/zhangir128/UAV/internal/pkg/metrics"
)

// FleetSnapshot is the reviewer map: every drone plus the restricted zones.
type FleetSnapshot struct {
	State     MonitorState   `json:"state"`
	Drones    []domain.Drone `json:"drones"`
	Zones     []ZoneView     `json:"zones"`
	Alert     string         `json:"alert,omitempty"`
	Version   uint64         `json:"version"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// FleetMonitor polls the drone list and the zones together. A failed list
// keeps the last good one.
type FleetMonitor struct {
	session *SessionHolder
	drones  ports.DroneGateway
	zones   ports.ZoneGateway
	sched   *schedule.Scheduler
	every   time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     MonitorState
	droneList []domain.Drone
	zoneList  []domain.RestrictedZone
	alert     string
	version   uint64
	updatedAt time.Time
	dispose   schedule.Disposer

	stopOnce sync.Once
	subs     *latest[FleetSnapshot]
}

func NewFleetMonitor(session *SessionHolder, drones ports.DroneGateway, zones ports.ZoneGateway, sched *schedule.Scheduler, every time.Duration, log zerolog.Logger) *FleetMonitor {
	if every <= 0 {
		every = 2 * time.Second
	}
	return &FleetMonitor{
		session: session,
		drones:  drones,
		zones:   zones,
		sched:   sched,
		every:   every,
		log:     log.With().Str("monitor", "fleet").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
		state:   MonitorIdle,
		subs:    newLatest[FleetSnapshot](),
	}
}

// Start begins polling and returns Stop as the Disposer.
func (f *FleetMonitor) Start() (schedule.Disposer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case MonitorStopped:
		return nil, domain.ErrMonitorStopped
	case MonitorIdle:
	default:
		return f.Stop, nil
	}

	f.state = MonitorPolling
	f.dispose = f.sched.Every(WithSession(context.Background(), f.session), "monitor:fleet", f.every, f.Poll)
	metrics.MonitorsActive.Inc()
	return f.Stop, nil
}

// Stop cancels polling and waits for an in-flight poll to return.
func (f *FleetMonitor) Stop() {
	f.stopOnce.Do(func() {
		f.mu.Lock()
		wasRunning := f.state != MonitorIdle
		f.state = MonitorStopped
		dispose := f.dispose
		f.dispose = nil
		f.version++
		f.subs.publish(f.snapshotLocked())
		f.mu.Unlock()

		if dispose != nil {
			dispose()
		}
		if wasRunning {
			metrics.MonitorsActive.Dec()
		}
		f.subs.close()
	})
}

// Poll refreshes drones and zones concurrently.
func (f *FleetMonitor) Poll(ctx context.Context) error {
	if f.stopped() {
		return nil
	}
	ctx = WithSession(ctx, f.session)

	var (
		wg               sync.WaitGroup
		drones           []domain.Drone
		zones            []domain.RestrictedZone
		dronesErr, zoErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		drones, dronesErr = f.drones.ListDrones(ctx)
	}()
	go func() {
		defer wg.Done()
		zones, zoErr = f.zones.ListZones(ctx)
	}()
	wg.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == MonitorStopped {
		metrics.MonitorStaleResultsTotal.WithLabelValues("stopped").Inc()
		return nil
	}

	if dronesErr == nil {
		f.droneList = drones
	}
	if zoErr == nil {
		f.zoneList = zones
	}

	err := errors.Join(dronesErr, zoErr)
	switch {
	case dronesErr != nil && zoErr != nil:
		f.state = MonitorPollFailed
		metrics.MonitorPollsTotal.WithLabelValues("failed").Inc()
	case err != nil:
		f.state = MonitorUpdated
		metrics.MonitorPollsTotal.WithLabelValues("partial").Inc()
	default:
		f.state = MonitorUpdated
		metrics.MonitorPollsTotal.WithLabelValues("updated").Inc()
	}
	f.alert = domain.UserMessage(firstErr(dronesErr, zoErr))

	f.version++
	f.updatedAt = f.now()
	f.subs.publish(f.snapshotLocked())
	return err
}

// Snapshot returns the current fleet state.
func (f *FleetMonitor) Snapshot() FleetSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Subscribe works like LiveMonitor.Subscribe.
func (f *FleetMonitor) Subscribe() (<-chan FleetSnapshot, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs.subscribe(f.snapshotLocked())
}

func (f *FleetMonitor) stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == MonitorStopped
}

func (f *FleetMonitor) snapshotLocked() FleetSnapshot {
	now := f.now()
	s := FleetSnapshot{
		State:     f.state,
		Drones:    append([]domain.Drone(nil), f.droneList...),
		Zones:     make([]ZoneView, 0, len(f.zoneList)),
		Alert:     f.alert,
		Version:   f.version,
		UpdatedAt: f.updatedAt,
	}
	if s.Drones == nil {
		s.Drones = []domain.Drone{}
	}
	for _, z := range f.zoneList {
		s.Zones = append(s.Zones, ZoneView{RestrictedZone: z, InForce: z.InForce(now)})
	}
	return s
}
