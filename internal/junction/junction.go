package junction

import (
	"context"
	"time"

	"github.com/nerrad567/junction-core/internal/controller"
	"github.com/nerrad567/junction-core/internal/driver"
)

// Housekeeping cadences, measured on the tick clock.
const (
	// demandSampleInterval is how often approach demand is written to telemetry.
	demandSampleInterval = 10 * time.Second

	// pruneInterval is how often old history rows are pruned.
	pruneInterval = time.Hour

	// recordTimeout bounds each history write.
	recordTimeout = 5 * time.Second
)

// Logger defines the logging interface used by the Loop.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Sampler provides the controller inputs for one tick.
type Sampler interface {
	Sample() controller.Inputs
}

// Panel drives lamp outputs and phase announcements.
type Panel interface {
	Apply(pattern controller.LightPattern) error
	PublishPhase(state controller.State, pattern controller.LightPattern, now time.Time) error
}

// Recorder persists phase changes. Implemented by history.SQLiteRepository.
type Recorder interface {
	RecordPhaseChange(ctx context.Context, from, to controller.State, pattern controller.LightPattern, dwell time.Duration, source string) error
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Telemetry receives time-series metrics. Implemented by influxdb.Client.
type Telemetry interface {
	WritePhaseMetric(intersectionID string, phase string, dwellSeconds float64)
	WriteDemandMetric(intersectionID string, approach string, occupied bool)
	WriteEmergencyMetric(intersectionID string, engaged bool, holdSeconds float64)
}

// Config carries loop identity and housekeeping settings.
type Config struct {
	// IntersectionID tags telemetry and log lines.
	IntersectionID string

	// HistoryRetention bounds the phase history table. Zero disables pruning.
	HistoryRetention time.Duration
}

// Loop drives one intersection: sample inputs, tick the state machine,
// fan results out to lamps, history, and telemetry.
//
// Thread Safety: Run owns all loop state; it must be called from a single
// goroutine. The controller itself is internally locked, so read-only
// accessors remain safe from other goroutines while the loop runs.
type Loop struct {
	cfg       Config
	ctrl      *controller.Controller
	drv       driver.Driver
	inputs    Sampler
	panel     Panel
	recorder  Recorder
	telemetry Telemetry
	logger    Logger

	// Tick-clock bookkeeping, touched only from the tick callback.
	applied        bool
	lastDemandAt   time.Time
	lastPruneAt    time.Time
	emergencyHeld  bool
	emergencyStart time.Time
}

// New creates a loop for one intersection.
//
// Parameters:
//   - cfg: Identity and housekeeping settings
//   - ctrl: The signal state machine
//   - drv: Tick source (wallclock or pulse)
//   - inputs: Field input sampler
//   - panel: Lamp output panel
//   - recorder: Phase history store (may be nil)
//   - telemetry: Time-series sink (may be nil)
//   - logger: Logger instance (may be nil)
func New(cfg Config, ctrl *controller.Controller, drv driver.Driver, inputs Sampler, panel Panel, recorder Recorder, telemetry Telemetry, logger Logger) *Loop {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Loop{
		cfg:       cfg,
		ctrl:      ctrl,
		drv:       drv,
		inputs:    inputs,
		panel:     panel,
		recorder:  recorder,
		telemetry: telemetry,
		logger:    logger,
	}
}

// Run drives the loop until ctx is cancelled.
//
// Returns nil on clean cancellation. On the way out the lamp panel is
// driven all-off: a controller that is not running shows no aspects,
// and the lamp driver's own watchdog takes over.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("junction loop started",
		"intersection_id", l.cfg.IntersectionID,
	)

	err := l.drv.Run(ctx, l.tick)

	// Dark aspects on shutdown. Best effort: the broker may already be gone.
	if applyErr := l.panel.Apply(controller.LightPattern{}); applyErr != nil {
		l.logger.Warn("failed to dark lamps on shutdown", "error", applyErr)
	}

	l.logger.Info("junction loop stopped",
		"intersection_id", l.cfg.IntersectionID,
	)
	return err
}

// tick runs one cycle: sample, advance, fan out.
func (l *Loop) tick(now time.Time) {
	in := l.inputs.Sample()

	prev := l.ctrl.State()
	dwell := l.ctrl.PhaseElapsed(now)
	pattern := l.ctrl.Tick(in, now)
	cur := l.ctrl.State()

	if cur != prev || !l.applied {
		l.applyPhase(prev, cur, pattern, in, dwell, now)
		l.applied = true
	}

	l.housekeeping(in, now)
}

// applyPhase pushes a committed phase out to lamps, history, and telemetry.
func (l *Loop) applyPhase(prev, cur controller.State, pattern controller.LightPattern, in controller.Inputs, dwell time.Duration, now time.Time) {
	source := classifySource(prev, cur, in)

	l.logger.Info("phase change",
		"intersection_id", l.cfg.IntersectionID,
		"from", prev.String(),
		"to", cur.String(),
		"dwell", dwell,
		"source", source,
	)

	if err := l.panel.Apply(pattern); err != nil {
		l.logger.Error("failed to drive lamp pattern",
			"to", cur.String(),
			"error", err,
		)
	}
	if err := l.panel.PublishPhase(cur, pattern, now); err != nil {
		l.logger.Warn("failed to publish phase", "error", err)
	}

	if l.recorder != nil && cur != prev {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := l.recorder.RecordPhaseChange(ctx, prev, cur, pattern, dwell, source); err != nil {
			l.logger.Error("failed to record phase change", "error", err)
		}
		cancel()
	}

	if l.telemetry != nil && cur != prev {
		l.telemetry.WritePhaseMetric(l.cfg.IntersectionID, prev.String(), dwell.Seconds())
	}

	l.trackEmergency(cur, now)
}

// trackEmergency emits engage/release telemetry for the preemption branch.
func (l *Loop) trackEmergency(cur controller.State, now time.Time) {
	inBranch := cur == controller.StateEmergencyTransition || cur == controller.StateEmergencyGreen

	switch {
	case inBranch && !l.emergencyHeld:
		l.emergencyHeld = true
		l.emergencyStart = now
		l.logger.Warn("emergency preemption engaged",
			"intersection_id", l.cfg.IntersectionID,
		)
		if l.telemetry != nil {
			l.telemetry.WriteEmergencyMetric(l.cfg.IntersectionID, true, 0)
		}
	case !inBranch && l.emergencyHeld:
		l.emergencyHeld = false
		hold := now.Sub(l.emergencyStart)
		l.logger.Info("emergency preemption released",
			"intersection_id", l.cfg.IntersectionID,
			"hold", hold,
		)
		if l.telemetry != nil {
			l.telemetry.WriteEmergencyMetric(l.cfg.IntersectionID, false, hold.Seconds())
		}
	}
}

// housekeeping runs the slow-cadence work: demand telemetry and history
// pruning. Cadences are measured on the tick clock so pulse-driven runs
// behave identically to wallclock runs.
func (l *Loop) housekeeping(in controller.Inputs, now time.Time) {
	if l.telemetry != nil {
		if l.lastDemandAt.IsZero() || now.Sub(l.lastDemandAt) >= demandSampleInterval {
			l.lastDemandAt = now
			l.telemetry.WriteDemandMetric(l.cfg.IntersectionID, "ns", in.NsDemand)
			l.telemetry.WriteDemandMetric(l.cfg.IntersectionID, "ew", in.EwDemand)
		}
	}

	if l.recorder != nil && l.cfg.HistoryRetention > 0 {
		if l.lastPruneAt.IsZero() {
			// Skip the prune on the very first tick; just set the cadence origin.
			l.lastPruneAt = now
			return
		}
		if now.Sub(l.lastPruneAt) >= pruneInterval {
			l.lastPruneAt = now
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			deleted, err := l.recorder.PruneHistory(ctx, l.cfg.HistoryRetention)
			cancel()
			if err != nil {
				l.logger.Warn("history prune failed", "error", err)
			} else if deleted > 0 {
				l.logger.Debug("history pruned", "deleted", deleted)
			}
		}
	}
}

// classifySource names what triggered a transition, for the audit trail.
func classifySource(prev, cur controller.State, in controller.Inputs) string {
	switch {
	case in.ResetRequested:
		return "reset"
	case in.EmergencyRequested,
		prev == controller.StateEmergencyTransition,
		prev == controller.StateEmergencyGreen:
		// While preemption is requested the emergency branch governs every
		// transition; leaving the branch is the resume step of the same event.
		return "emergency"
	case prev == controller.StateNsGreen && cur == controller.StateNsYellow,
		prev == controller.StateEwGreen && cur == controller.StateEwYellow:
		// Greens only yield when the cross approach has demand.
		return "demand"
	default:
		return "timer"
	}
}
