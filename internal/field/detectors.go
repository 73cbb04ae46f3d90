package field

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nerrad567/junction-core/internal/controller"
	"github.com/nerrad567/junction-core/internal/infrastructure/mqtt"
)

// Bus is the slice of the MQTT client the field layer needs.
type Bus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// detectorMessage is the payload a vehicle detector publishes.
// Retained: the broker holds the last level for each detector.
type detectorMessage struct {
	Occupied bool `json:"occupied"`
}

// emergencyMessage is the payload on the emergency preemption line.
type emergencyMessage struct {
	Active bool `json:"active"`
}

// DetectorBank aggregates field inputs into controller inputs.
//
// Levels (detector occupancy, emergency line) persist between samples.
// Reset commands are momentary: one message latches one reset, consumed
// by the next Sample call.
//
// Thread Safety:
//   - Handlers run on MQTT delivery goroutines; Sample runs on the tick
//     loop. All shared state is mutex-guarded.
type DetectorBank struct {
	mu sync.Mutex

	// occupancy maps approach -> detector ID -> occupied level.
	occupancy map[string]map[string]bool

	emergency  bool
	resetLatch bool
}

// NewDetectorBank creates an empty detector bank.
// All approaches start with no demand, no emergency, no pending reset.
func NewDetectorBank() *DetectorBank {
	return &DetectorBank{
		occupancy: map[string]map[string]bool{
			mqtt.ApproachNS: {},
			mqtt.ApproachEW: {},
		},
	}
}

// Start subscribes the bank to its field topics.
//
// Subscribes to:
//   - junction/detector/+/+ (retained occupancy levels)
//   - junction/emergency (retained preemption level)
//   - junction/command/reset (momentary)
//
// Returns the first subscription error, if any.
func (b *DetectorBank) Start(bus Bus, qos byte) error {
	topics := mqtt.Topics{}

	if err := bus.Subscribe(topics.AllDetectors(), qos, b.handleDetector); err != nil {
		return fmt.Errorf("subscribing detectors: %w", err)
	}
	if err := bus.Subscribe(topics.Emergency(), qos, b.handleEmergency); err != nil {
		return fmt.Errorf("subscribing emergency line: %w", err)
	}
	if err := bus.Subscribe(topics.CommandReset(), qos, b.handleReset); err != nil {
		return fmt.Errorf("subscribing reset command: %w", err)
	}

	return nil
}

// handleDetector updates one detector's occupancy level.
//
// Topic shape: junction/detector/{approach}/{detectorID}. Messages on
// unknown approaches or with unparseable payloads are rejected; the
// stored level is left unchanged.
func (b *DetectorBank) handleDetector(topic string, payload []byte) error {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 {
		return fmt.Errorf("malformed detector topic %q", topic)
	}
	approach, detectorID := parts[2], parts[3]
	if detectorID == "" {
		return fmt.Errorf("empty detector id in topic %q", topic)
	}

	var msg detectorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("parsing detector payload on %q: %w", topic, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	detectors, ok := b.occupancy[approach]
	if !ok {
		return fmt.Errorf("unknown approach %q in topic %q", approach, topic)
	}
	detectors[detectorID] = msg.Occupied

	return nil
}

// handleEmergency updates the emergency preemption level.
func (b *DetectorBank) handleEmergency(topic string, payload []byte) error {
	var msg emergencyMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("parsing emergency payload: %w", err)
	}

	b.mu.Lock()
	b.emergency = msg.Active
	b.mu.Unlock()

	return nil
}

// handleReset latches a pending reset. Any payload counts; the command
// is momentary, not a level.
func (b *DetectorBank) handleReset(_ string, _ []byte) error {
	b.mu.Lock()
	b.resetLatch = true
	b.mu.Unlock()
	return nil
}

// Sample returns the current controller inputs and consumes any pending
// reset latch. Demand per approach is the OR of that approach's detector
// levels.
func (b *DetectorBank) Sample() controller.Inputs {
	b.mu.Lock()
	defer b.mu.Unlock()

	in := controller.Inputs{
		ResetRequested:     b.resetLatch,
		EmergencyRequested: b.emergency,
		NsDemand:           anyOccupied(b.occupancy[mqtt.ApproachNS]),
		EwDemand:           anyOccupied(b.occupancy[mqtt.ApproachEW]),
	}
	b.resetLatch = false

	return in
}

func anyOccupied(detectors map[string]bool) bool {
	for _, occupied := range detectors {
		if occupied {
			return true
		}
	}
	return false
}
