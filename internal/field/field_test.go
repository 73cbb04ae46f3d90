package field

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/junction-core/internal/controller"
	"github.com/nerrad567/junction-core/internal/infrastructure/mqtt"
)

// =============================================================================
// Mock Bus
// =============================================================================

type publishRecord struct {
	topic    string
	payload  []byte
	retained bool
}

// mockBus records publishes and captures subscription handlers so tests
// can inject messages directly.
type mockBus struct {
	mu         sync.Mutex
	handlers   map[string]mqtt.MessageHandler
	published  []publishRecord
	publishErr error
	subErr     error
}

func newMockBus() *mockBus {
	return &mockBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (m *mockBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subErr != nil {
		return m.subErr
	}
	m.handlers[topic] = handler
	return nil
}

func (m *mockBus) Publish(topic string, payload []byte, _ byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishRecord{topic: topic, payload: payload, retained: retained})
	return nil
}

// deliver routes a message to the handler whose subscription covers the topic.
func (m *mockBus) deliver(t *testing.T, pattern, topic string, payload string) {
	t.Helper()
	m.mu.Lock()
	handler, ok := m.handlers[pattern]
	m.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription for %q", pattern)
	}
	if err := handler(topic, []byte(payload)); err != nil {
		t.Fatalf("handler error for %q: %v", topic, err)
	}
}

func (m *mockBus) records() []publishRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishRecord, len(m.published))
	copy(out, m.published)
	return out
}

// startedBank returns a bank subscribed to a fresh mock bus.
func startedBank(t *testing.T) (*DetectorBank, *mockBus) {
	t.Helper()
	bus := newMockBus()
	bank := NewDetectorBank()
	if err := bank.Start(bus, 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return bank, bus
}

// =============================================================================
// DetectorBank Tests
// =============================================================================

func TestDetectorBankSubscribesFieldTopics(t *testing.T) {
	_, bus := startedBank(t)

	for _, topic := range []string{
		"junction/detector/+/+",
		"junction/emergency",
		"junction/command/reset",
	} {
		bus.mu.Lock()
		_, ok := bus.handlers[topic]
		bus.mu.Unlock()
		if !ok {
			t.Errorf("missing subscription for %q", topic)
		}
	}
}

func TestDetectorDemandFanIn(t *testing.T) {
	bank, bus := startedBank(t)
	wild := mqtt.Topics{}.AllDetectors()

	// No detectors reported yet: no demand anywhere.
	in := bank.Sample()
	if in.NsDemand || in.EwDemand {
		t.Errorf("Sample() = %+v, want no demand", in)
	}

	// One of two NS loops occupied is enough for NS demand.
	bus.deliver(t, wild, "junction/detector/ns/loop-1", `{"occupied":true}`)
	bus.deliver(t, wild, "junction/detector/ns/loop-2", `{"occupied":false}`)

	in = bank.Sample()
	if !in.NsDemand {
		t.Error("NsDemand = false, want true with one loop occupied")
	}
	if in.EwDemand {
		t.Error("EwDemand = true, want false")
	}

	// Occupancy is a level: it persists across samples.
	if in = bank.Sample(); !in.NsDemand {
		t.Error("NsDemand dropped between samples, want persistent level")
	}

	// Clearing the occupied loop clears demand.
	bus.deliver(t, wild, "junction/detector/ns/loop-1", `{"occupied":false}`)
	if in = bank.Sample(); in.NsDemand {
		t.Error("NsDemand = true after all loops cleared")
	}
}

func TestDetectorRejectsBadMessages(t *testing.T) {
	bank, bus := startedBank(t)
	bus.mu.Lock()
	handler := bus.handlers["junction/detector/+/+"]
	bus.mu.Unlock()

	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{"unknown approach", "junction/detector/diagonal/loop-1", `{"occupied":true}`},
		{"malformed topic", "junction/detector/ns", `{"occupied":true}`},
		{"bad payload", "junction/detector/ns/loop-1", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := handler(tt.topic, []byte(tt.payload)); err == nil {
				t.Error("handler accepted bad message, want error")
			}
		})
	}

	// Nothing bad leaked into demand.
	if in := bank.Sample(); in.NsDemand || in.EwDemand {
		t.Errorf("Sample() = %+v after rejected messages, want no demand", bank.Sample())
	}
}

func TestEmergencyLevel(t *testing.T) {
	bank, bus := startedBank(t)
	topic := mqtt.Topics{}.Emergency()

	bus.deliver(t, topic, topic, `{"active":true}`)
	if in := bank.Sample(); !in.EmergencyRequested {
		t.Error("EmergencyRequested = false, want true")
	}

	// Level persists until explicitly released.
	if in := bank.Sample(); !in.EmergencyRequested {
		t.Error("EmergencyRequested dropped between samples, want persistent level")
	}

	bus.deliver(t, topic, topic, `{"active":false}`)
	if in := bank.Sample(); in.EmergencyRequested {
		t.Error("EmergencyRequested = true after release")
	}
}

func TestResetLatchConsumedOnce(t *testing.T) {
	bank, bus := startedBank(t)
	topic := mqtt.Topics{}.CommandReset()

	bus.deliver(t, topic, topic, `{}`)

	if in := bank.Sample(); !in.ResetRequested {
		t.Error("ResetRequested = false after reset command, want true")
	}
	// Momentary: the latch is consumed by the first sample.
	if in := bank.Sample(); in.ResetRequested {
		t.Error("ResetRequested = true on second sample, want consumed latch")
	}
}

func TestStartPropagatesSubscribeError(t *testing.T) {
	bus := newMockBus()
	bus.subErr = errors.New("broker unavailable")

	if err := NewDetectorBank().Start(bus, 1); err == nil {
		t.Error("Start() expected error when subscribe fails")
	}
}

// =============================================================================
// LampPanel Tests
// =============================================================================

func TestLampPanelAppliesFullPattern(t *testing.T) {
	bus := newMockBus()
	panel := NewLampPanel(bus, 1)

	pattern := controller.LightsFor(controller.StateNsGreen)
	if err := panel.Apply(pattern); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	records := bus.records()
	if len(records) != 4 {
		t.Fatalf("published %d messages, want 4", len(records))
	}

	want := map[string]bool{
		"junction/lamp/ns_green":  true,
		"junction/lamp/ns_yellow": false,
		"junction/lamp/ew_green":  false,
		"junction/lamp/ew_yellow": false,
	}
	for _, rec := range records {
		if !rec.retained {
			t.Errorf("lamp publish on %q not retained", rec.topic)
		}
		var msg lampMessage
		if err := json.Unmarshal(rec.payload, &msg); err != nil {
			t.Fatalf("payload on %q not valid JSON: %v", rec.topic, err)
		}
		wantLit, ok := want[rec.topic]
		if !ok {
			t.Errorf("unexpected lamp topic %q", rec.topic)
			continue
		}
		if msg.Lit != wantLit {
			t.Errorf("lamp %q lit = %v, want %v", rec.topic, msg.Lit, wantLit)
		}
		delete(want, rec.topic)
	}
	if len(want) != 0 {
		t.Errorf("lamps never published: %v", want)
	}
}

func TestLampPanelApplyAllOff(t *testing.T) {
	bus := newMockBus()
	panel := NewLampPanel(bus, 1)

	if err := panel.Apply(controller.LightPattern{}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	for _, rec := range bus.records() {
		var msg lampMessage
		if err := json.Unmarshal(rec.payload, &msg); err != nil {
			t.Fatalf("payload on %q not valid JSON: %v", rec.topic, err)
		}
		if msg.Lit {
			t.Errorf("lamp %q lit = true, want all off", rec.topic)
		}
	}
}

func TestLampPanelApplyPublishError(t *testing.T) {
	bus := newMockBus()
	bus.publishErr = errors.New("not connected")
	panel := NewLampPanel(bus, 1)

	if err := panel.Apply(controller.LightPattern{NsGreen: true}); err == nil {
		t.Error("Apply() expected error when publish fails")
	}
}

func TestLampPanelPublishPhase(t *testing.T) {
	bus := newMockBus()
	panel := NewLampPanel(bus, 1)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	state := controller.StateEwGreen
	if err := panel.PublishPhase(state, controller.LightsFor(state), now); err != nil {
		t.Fatalf("PublishPhase() error = %v", err)
	}

	records := bus.records()
	if len(records) != 1 {
		t.Fatalf("published %d messages, want 1", len(records))
	}
	rec := records[0]
	if rec.topic != "junction/phase" {
		t.Errorf("topic = %q, want junction/phase", rec.topic)
	}
	if !rec.retained {
		t.Error("phase publish not retained")
	}

	var msg phaseMessage
	if err := json.Unmarshal(rec.payload, &msg); err != nil {
		t.Fatalf("phase payload not valid JSON: %v", err)
	}
	if msg.State != "ew_green" {
		t.Errorf("State = %q, want ew_green", msg.State)
	}
	if !msg.Pattern.EwGreen {
		t.Error("Pattern.EwGreen = false, want true")
	}
	if msg.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("Timestamp = %q, want 2026-03-01T12:00:00Z", msg.Timestamp)
	}
}
