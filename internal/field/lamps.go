package field

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/junction-core/internal/controller"
	"github.com/nerrad567/junction-core/internal/infrastructure/mqtt"
)

// Lamp group identifiers, used as the final topic segment.
const (
	LampNsGreen  = "ns_green"
	LampNsYellow = "ns_yellow"
	LampEwGreen  = "ew_green"
	LampEwYellow = "ew_yellow"
)

// lampMessage is the retained payload driven to each lamp group topic.
type lampMessage struct {
	Lit bool `json:"lit"`
}

// phaseMessage is the retained payload on the phase topic.
type phaseMessage struct {
	State     string                  `json:"state"`
	Pattern   controller.LightPattern `json:"pattern"`
	Timestamp string                  `json:"timestamp"`
}

// LampPanel drives the four signal head groups over MQTT.
//
// All lamp publishes are retained so a lamp driver reconnecting mid-phase
// immediately receives the current level for its group.
type LampPanel struct {
	bus Bus
	qos byte
}

// NewLampPanel creates a panel publishing on the given bus.
func NewLampPanel(bus Bus, qos byte) *LampPanel {
	return &LampPanel{bus: bus, qos: qos}
}

// Apply drives a full lamp pattern to the four lamp group topics.
//
// Every group is published on every call, lit or not, so the retained
// levels always describe the complete pattern. Publish failures do not
// stop the remaining groups; all errors are joined and returned.
func (p *LampPanel) Apply(pattern controller.LightPattern) error {
	topics := mqtt.Topics{}

	lamps := []struct {
		name string
		lit  bool
	}{
		{LampNsGreen, pattern.NsGreen},
		{LampNsYellow, pattern.NsYellow},
		{LampEwGreen, pattern.EwGreen},
		{LampEwYellow, pattern.EwYellow},
	}

	var errs []error
	for _, lamp := range lamps {
		payload, err := json.Marshal(lampMessage{Lit: lamp.lit})
		if err != nil {
			errs = append(errs, fmt.Errorf("marshalling lamp %s: %w", lamp.name, err))
			continue
		}
		if err := p.bus.Publish(topics.Lamp(lamp.name), payload, p.qos, true); err != nil {
			errs = append(errs, fmt.Errorf("publishing lamp %s: %w", lamp.name, err))
		}
	}

	return errors.Join(errs...)
}

// PublishPhase announces the active phase and its pattern on the phase
// topic, retained for observers and dashboards.
func (p *LampPanel) PublishPhase(state controller.State, pattern controller.LightPattern, now time.Time) error {
	payload, err := json.Marshal(phaseMessage{
		State:     state.String(),
		Pattern:   pattern,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshalling phase: %w", err)
	}

	if err := p.bus.Publish(mqtt.Topics{}.Phase(), payload, p.qos, true); err != nil {
		return fmt.Errorf("publishing phase: %w", err)
	}

	return nil
}
