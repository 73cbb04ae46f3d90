package mqtt

import "fmt"

// Topic prefixes for the junction field bus.
//
// All field topics use the flat scheme: junction/{category}/... so that a
// single multi-level wildcard covers one concern across both approaches.
const (
	// TopicPrefix is the base for all junction topics.
	TopicPrefix = "junction"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "junction/system"
)

// Approach identifiers used in detector topics.
const (
	ApproachNS = "ns"
	ApproachEW = "ew"
)

// Topics provides builders for junction MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	t := topics.Detector("ns", "loop-1")
//	// Returns: "junction/detector/ns/loop-1"
type Topics struct{}

// Detector returns the topic a vehicle detector publishes its occupancy on.
// Payload: {"occupied": bool}, retained (level semantics).
//
// Example: junction/detector/ns/loop-1
func (Topics) Detector(approach, detectorID string) string {
	return fmt.Sprintf("%s/detector/%s/%s", TopicPrefix, approach, detectorID)
}

// AllDetectors returns the wildcard covering every detector on every approach.
func (Topics) AllDetectors() string {
	return fmt.Sprintf("%s/detector/+/+", TopicPrefix)
}

// ApproachDetectors returns the wildcard covering one approach's detectors.
func (Topics) ApproachDetectors(approach string) string {
	return fmt.Sprintf("%s/detector/%s/+", TopicPrefix, approach)
}

// Emergency returns the topic of the emergency preemption line.
// Payload: {"active": bool}, retained (level semantics).
func (Topics) Emergency() string {
	return TopicPrefix + "/emergency"
}

// CommandReset returns the topic the operator console publishes reset
// commands on. Momentary: any message latches one reset.
func (Topics) CommandReset() string {
	return TopicPrefix + "/command/reset"
}

// Lamp returns the topic a lamp group's state is driven on.
// Payload: {"lit": bool}, retained so the lamp driver recovers state on
// reconnect.
//
// Example: junction/lamp/ns_green
func (Topics) Lamp(lamp string) string {
	return fmt.Sprintf("%s/lamp/%s", TopicPrefix, lamp)
}

// Phase returns the topic the controller publishes its current phase on.
// Retained, for observers and dashboards.
func (Topics) Phase() string {
	return TopicPrefix + "/phase"
}

// SystemStatus returns the topic for controller online/offline status (LWT).
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
