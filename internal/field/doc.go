// Package field connects the controller to its physical periphery over MQTT.
//
// Two halves:
//
//   - DetectorBank aggregates inbound field signals. Vehicle detectors and
//     the emergency line publish retained level messages; the bank folds
//     any number of detectors per approach into a single demand bit, and
//     latches momentary reset commands until the next controller tick
//     consumes them.
//
//   - LampPanel drives outbound lamp state. Each lamp group gets a
//     retained message on its own topic, so a lamp driver that reconnects
//     mid-phase immediately recovers the current pattern. The panel also
//     publishes the active phase for observers.
//
// The package holds no signal logic: it translates between MQTT payloads
// and the controller's input/output types, nothing more.
package field
