// Package mqtt provides MQTT client connectivity for Junction Core.
//
// This package manages:
//   - Connection to the field broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the field bus connecting the controller to the cabinet's edge
// devices: vehicle detectors, the emergency preemption receiver, the
// operator console, and the lamp driver. The broker decouples the
// controller from device-specific wiring.
//
//	Detectors / Console → MQTT Broker → Junction Core → MQTT Broker → Lamps
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for bench testing
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to every detector on both approaches
//	err = client.Subscribe(mqtt.Topics{}.AllDetectors(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a lamp state
//	client.Publish(mqtt.Topics{}.Lamp("ns_green"), []byte(`{"lit":true}`), 1, true)
package mqtt
