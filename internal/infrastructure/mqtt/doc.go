// Package mqtt provides MQTT client connectivity for medbox-core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for backend offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Dispenser devices publish heartbeats and events over MQTT; the backend
// subscribes to the device-side topics and publishes configuration and
// commands back. The broker decouples the backend from individual devices.
//
//	medbox-core ↔ MQTT Broker ↔ Dispenser fleet
//
// # Topic grammar
//
// Device-to-backend:
//   - medicinebox/{deviceId}/status   heartbeat and state snapshots
//   - medicinebox/{deviceId}/events   medication and alarm events
//
// Backend-to-device (QoS 1):
//   - medicinebox/{deviceId}/config   medicine schedule sync
//   - medicinebox/{deviceId}/command  direct device commands
//   - medicinebox/broadcast           fleet-wide announcements
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllStatus(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	topic := mqtt.Topics{}.Command("box-001")
//	client.Publish(topic, []byte(`{"type":"COMMAND","command":"OPEN_BOX"}`), 1, false)
package mqtt
