package influxdb

import (
	"errors"
	"testing"

	"github.com/medboxlab/medbox-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestCloseNilClient(t *testing.T) {
	var c Client
	if err := c.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

func TestWritesOnDisconnectedClientAreNoOps(t *testing.T) {
	var c Client

	// Must not panic; writes are dropped when disconnected.
	c.WriteHeartbeat("box-001", true)
	c.WriteEventMetric("box-001", "MEDICINE_TAKEN")
	c.WritePresenceTransition("box-001", false)
	c.WritePoint("custom", nil, map[string]interface{}{"v": 1})
	c.Flush()

	if c.IsConnected() {
		t.Error("IsConnected() = true for zero client, want false")
	}
}
