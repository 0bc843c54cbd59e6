package mqtt

import (
	"errors"
	"testing"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// disconnectedClient returns a Client backed by a paho client that has
// never connected. No broker is required.
func disconnectedClient() *Client {
	return &Client{
		client:        pahomqtt.NewClient(pahomqtt.NewClientOptions()),
		subscriptions: make(map[string]subscription),
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestPublishValidation(t *testing.T) {
	client := disconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "medicinebox/box-001/command", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "medicinebox/box-001/command", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "medicinebox/box-001/command", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := disconnectedClient()
	handler := func(_ string, _ []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		wantErr error
	}{
		{"empty topic", "", 1, handler, ErrInvalidTopic},
		{"invalid qos", "medicinebox/+/status", 3, handler, ErrInvalidQoS},
		{"nil handler", "medicinebox/+/status", 1, nil, ErrSubscribeFailed},
		{"not connected", "medicinebox/+/status", 1, handler, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Subscribe(tt.topic, tt.qos, tt.handler)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", client.SubscriptionCount())
	}
}

func TestHasSubscriptionTracking(t *testing.T) {
	client := disconnectedClient()

	if client.HasSubscription("medicinebox/+/status") {
		t.Error("HasSubscription() = true for untracked topic")
	}
}
