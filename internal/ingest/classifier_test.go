package ingest

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		topic      string
		wantDevice string
		wantClass  MessageClass
		wantOK     bool
	}{
		{"medicinebox/box-001/status", "box-001", ClassStatus, true},
		{"medicinebox/box-001/events", "box-001", ClassEvent, true},
		{"medicinebox/box-001/config", "", "", false},
		{"medicinebox/box-001/command", "", "", false},
		{"medicinebox/broadcast", "", "", false},
		{"medicinebox//status", "", "", false},
		{"medicinebox/box-001/status/extra", "", "", false},
		{"otherprefix/box-001/status", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			deviceID, class, ok := Classify(tt.topic)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if deviceID != tt.wantDevice {
				t.Errorf("deviceID = %q, want %q", deviceID, tt.wantDevice)
			}
			if class != tt.wantClass {
				t.Errorf("class = %q, want %q", class, tt.wantClass)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    string
	}{
		{"plain ascii", []byte("TAKEN"), "TAKEN"},
		{"chinese", []byte("未知药品"), "未知药品"},
		{"empty", nil, ""},
		{"invalid utf8", []byte{0xff, 0xfe, 0xfd}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodePayload(tt.payload); got != tt.want {
				t.Errorf("DecodePayload() = %q, want %q", got, tt.want)
			}
		})
	}
}
