package medicine

import "time"

// Medicine is one scheduled dose on one device.
type Medicine struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Hour      int       `json:"hour"`
	Minute    int       `json:"minute"`
	BoxNum    int       `json:"boxNum"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
