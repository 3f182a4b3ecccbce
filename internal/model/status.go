package model

import "time"

// Reachability of a device as seen by the last probe.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// DeviceStatus is computed on every request and never stored.
type DeviceStatus struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
}
