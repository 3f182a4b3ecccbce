package model

import "time"

// DeviceLog is an entry of the logs collection. The collection and its
// indexes are provisioned at startup; no route reads or writes it.
type DeviceLog struct {
	ID        string    `gorm:"primaryKey;size:24"`
	DeviceID  string    `gorm:"size:24;not null;index:idx_log_device"`
	Timestamp time.Time `gorm:"not null;index:idx_log_ts"`
	Status    string    `gorm:"size:16"`
	Message   string
}
