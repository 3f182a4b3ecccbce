package model

import "time"

// Device is a network device in the inventory.
type Device struct {
	ID         string    `gorm:"primaryKey;size:24"`
	Name       string    `gorm:"not null"`
	IPAddress  string    `gorm:"size:15;not null;index:idx_ip"`
	MACAddress string    `gorm:"size:17;not null;uniqueIndex:uniq_mac"`
	Location   string    `gorm:"not null;index:idx_location_type,priority:1"`
	DeviceType string    `gorm:"column:device_type;not null;index:idx_type;index:idx_location_type,priority:2"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// DeviceFields are the client-writable fields of a Device. A PUT replaces
// all of them at once.
type DeviceFields struct {
	Name       string
	IPAddress  string
	MACAddress string
	Location   string
	DeviceType string
}

// NewDevice builds a Device from validated fields, stamping both
// timestamps with now.
func NewDevice(f DeviceFields, now time.Time) *Device {
	return &Device{
		Name:       f.Name,
		IPAddress:  f.IPAddress,
		MACAddress: f.MACAddress,
		Location:   f.Location,
		DeviceType: f.DeviceType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Apply replaces the mutable fields and refreshes UpdatedAt.
func (d *Device) Apply(f DeviceFields, now time.Time) {
	d.Name = f.Name
	d.IPAddress = f.IPAddress
	d.MACAddress = f.MACAddress
	d.Location = f.Location
	d.DeviceType = f.DeviceType
	d.UpdatedAt = now
}

// DeviceResponse is the external JSON shape of a Device.
type DeviceResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IPAddress  string    `json:"ip_address"`
	MACAddress string    `json:"mac_address"`
	Location   string    `json:"location"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewDeviceResponse maps a stored device to its wire form.
func NewDeviceResponse(d *Device) DeviceResponse {
	return DeviceResponse{
		ID:         d.ID,
		Name:       d.Name,
		IPAddress:  d.IPAddress,
		MACAddress: d.MACAddress,
		Location:   d.Location,
		Type:       d.DeviceType,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}
