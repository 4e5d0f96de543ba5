package device

// Info identifies a device on the signaling server and in the directory.
type Info struct {
	DeviceID   string `json:"deviceId" yaml:"device_id"`
	DeviceName string `json:"deviceName" yaml:"device_name"`
	IsOnline   bool   `json:"isOnline" yaml:"-"`
}

// Fingerprint is the hardware description a device ID is derived from.
type Fingerprint struct {
	Brand        string
	Manufacturer string
	Model        string
	Device       string
	Board        string
}

// String joins the fields with '|' in a fixed order.
func (f Fingerprint) String() string {
	return f.Brand + "|" + f.Manufacturer + "|" + f.Model + "|" + f.Device + "|" + f.Board
}

// IsZero reports whether every field is empty.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}
