package signaling

import "github.com/opd-ai/h264push/device"

// Message types.
const (
	TypeOnline  = "ONLINE"
	TypeOffline = "OFFLINE"
	TypeDevices = "DEVICES"
)

// Message is one signaling frame.
type Message struct {
	Type       string        `json:"type"`
	DeviceID   string        `json:"deviceId,omitempty"`
	DeviceName string        `json:"deviceName,omitempty"`
	Devices    []device.Info `json:"devices,omitempty"`
}

func presence(kind string, info *device.Info) Message {
	return Message{Type: kind, DeviceID: info.DeviceID, DeviceName: info.DeviceName}
}
