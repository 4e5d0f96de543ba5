// Package signaling announces this device to a presence server over a
// WebSocket.
//
// Messages are JSON text frames:
//
//	{"type":"ONLINE","deviceId":"043f817355878ce2","deviceName":"Google Pixel 7"}
//	{"type":"OFFLINE","deviceId":"043f817355878ce2","deviceName":"Google Pixel 7"}
//
// The server may push {"type":"DEVICES","devices":[...]} with the current
// directory; the client forwards it to a device.Repository when one is set.
package signaling
