// Package device gives the streaming host a stable identity and keeps the
// list of devices a directory service reports as online.
//
// The identity is derived once from a hardware fingerprint, persisted in a
// Store and reloaded on later runs so the ID survives restarts.
package device
