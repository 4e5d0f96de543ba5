// Package status serves a small HTTP API describing the running stream:
// session counters, the SDP a player needs and the device directory.
//
// Every JSON response uses the same envelope:
//
//	{"code":0,"message":"success","data":{...}}
//
// A non-zero code means the request failed; message carries the reason.
package status
