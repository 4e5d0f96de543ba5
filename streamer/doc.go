// Package streamer drains encoded H.264 output into an RTP session.
//
// A Source yields Annex-B buffers as an encoder would hand them out: one
// buffer may hold several NAL units (SPS, PPS and an IDR slice for example).
// Pipeline splits every buffer with h264.NALUs and hands each unit to a
// Sender, normally an *rtp.Session, from a single goroutine.
//
// ChanSource connects a live encoder goroutine to the pipeline through a
// bounded channel. FileSource replays a raw .h264 file one access unit per
// frame interval, which is how the command line tool streams without a
// camera.
package streamer
