// Package eventmedia correlates streamed device event notifications with
// lazily fetched binary media while bounding memory per device.
//
// The Manager is the orchestrator: it ingests normalized event records,
// merges multi-message event sessions into single logical events, maintains a
// bounded least-recently-used cache of sessions, decides which event is
// currently active, and serves media fetch requests against the device's
// trait capabilities and an optional persistent media store.
//
// One Manager instance serves one device and is expected to be driven by a
// single event ingestion stream; reads may happen concurrently with the
// writer. Network fetches never hold the cache lock.
package eventmedia
