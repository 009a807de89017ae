// Package device models a camera device and the manager that tracks the
// current state of all devices.
//
// A Device owns its trait set and one eventmedia.Manager; feed messages are
// routed to it by the device Manager, which validates the resource name,
// applies trait value updates (discarding stale ones) and hands event records
// to the media manager.
package device
