// Package api provides the HTTP client for the camera management service:
// device and structure listing, device command execution and authenticated
// media downloads. The client implements trait.CommandExecutor and
// core.Fetcher so traits and the event media manager can use it directly.
package api
