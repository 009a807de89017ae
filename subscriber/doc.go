// Package subscriber consumes the device event feed over a websocket,
// decodes each frame into an event message, hands it to a handler and
// acknowledges it. Connections are re-established with exponential backoff
// until the subscriber is stopped.
package subscriber
