// Package core provides the foundational domain types and interfaces used by
// camkit. It defines the core abstractions for:
//
//   - Event records and the wire envelope they arrive in
//   - Media (binary image / clip contents plus classification)
//   - Pluggable media stores for persisted event media
//   - Trait capabilities that produce fetchable event image descriptors
//   - The transport used to download descriptor bytes
//
// The package intentionally keeps implementation concerns (persistence, HTTP
// clients, concrete traits) out of scope, exposing small interfaces to enable
// custom backends and extensions.
package core
