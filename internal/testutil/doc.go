// Package testutil provides fluent builders and capability fakes shared by
// tests across packages. It is internal so the public API surface stays
// clean while tests avoid copy-pasted fixture code.
package testutil
