// Package types defines the attachment Store interface, record keys,
// identifiers, configuration, and standard error types shared by the kiosk
// package and its storage backends.
//
// See SPEC_FULL.md § Attachment store and § Configuration.
package types
