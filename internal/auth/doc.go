// Package auth provides the identity primitives used by the parking console
// navigation gate.
//
// This package implements:
//   - The Role enumeration (admin, user)
//   - Unverified decoding of bearer token payloads into a Principal
//
// Decoded claims are hints for page routing only. They are never verified
// here; the parking backend re-checks every API call.
package auth
