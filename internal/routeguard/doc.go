// Package routeguard decides whether a page navigation may proceed.
//
// Every navigation is evaluated from scratch against the credential currently
// held by the session's store:
//   - pages without access flags are always admitted
//   - protected pages need a decodable credential, otherwise the user is sent
//     to the login page
//   - role-restricted pages send users of another role to their own landing page
//   - guest-only pages (login, register) send signed-in users to their landing page
//
// Decoded claims are never verified. The guard is traffic control for the
// console, not a security boundary.
package routeguard
