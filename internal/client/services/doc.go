// Package services contains the application services of the brokerdesk
// client.
//
//   - AuthService is the Authorization Model: it owns the current principal
//     and session token, answers permission checks, and runs login, logout
//     and session restore with a local fallback for admin logins.
//   - ResourceService is the Resilient Resource Client for one resource
//     type. Reads merge locally created records into backend results; when
//     the backend is unreachable every operation is served from the local
//     store instead.
//   - SubAdminService manages sub-admin accounts (owner only).
//   - Monitor tracks backend reachability in the background.
//
// Permission checks never touch the network and fail closed.
package services
