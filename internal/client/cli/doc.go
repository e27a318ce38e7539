// Package cli provides the interactive brokerdesk back-office client.
//
// It wires configuration, the local store, the REST client and the
// services into a REPL. Typical flow: restore the previous session, start a
// background connectivity watcher, and execute operator commands.
//
// Key features:
//   - Login / Logout (admin logins fall back to a local credential offline)
//   - List / Show / Add / Edit / Delete for properties, reviews, blogs,
//     contact messages and visit requests
//   - Sub-admin management for the owner
//   - A dashboard with per-resource counts
//
// Records created while the backend is unreachable are kept locally and
// shown with a "local" marker. The REPL is started via App.Run(ctx), which
// blocks until the user exits.
package cli
