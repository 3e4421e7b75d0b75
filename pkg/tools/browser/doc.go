// Package browser adapts Playwright to the small surface the workflows need.
//
// Workflows never touch playwright-go directly. They receive a Session from
// an Opener, address elements with Target values and wait on remote UI state
// through the probes in this package, which plug into poll.Run.
//
// # Sessions
//
// A Launcher installs and starts Playwright once per process and opens
// sessions in one of two modes:
//
//   - persistent: a Chromium profile directory shared across runs, used for
//     interactive logins
//   - ephemeral: a fresh context seeded from a StateHandle's storage-state file
//
// # Session state
//
// A StateHandle names the storage-state file a workflow reads at start and
// a successful login overwrites. Handles are passed explicitly; nothing in
// this package resolves a well-known path on its own.
//
// # Probes
//
// VisibleProbe, HiddenProbe, URLProbe, FailIfVisible and DeployedURLProbe
// perform one check each. Transient locator errors read as Pending; a closed
// page reads as ProbeFailed wrapping ErrPageClosed.
package browser
