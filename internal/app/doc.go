// Package app is cadence's composition root.
//
// Run loads config, builds the zap logger, the music API client and the
// credential store, then executes one command:
//
//   - default: print the saved account when its credential is still valid,
//     otherwise run a QR login (Force skips the check)
//   - Status: report the saved credential
//   - Logout: call the remote logout, then clear the saved credential even
//     if the remote call failed
//
// A login drives a qrlogin.Coordinator over netease.QRRemote. In TUI mode
// the session hooks feed a state.Store that the Bubble Tea model reads;
// retry starts a fresh session and quitting cancels the current one. Plain
// mode prints the code as text and one line per status change.
//
// On confirmation the account is looked up with the new cookie. A failed
// lookup is logged and the credential is saved without the account.
// Cancellation by the user or by ctx ends the run without an error.
package app
