// Package qrlogin drives the QR-code login handshake against a music API.
//
// # Overview
//
// A login runs in three sequential steps:
//
//  1. Acquire a one-time key (issue-key)
//  2. Render the key as a scannable code (render-code)
//  3. Poll check-status until the phone confirms or the code expires
//
// Each call to Coordinator.Start owns its key, timer, and hooks. Nothing is
// shared between sessions.
//
// # Status Codes
//
//	800  Expired         terminal, resolves ErrExpired
//	801  WaitingForScan  keep polling
//	802  Scanned         keep polling
//	803  Confirmed       terminal, resolves with the cookie credential
//
// Any other code ends the session with ErrPoll wrapping a *StatusError.
// Transport failures end it with ErrPoll too. Nothing is retried here; the
// caller starts a new session.
//
// # Polling
//
// Checks are spaced by Options.Interval (1.5s by default) and never
// overlap: the wait for the next check starts when the previous check
// returns. The clock is a clockwork.Clock so tests can drive the loop with
// a fake clock.
//
// # Cancellation
//
// Session.Cancel (or cancelling the ctx given to Start) stops the timer,
// aborts in-flight requests, and suppresses every later hook. The session
// then settles with ErrCancelled. Cancel is a no-op once settled.
//
// # Usage Example
//
//	coord := qrlogin.NewCoordinator(remote, qrlogin.Options{Logger: logger})
//	session := coord.Start(ctx, qrlogin.Hooks{
//		OnCodeReady:    func(code qrlogin.Code) { show(code) },
//		OnStatusChange: func(status qrlogin.Status) { update(status) },
//	})
//	cred, err := session.Wait(ctx)
//	switch {
//	case errors.Is(err, qrlogin.ErrExpired):
//		// offer a retry
//	case err != nil:
//		// generic failure
//	}
package qrlogin
