// Package ui renders the QR login screen with Bubble Tea.
//
// The model never talks to the network. It reads state.Snapshot on a short
// tick, redraws the code when it changes, and reports user intent through
// the Options callbacks:
//
//   - q, esc, ctrl+c: Quit (the caller cancels the session)
//   - r: Retry, enabled only after the login failed or expired
//   - T: cycle Nightfox, Kanagawa and Slate; ThemeChanged persists the choice
//
// The program exits by itself once the snapshot reaches the confirmed phase.
//
// RenderText turns a qrlogin.Code into half-block text. Codes with a payload
// URL are re-encoded with go-qrcode; image-only codes are decoded from the
// PNG and sampled module by module. StatusText and FailureText are shared
// with the plain line-mode output.
package ui
