// Package netease provides an HTTP client for a NeteaseCloudMusicApi server.
//
// # Overview
//
// Only the endpoints cadence needs are covered:
//
//   - GET  /login/qr/key     one-time login key
//   - GET  /login/qr/create  render the key (qrimg=true asks for a data URI)
//   - GET  /login/qr/check   scan status (800-803)
//   - GET  /user/account     account behind a cookie
//   - POST /logout           end the remote session
//
// Every request carries a timestamp query parameter so intermediary caches
// never serve a stale status.
//
// # Envelope
//
// The top-level "code" field is authoritative for every endpoint. Key and
// create payloads are read from the nested "data" object; check fields are
// top-level. A check reply without a code is rejected.
//
// # Error Handling
//
// Errors are wrapped with fmt.Errorf:
//
//   - "execute request: dial tcp: connection refused"
//   - "api /login/qr/check returned status 502"
//   - "decode response: unexpected EOF"
//   - "api /user/account returned code 301"
//
// The key and check endpoints return business codes untouched so the
// qrlogin coordinator can judge them. QRRemote adapts Client to
// qrlogin.Remote.
package netease
