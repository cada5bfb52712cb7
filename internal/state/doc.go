// Package state holds the login snapshot shared between the coordinator
// hooks and the UI.
//
// Hooks write through Reset, SetCode, SetStatus, SetMessage and Finish. The
// UI reads Snapshot on its own tick. All access goes through a RWMutex and
// Snapshot returns a copy, so the zero Store is ready to use.
//
// Once a login is confirmed or failed, later status writes keep their value
// but no longer move the phase; only Reset starts over.
package state
