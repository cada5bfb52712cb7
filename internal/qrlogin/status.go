package qrlogin

import "strconv"

// Status is a phase of the remote QR handshake as reported by check-status.
type Status int

const (
	StatusExpired        Status = 800
	StatusWaitingForScan Status = 801
	StatusScanned        Status = 802
	StatusConfirmed      Status = 803
)

// Valid reports whether s belongs to the login protocol's closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusExpired, StatusWaitingForScan, StatusScanned, StatusConfirmed:
		return true
	default:
		return false
	}
}

// Terminal reports whether polling stops after s.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusConfirmed
}

func (s Status) String() string {
	switch s {
	case StatusExpired:
		return "expired"
	case StatusWaitingForScan:
		return "waiting"
	case StatusScanned:
		return "scanned"
	case StatusConfirmed:
		return "confirmed"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}
