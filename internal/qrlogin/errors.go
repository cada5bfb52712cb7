package qrlogin

import (
	"errors"
	"fmt"
)

var (
	ErrKeyIssuance = errors.New("qrlogin: key issuance failed")
	ErrCodeRender  = errors.New("qrlogin: code render failed")
	ErrPoll        = errors.New("qrlogin: status poll failed")
	ErrExpired     = errors.New("qrlogin: code expired")
	ErrCancelled   = errors.New("qrlogin: login cancelled")
)

// StatusError reports a check-status reply whose code is outside the
// protocol's status set. It is always wrapped together with ErrPoll.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code %d (%s)", e.Code, e.Message)
}
