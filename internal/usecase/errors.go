package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource conflict")
	ErrPickLocked   = errors.New("picks are locked for this date")

	ErrInsufficientHistory   = errors.New("insufficient game history")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrLineUnavailable       = errors.New("sportsbook line unavailable")
	ErrNoProviderConfigured  = errors.New("no sportsbook provider configured")
	ErrProjectionUnavailable = errors.New("projection unavailable")
	ErrGameNotFinal          = errors.New("game not final")
)

// ProjectionUnavailableError is returned when both the preferred projector and
// the fallback failed. errors.Is matches ErrProjectionUnavailable and both causes.
type ProjectionUnavailableError struct {
	Primary  error
	Fallback error
}

func (e *ProjectionUnavailableError) Error() string {
	return fmt.Sprintf("%v: primary: %v; fallback: %v", ErrProjectionUnavailable, e.Primary, e.Fallback)
}

func (e *ProjectionUnavailableError) Unwrap() []error {
	out := []error{ErrProjectionUnavailable}
	if e.Primary != nil {
		out = append(out, e.Primary)
	}
	if e.Fallback != nil {
		out = append(out, e.Fallback)
	}
	return out
}

const (
	ReasonProjectionUnavailable = "projection_unavailable"
	ReasonGameNotFinal          = "game_not_final"
	ReasonLineUnavailable       = "line_unavailable"
	ReasonNoProviderConfigured  = "no_provider_configured"
	ReasonInsufficientHistory   = "insufficient_history"
	ReasonUpstreamUnavailable   = "upstream_unavailable"
	ReasonNotFound              = "not_found"
	ReasonInvalidInput          = "invalid_input"
	ReasonPickLocked            = "pick_locked"
	ReasonConflict              = "conflict"
	ReasonInternal              = "internal"
)

var reasonOrder = []struct {
	err    error
	reason string
}{
	{ErrProjectionUnavailable, ReasonProjectionUnavailable},
	{ErrGameNotFinal, ReasonGameNotFinal},
	{ErrLineUnavailable, ReasonLineUnavailable},
	{ErrNoProviderConfigured, ReasonNoProviderConfigured},
	{ErrInsufficientHistory, ReasonInsufficientHistory},
	{ErrUpstreamUnavailable, ReasonUpstreamUnavailable},
	{ErrNotFound, ReasonNotFound},
	{ErrInvalidInput, ReasonInvalidInput},
	{ErrPickLocked, ReasonPickLocked},
	{ErrConflict, ReasonConflict},
}

// ReasonOf returns the machine-readable code for err, or "" for nil.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	for _, item := range reasonOrder {
		if errors.Is(err, item.err) {
			return item.reason
		}
	}
	return ReasonInternal
}
