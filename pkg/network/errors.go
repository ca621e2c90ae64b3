package network

import (
	"errors"
	"fmt"
)

var (
	ErrElementNotFound          = errors.New("network: element not found")
	ErrParallel                 = errors.New("network: no element with this parallel id")
	ErrSimplifiedNetworkBreaker = errors.New("network: simplified network has no breaker")
	ErrSimplifiedNetworkExists  = errors.New("network: simplified pre-fault network already exists")
	ErrNetworkState             = errors.New("network: state not available, events were not provided")
	ErrMultipleSlackBus         = errors.New("network: more than one slack bus")
	ErrNoSlackBus               = errors.New("network: no slack bus")
	ErrCoupledBuses             = errors.New("network: buses cannot be coupled")
	ErrBusVoltage               = errors.New("network: bus voltage is unresolved")
	ErrDuplicateBus             = errors.New("network: duplicate bus name")
	ErrNoRelevantFailureEvent   = errors.New("network: failure events only happen on disconnected elements")
	ErrLineAlreadyOpen          = errors.New("network: line is already open")
	ErrLoadFlow                 = errors.New("network: missing load flow data")
	ErrBranchContent            = errors.New("network: unexpected element in branch")
)

// ElementNotFoundError names the element a lookup failed on.
type ElementNotFoundError struct {
	Kind string
	Name string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrElementNotFound, e.Kind, e.Name)
}

func (e *ElementNotFoundError) Unwrap() error {
	return ErrElementNotFound
}

func notFound(kind, name string) error {
	return &ElementNotFoundError{Kind: kind, Name: name}
}
