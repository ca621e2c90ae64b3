package network

import (
	"fmt"
	"strings"
)

type NetworkState int

const (
	PreFault NetworkState = iota
	DuringFault
	PostFault
)

var NetworkStates = []NetworkState{PreFault, DuringFault, PostFault}

func (s NetworkState) String() string {
	switch s {
	case PreFault:
		return "PRE_FAULT"
	case DuringFault:
		return "DURING_FAULT"
	case PostFault:
		return "POST_FAULT"
	default:
		return fmt.Sprintf("NetworkState(%d)", int(s))
	}
}

func ParseNetworkState(s string) (NetworkState, error) {
	for _, state := range NetworkStates {
		if strings.EqualFold(s, state.String()) {
			return state, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown state %q", ErrNetworkState, s)
}
