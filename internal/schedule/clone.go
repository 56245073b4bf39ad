package schedule

import (
	"github.com/tiendc/go-deepcopy"

	"github.com/optipresta/optipresta/internal/contract"
)

// CloneEvent deep-copies an event, slices and nested structs included.
// Every write path in this package goes copy-then-mutate-then-publish, so
// a partially edited event is never visible through the shared list.
func CloneEvent(ev contract.Event) contract.Event {
	var out contract.Event
	if err := deepcopy.Copy(&out, &ev); err != nil {
		// The contract types contain only data fields; a copy failure here
		// means a programming error, not bad input.
		panic(err)
	}
	return out
}
