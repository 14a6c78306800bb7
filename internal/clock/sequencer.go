// Package clock gates every ledger operation on a single logical clock.
package clock

import (
	"fmt"

	"github.com/saltyjared/banking-system/internal/model"
)

// Sequencer admits timestamps in strictly increasing order.
type Sequencer struct {
	last    int64
	started bool
}

// NewSequencer creates a Sequencer that has admitted nothing yet.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Admit records ts as the new high-water mark. It fails with
// model.ErrOutOfOrder, leaving the mark untouched, unless ts is greater than
// every timestamp admitted before.
func (s *Sequencer) Admit(ts int64) error {
	if s.started && ts <= s.last {
		return fmt.Errorf("%w: %d is not after %d", model.ErrOutOfOrder, ts, s.last)
	}
	s.last = ts
	s.started = true
	return nil
}

// Last returns the high-water mark and whether any timestamp was admitted.
func (s *Sequencer) Last() (int64, bool) {
	return s.last, s.started
}
