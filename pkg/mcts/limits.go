package mcts

import (
	"fmt"
	"strings"
)

// Budget of a single search. Only the limits set through the setters apply,
// a Limits with none of them set searches until stopped.
type Limits struct {
	Depth    int
	Cycles   uint32
	Movetime int // milliseconds, 0 allows a single iteration
	ByteSize int64
	MultiPv  int

	// StopReason bits of the limits in use
	active StopReason
}

func DefaultLimits() *Limits {
	return &Limits{MultiPv: 1}
}

func (l Limits) String() string {
	if l.Infinite() {
		return fmt.Sprintf("infinite multipv=%d", l.MultiPv)
	}

	parts := make([]string, 0, 5)
	if l.Has(StopMovetime) {
		parts = append(parts, fmt.Sprintf("movetime=%dms", l.Movetime))
	}
	if l.Has(StopCycles) {
		parts = append(parts, fmt.Sprintf("cycles=%d", l.Cycles))
	}
	if l.Has(StopDepth) {
		parts = append(parts, fmt.Sprintf("depth=%d", l.Depth))
	}
	if l.Has(StopMemory) {
		parts = append(parts, fmt.Sprintf("memory=%dB", l.ByteSize))
	}
	parts = append(parts, fmt.Sprintf("multipv=%d", l.MultiPv))
	return strings.Join(parts, " ")
}

// Whether the limit behind 'reason' is in use
func (l *Limits) Has(reason StopReason) bool {
	return l.active&reason != 0
}

func (l *Limits) Infinite() bool {
	return l.active == StopNone
}

// Drop every limit, the search then runs until stopped
func (l *Limits) SetInfinite() *Limits {
	l.active = StopNone
	return l
}

// Maximum depth of the tree
func (l *Limits) SetDepth(depth int) *Limits {
	l.Depth = depth
	l.active |= StopDepth
	return l
}

// Number of full iterations (selection, expansion, rollout, backpropagation)
func (l *Limits) SetCycles(cycles uint32) *Limits {
	l.Cycles = cycles
	l.active |= StopCycles
	return l
}

// Wall clock budget in milliseconds, a negative value removes it
func (l *Limits) SetMovetime(movetime int) *Limits {
	if movetime < 0 {
		l.active &^= StopMovetime
		return l
	}
	l.Movetime = movetime
	l.active |= StopMovetime
	return l
}

func (l *Limits) SetMultiPv(multipv int) *Limits {
	l.MultiPv = max(1, multipv)
	return l
}

func (l *Limits) SetMbSize(mbsize int) *Limits {
	return l.SetByteSize(int64(mbsize) << 20)
}

// Memory cap of the tree. Together with a movetime or cycles limit the tree
// just stops growing once full and the rest of the budget goes to rollouts,
// on its own it ends the search.
func (l *Limits) SetByteSize(bytesize int64) *Limits {
	l.ByteSize = bytesize
	l.active |= StopMemory
	return l
}
