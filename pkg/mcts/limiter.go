package mcts

import (
	"context"
	"math"
	"strings"
	"sync/atomic"
	"time"
)

// Why the search ended, limits reached at the same time are OR'ed together
type StopReason int

const (
	StopNone      StopReason = 0
	StopInterrupt StopReason = 1 << (iota - 1) // Tree.Stop or context cancellation
	StopMovetime
	StopMemory
	StopDepth
	StopCycles
)

var stopReasonNames = []struct {
	flag StopReason
	name string
}{
	{StopInterrupt, "Interrupt"},
	{StopMovetime, "Movetime"},
	{StopMemory, "Memory"},
	{StopDepth, "Depth"},
	{StopCycles, "Cycles"},
}

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	names := make([]string, 0, len(stopReasonNames))
	for _, r := range stopReasonNames {
		if sr&r.flag != 0 {
			names = append(names, r.name)
		}
	}
	return strings.Join(names, "|")
}

type LimiterLike interface {
	SetContext(ctx context.Context)
	SetLimits(*Limits)
	Limits() *Limits
	// Milliseconds since the last Reset, at least 1
	Elapsed() uint32
	SetStop(bool)
	Stop() bool
	// Called when a search starts
	Reset()
	// Whether the tree may still grow
	Expand() bool
	// Whether the search should run another iteration
	Ok(size, depth, cycles uint32) bool
	// Valid once EvaluateStopReason was called
	StopReason() StopReason
	EvaluateStopReason(size, depth, cycles uint32)
}

// Longest budget a searchClock can hold without overflowing time.Duration
const maxMovetimeMs = int64(math.MaxInt64 / time.Millisecond)

// Wall clock of a search, a negative budget never runs out
type searchClock struct {
	start  time.Time
	budget time.Duration
}

func (c *searchClock) restart(movetimeMs int) {
	c.start = time.Now()
	c.budget = -1
	if movetimeMs >= 0 {
		c.budget = time.Duration(min(int64(movetimeMs), maxMovetimeMs)) * time.Millisecond
	}
}

func (c *searchClock) expired() bool {
	return c.budget >= 0 && time.Since(c.start) >= c.budget
}

func (c *searchClock) elapsedMs() uint32 {
	return uint32(max(time.Since(c.start).Milliseconds(), 1))
}

type Limiter struct {
	limits   *Limits
	clock    searchClock
	nodeSize uint32
	maxNodes uint32
	expand   atomic.Bool
	stop     atomic.Bool
	reason   StopReason
	ctx      context.Context
}

// 'nodesize' is the approximate size of a single node in bytes, used to
// turn the memory limit into a node count
func NewLimiter(nodesize uint32) *Limiter {
	limiter := &Limiter{
		limits:   DefaultLimits(),
		nodeSize: max(nodesize, 1),
		ctx:      context.Background(),
	}
	limiter.clock.restart(-1)
	limiter.expand.Store(true)
	return limiter
}

// The stop flag is left untouched, so a stop requested before the search
// started still interrupts it
func (l *Limiter) Reset() {
	movetime := -1
	if l.limits.Has(StopMovetime) {
		movetime = l.limits.Movetime
	}
	l.clock.restart(movetime)
	l.expand.Store(true)
	l.reason = StopNone

	l.maxNodes = math.MaxUint32
	if l.limits.Has(StopMemory) {
		l.maxNodes = uint32(min(max(l.limits.ByteSize, 0)/int64(l.nodeSize), math.MaxUint32))
	}
}

func (l *Limiter) SetContext(ctx context.Context) {
	l.ctx = ctx
}

func (l *Limiter) SetLimits(limits *Limits) {
	l.limits = limits
}

func (l *Limiter) Limits() *Limits {
	return l.limits
}

func (l *Limiter) Elapsed() uint32 {
	return l.clock.elapsedMs()
}

func (l *Limiter) SetStop(v bool) {
	l.stop.Store(v)
}

func (l *Limiter) Stop() bool {
	if l.ctx.Err() != nil {
		l.stop.Store(true)
	}
	return l.stop.Load()
}

func (l *Limiter) Expand() bool {
	return l.expand.Load()
}

func (l *Limiter) Ok(size, depth, cycles uint32) bool {
	return l.reached(size, depth, cycles) == StopNone
}

func (l *Limiter) EvaluateStopReason(size, depth, cycles uint32) {
	l.reason = l.reached(size, depth, cycles)
}

func (l *Limiter) StopReason() StopReason {
	return l.reason
}

// Limits reached by a tree of 'size' nodes, 'depth' deep after 'cycles'
// iterations. A full tree with time or cycles left only stops expanding.
func (l *Limiter) reached(size, depth, cycles uint32) StopReason {
	reason := StopNone
	if l.Stop() {
		reason |= StopInterrupt
	}

	limits := l.limits
	if limits.Has(StopMovetime) && l.clock.expired() {
		reason |= StopMovetime
	}
	if limits.Has(StopMemory) && size >= l.maxNodes {
		reason |= StopMemory
	}
	if limits.Has(StopDepth) && int(depth) >= limits.Depth {
		reason |= StopDepth
	}
	if limits.Has(StopCycles) && cycles >= limits.Cycles {
		reason |= StopCycles
	}

	if reason&StopMemory != 0 && limits.Has(StopMovetime|StopCycles) {
		l.expand.Store(false)
		reason &^= StopMemory
	}
	return reason
}
