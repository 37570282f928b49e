package mcts

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestLimiterSingleLimits(t *testing.T) {
	limiter := LimiterLike(NewLimiter(32))

	if !limiter.Ok(1000000, 1000000, 1) || !limiter.Expand() {
		t.Error("Default limiter should search infinitely, expand=", limiter.Expand())
	}

	limiter.SetLimits(DefaultLimits().SetCycles(100))
	limiter.Reset()
	if ok := limiter.Ok(1, 1, 101); ok {
		t.Errorf("<Cycles=%d: ok=%v, want=%v", 101, ok, !ok)
	}

	if ok := limiter.Ok(1, 1, 99); !ok {
		t.Errorf(">Cycles=%d: ok=%v, want=%v", 99, ok, !ok)
	}

	limiter.SetLimits(DefaultLimits().SetByteSize(10 * 32))
	limiter.Reset()

	if ok := limiter.Ok(10, 1, 1); ok {
		t.Errorf("<Size=%d: ok=%v, want=%v", 10, ok, !ok)
	}

	if ok := limiter.Ok(9, 1, 99); !ok {
		t.Errorf(">Size=%d: ok=%v, want=%v", 9, ok, !ok)
	}

	limiter.SetLimits(DefaultLimits().SetDepth(5))
	limiter.Reset()
	if ok := limiter.Ok(1, 5, 1); ok {
		t.Errorf("<Depth=%d: ok=%v, want=%v", 5, ok, !ok)
	}

	limiter.SetLimits(DefaultLimits().SetMovetime(100))
	limiter.Reset()
	time.Sleep(time.Millisecond * 101)

	if ok := limiter.Ok(1, 1, 1); ok {
		t.Errorf("<Movetime: ok=%v, want=%v", ok, !ok)
	}

	limiter.Reset()
	if ok := limiter.Ok(1, 1, 1); !ok {
		t.Errorf(">Movetime: ok=%v, want=%v", ok, !ok)
	}
}

func TestLimiterZeroMovetime(t *testing.T) {
	limiter := NewLimiter(32)
	limiter.SetLimits(DefaultLimits().SetMovetime(0))
	limiter.Reset()

	if limiter.Ok(1, 1, 1) {
		t.Error("Zero movetime should end right away")
	}

	limiter.EvaluateStopReason(1, 1, 1)
	if reason := limiter.StopReason(); reason != StopMovetime {
		t.Errorf("StopReason=%v, want=%v", reason, StopMovetime)
	}
}

func TestLimiterCombos(t *testing.T) {

	limiter := LimiterLike(NewLimiter(32))

	// Cycles + memory limit, if memory exhausted, wait for 'cycles' and disable expanding
	limiter.SetLimits(DefaultLimits().SetCycles(100).SetByteSize(32 * 10))
	limiter.Reset()

	if !(limiter.Ok(10, 1, 99) && !limiter.Expand()) {
		t.Error(">Cycles+Memory failed: ok=", limiter.Ok(10, 1, 99), "expand=", limiter.Expand())
	}
	if !(!limiter.Ok(10, 1, 101) && !limiter.Expand()) {
		t.Error("<Cycles+Memory failed: ok=", limiter.Ok(10, 1, 101), "expand=", limiter.Expand())
	}

	// Time + memory limit
	limiter.SetLimits(DefaultLimits().SetMovetime(100).SetByteSize(32 * 10))
	limiter.Reset()

	if !(limiter.Ok(100, 1, 1) && !limiter.Expand()) {
		t.Error(">Time+Memory failed: ok=", limiter.Ok(100, 1, 1), "expand=", limiter.Expand())
	}

	time.Sleep(time.Millisecond * 101)
	if !(!limiter.Ok(100, 1, 1) && !limiter.Expand()) {
		t.Error("<Time+Memory failed: ok=", limiter.Ok(100, 1, 1), "expand=", limiter.Expand())
	}

	// Reset enables expanding again
	limiter.Reset()
	if !limiter.Expand() {
		t.Error("Reset should enable expanding")
	}
}

func TestLimiterStop(t *testing.T) {
	limiter := NewLimiter(32)
	limiter.Reset()
	limiter.SetStop(true)

	if limiter.Ok(1, 1, 1) {
		t.Error("Stopped limiter should not be ok")
	}

	// Reset keeps the stop flag
	limiter.Reset()
	limiter.EvaluateStopReason(1, 1, 1)
	if reason := limiter.StopReason(); reason != StopInterrupt {
		t.Errorf("StopReason=%v, want=%v", reason, StopInterrupt)
	}

	ctx, cancel := context.WithCancel(context.Background())
	limiter = NewLimiter(32)
	limiter.SetContext(ctx)
	if limiter.Stop() {
		t.Error("Limiter should not be stopped before cancel")
	}

	cancel()
	if !limiter.Stop() {
		t.Error("Limiter should be stopped after the context is canceled")
	}
}

func TestStopReasonString(t *testing.T) {
	tests := []struct {
		reason StopReason
		want   string
	}{
		{StopNone, "None"},
		{StopInterrupt, "Interrupt"},
		{StopMovetime | StopCycles, "Movetime|Cycles"},
		{StopMemory | StopDepth, "Memory|Depth"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("%d.String()=%q, want=%q", tt.reason, got, tt.want)
		}
	}
}

func TestLimitsActive(t *testing.T) {
	limits := DefaultLimits()
	if !limits.Infinite() {
		t.Error("Default limits should be infinite")
	}
	if got := limits.String(); got != "infinite multipv=1" {
		t.Errorf("String()=%q", got)
	}

	limits.SetMovetime(250).SetCycles(1000).SetMultiPv(0)
	if limits.Infinite() || !limits.Has(StopMovetime) || !limits.Has(StopCycles) || limits.Has(StopDepth) {
		t.Errorf("Unexpected active limits: %s", limits)
	}
	if got := limits.String(); got != "movetime=250ms cycles=1000 multipv=1" {
		t.Errorf("String()=%q", got)
	}

	// Negative movetime removes the time limit
	limits.SetMovetime(-1)
	if limits.Has(StopMovetime) {
		t.Error("Movetime should be removed")
	}

	limits.SetMbSize(2)
	if limits.ByteSize != 2<<20 || !limits.Has(StopMemory) {
		t.Errorf("ByteSize=%d", limits.ByteSize)
	}

	if !limits.SetInfinite().Infinite() {
		t.Error("SetInfinite should drop every limit")
	}
}

func TestLimiterHugeMovetime(t *testing.T) {
	limiter := NewLimiter(32)
	limiter.SetLimits(DefaultLimits().SetMovetime(math.MaxInt))
	limiter.Reset()

	if !limiter.Ok(1, 1, 1) {
		t.Error("A huge movetime must not wrap into an expired budget")
	}
	if limiter.clock.budget <= 0 {
		t.Errorf("budget=%v, want positive", limiter.clock.budget)
	}
}

func TestCyclesPerSecond(t *testing.T) {
	tests := []struct {
		cycles, elapsed, want uint32
	}{
		{1000, 500, 2000},
		{10, 0, 10000},
		// 5M cycles would wrap a 32 bit product
		{5_000_000, 2000, 2_500_000},
		{math.MaxUint32, 1, math.MaxUint32},
	}

	for _, tt := range tests {
		if got := cyclesPerSecond(tt.cycles, tt.elapsed); got != tt.want {
			t.Errorf("cyclesPerSecond(%d, %d)=%d, want=%d", tt.cycles, tt.elapsed, got, tt.want)
		}
	}
}
