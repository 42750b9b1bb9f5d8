package pacing

import (
	"context"
	"testing"
	"time"
)

func TestSampleWithinBounds(t *testing.T) {
	s := NewSeeded(1)
	b := Bounds{Min: 50 * time.Millisecond, Max: 150 * time.Millisecond}

	for i := 0; i < 1000; i++ {
		d := s.Sample(b)
		if d < b.Min || d > b.Max {
			t.Fatalf("sample %v outside [%v, %v]", d, b.Min, b.Max)
		}
	}
}

func TestSampleDegenerateBounds(t *testing.T) {
	s := NewSeeded(1)

	if d := s.Sample(Bounds{Min: time.Second, Max: time.Second}); d != time.Second {
		t.Errorf("expected 1s for equal bounds, got %v", d)
	}
	if d := s.Sample(Bounds{}); d != 0 {
		t.Errorf("expected 0 for zero bounds, got %v", d)
	}
}

func TestSampleVaries(t *testing.T) {
	s := NewSeeded(42)
	b := Bounds{Min: 0, Max: time.Hour}

	seen := make(map[time.Duration]bool)
	for i := 0; i < 20; i++ {
		seen[s.Sample(b)] = true
	}
	if len(seen) < 2 {
		t.Error("expected varied samples, got constant output")
	}
}

func TestSleepHonorsCancellation(t *testing.T) {
	s := NewSeeded(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := s.Sleep(ctx, Bounds{Min: 5 * time.Second, Max: 10 * time.Second})
	if err == nil {
		t.Fatal("expected context error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancelled sleep took %v", elapsed)
	}
}

func TestSleepZeroBoundsReturnsImmediately(t *testing.T) {
	s := NewSeeded(1)
	if err := s.Sleep(context.Background(), Bounds{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
