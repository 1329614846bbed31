package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunKicksImmediatelyAndRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	s := &Scheduler{
		Interval: time.Millisecond,
		Process: func(ctx context.Context) error {
			calls++
			if calls >= 3 {
				cancel()
			}
			return nil
		},
	}

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if calls < 3 {
		t.Fatalf("calls = %d, want >= 3", calls)
	}
}

func TestRunSurvivesProcessorErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	s := &Scheduler{
		Interval: time.Millisecond,
		Process: func(ctx context.Context) error {
			calls++
			if calls >= 2 {
				cancel()
			}
			return errors.New("pass failed")
		},
	}

	_ = s.Run(ctx)
	if calls < 2 {
		t.Fatalf("calls = %d, want >= 2 (errors must not stop the loop)", calls)
	}
}
