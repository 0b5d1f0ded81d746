package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDeduplicatorSharesOutcome(t *testing.T) {
	clk := newFakeClock()
	d := NewDeduplicator(clk, 2*time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	executions := 0

	fn := func(ctx context.Context) (any, error) {
		executions++
		close(started)
		<-release
		return "written", nil
	}

	type outcome struct {
		value  any
		err    error
		shared bool
	}
	results := make(chan outcome, 2)

	go func() {
		v, err, shared := d.Do(context.Background(), "saveOrder:r:o", fn)
		results <- outcome{v, err, shared}
	}()
	<-started

	go func() {
		v, err, shared := d.Do(context.Background(), "saveOrder:r:o", func(ctx context.Context) (any, error) {
			executions++
			return "second write", nil
		})
		results <- outcome{v, err, shared}
	}()

	// Give the second caller a moment to join the in-flight entry.
	time.Sleep(10 * time.Millisecond)
	close(release)

	first := <-results
	second := <-results

	if executions != 1 {
		t.Fatalf("executions = %d, want 1", executions)
	}
	if first.value != "written" || second.value != "written" {
		t.Errorf("outcomes = %v / %v, want both %q", first.value, second.value, "written")
	}
	if first.shared == second.shared {
		t.Errorf("exactly one caller should report shared, got %v / %v", first.shared, second.shared)
	}
}

func TestDeduplicatorSharesFailure(t *testing.T) {
	clk := newFakeClock()
	d := NewDeduplicator(clk, 2*time.Second)

	_, err1, _ := d.Do(context.Background(), "k", func(ctx context.Context) (any, error) {
		return nil, errRemoteDown
	})
	_, err2, shared := d.Do(context.Background(), "k", func(ctx context.Context) (any, error) {
		t.Fatal("second call must not execute within the TTL window")
		return nil, nil
	})

	if err1 != errRemoteDown || err2 != errRemoteDown {
		t.Errorf("errors = %v / %v, want both %v", err1, err2, errRemoteDown)
	}
	if !shared {
		t.Error("second caller should report shared")
	}
}

func TestDeduplicatorTTLFromCreation(t *testing.T) {
	clk := newFakeClock()
	d := NewDeduplicator(clk, 2*time.Second)

	executions := 0
	fn := func(ctx context.Context) (any, error) {
		executions++
		return executions, nil
	}

	d.Do(context.Background(), "k", fn)
	clk.Advance(1999 * time.Millisecond)
	d.Do(context.Background(), "k", fn)
	if executions != 1 {
		t.Fatalf("executions = %d within TTL, want 1", executions)
	}

	clk.Advance(1 * time.Millisecond)
	_, _, shared := d.Do(context.Background(), "k", fn)
	if executions != 2 {
		t.Errorf("executions = %d after TTL, want 2", executions)
	}
	if shared {
		t.Error("post-expiry caller should execute fresh, not share")
	}
}

func TestDeduplicatorIndependentKeys(t *testing.T) {
	clk := newFakeClock()
	d := NewDeduplicator(clk, 2*time.Second)

	executions := 0
	fn := func(ctx context.Context) (any, error) {
		executions++
		return nil, nil
	}

	d.Do(context.Background(), "saveOrder:r:o1", fn)
	d.Do(context.Background(), "saveOrder:r:o2", fn)

	if executions != 2 {
		t.Errorf("executions = %d, want 2 (keys must not collide)", executions)
	}
}

func TestDeduplicatorForget(t *testing.T) {
	clk := newFakeClock()
	d := NewDeduplicator(clk, 2*time.Second)

	executions := 0
	fn := func(ctx context.Context) (any, error) {
		executions++
		return nil, nil
	}

	d.Do(context.Background(), "k", fn)
	d.Forget("k")
	d.Do(context.Background(), "k", fn)

	if executions != 2 {
		t.Errorf("executions = %d after Forget, want 2", executions)
	}
}

func TestKeyConstruction(t *testing.T) {
	restaurantID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	orderID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440002")

	key := Key("saveOrder", restaurantID, orderID)
	want := "saveOrder:550e8400-e29b-41d4-a716-446655440001:550e8400-e29b-41d4-a716-446655440002"
	if key != want {
		t.Errorf("Key() = %q, want %q", key, want)
	}
}
