package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestStepAdmin(t *testing.T) {
	adminSteps := []Step{
		StepAdminAwaitingCardNumber,
		StepAdminAwaitingCardOwner,
		StepAdminAwaitingBroadcastContent,
		StepAdminAwaitingBroadcastConfirm,
		StepAdminAwaitingBalanceTarget,
		StepAdminAwaitingBalanceAmount,
	}
	for _, s := range adminSteps {
		if !s.Admin() {
			t.Fatalf("%s should be an admin step", s)
		}
	}
	if StepIdle.Admin() || StepAwaitingReceipt.Admin() {
		t.Fatalf("buyer steps must not be admin steps")
	}
}

func TestMemoryStoreDefaultsToIdle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	state, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state.Step != StepIdle {
		t.Fatalf("expected idle, got %s", state.Step)
	}

	bound := State{Step: StepAwaitingReceipt, PurchaseID: 7}
	if err := store.Set(ctx, 42, bound); err != nil {
		t.Fatalf("set: %v", err)
	}
	state, _ = store.Get(ctx, 42)
	if state.Step != StepAwaitingReceipt || state.PurchaseID != 7 {
		t.Fatalf("expected bound state back, got %+v", state)
	}

	if err := store.Clear(ctx, 42); err != nil {
		t.Fatalf("clear: %v", err)
	}
	state, _ = store.Get(ctx, 42)
	if state.Step != StepIdle {
		t.Fatalf("expected idle after clear, got %s", state.Step)
	}
}

func TestActorMutexSerializesPerActor(t *testing.T) {
	am := NewActorMutex()

	var mu sync.Mutex
	inSection := false

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := am.Lock(1)
			defer unlock()

			mu.Lock()
			if inSection {
				t.Error("two goroutines inside one actor's section")
			}
			inSection = true
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inSection = false
			mu.Unlock()
		}()
	}
	wg.Wait()
}

func TestMemoryLockerExclusive(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	ok, err := l.Acquire(ctx, "k", time.Second)
	if err != nil || !ok {
		t.Fatalf("first acquire should win: ok=%v err=%v", ok, err)
	}
	ok, _ = l.Acquire(ctx, "k", time.Second)
	if ok {
		t.Fatalf("second acquire should lose while held")
	}

	l.Release(ctx, "k")
	ok, _ = l.Acquire(ctx, "k", time.Second)
	if !ok {
		t.Fatalf("acquire after release should win")
	}
}
