package queue

import (
	"sync"
	"testing"
	"time"
)

func TestUnbounded_FIFO(t *testing.T) {
	u := NewUnbounded[int]()
	defer u.Close()

	const n = 100
	for i := 0; i < n; i++ {
		if !u.Push(i) {
			t.Fatalf("Push(%d) = false, want true", i)
		}
	}

	for i := 0; i < n; i++ {
		select {
		case got := <-u.C():
			if got != i {
				t.Fatalf("received %d, want %d", got, i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for item %d", i)
		}
	}
}

func TestUnbounded_PushNeverBlocks(t *testing.T) {
	u := NewUnbounded[int]()
	defer u.Close()

	// no consumer; all pushes must still complete
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			u.Push(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pushes blocked without a consumer")
	}

	for i := 0; i < 10000; i++ {
		select {
		case got := <-u.C():
			if got != i {
				t.Fatalf("received %d, want %d", got, i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out draining item %d", i)
		}
	}
}

func TestUnbounded_CloseDeliversRemainder(t *testing.T) {
	u := NewUnbounded[int]()

	for i := 0; i < 10; i++ {
		u.Push(i)
	}
	u.Close()

	var got []int
	for v := range u.C() {
		got = append(got, v)
	}
	if len(got) != 10 {
		t.Fatalf("received %d items after Close, want 10", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("got[%d] = %d, want %d", i, v, i)
		}
	}

	// channel stays closed
	if _, ok := <-u.C(); ok {
		t.Error("receive after drain reported open channel")
	}
}

func TestUnbounded_PushAfterClose(t *testing.T) {
	u := NewUnbounded[string]()
	u.Close()
	u.Close() // idempotent

	if u.Push("late") {
		t.Error("Push after Close = true, want false")
	}
	if _, ok := <-u.C(); ok {
		t.Error("closed queue delivered an item")
	}
}

func TestUnbounded_ConcurrentProducersKeepOwnOrder(t *testing.T) {
	u := NewUnbounded[[2]int]()

	const (
		producers = 4
		perP      = 500
	)
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perP; i++ {
				u.Push([2]int{p, i})
			}
		}(p)
	}

	go func() {
		wg.Wait()
		u.Close()
	}()

	next := make([]int, producers)
	total := 0
	for v := range u.C() {
		p, i := v[0], v[1]
		if i != next[p] {
			t.Fatalf("producer %d: received seq %d, want %d", p, i, next[p])
		}
		next[p]++
		total++
	}
	if total != producers*perP {
		t.Errorf("received %d items, want %d", total, producers*perP)
	}
}

func TestUnbounded_Len(t *testing.T) {
	u := NewUnbounded[int]()
	defer u.Close()

	if got := u.Len(); got != 0 {
		t.Errorf("Len() = %d on empty queue, want 0", got)
	}

	for i := 0; i < 50; i++ {
		u.Push(i)
	}
	// the delivery goroutine may have taken a prefix already
	if got := u.Len(); got > 50 {
		t.Errorf("Len() = %d, want <= 50", got)
	}
}
