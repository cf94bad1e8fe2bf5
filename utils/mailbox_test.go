package utils

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestMailboxOverwrite(t *testing.T) {
	mb := NewMailbox[int]()
	test.That(t, mb.Push(1), test.ShouldBeTrue)
	test.That(t, mb.Push(2), test.ShouldBeTrue)
	test.That(t, mb.Push(3), test.ShouldBeTrue)
	test.That(t, mb.Dropped(), test.ShouldEqual, 2)

	v, ok := mb.Pop(context.Background())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldEqual, 3)

	_, ok = mb.TryPop()
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMailboxPopBlocksUntilPush(t *testing.T) {
	mb := NewMailbox[string]()
	got := make(chan string, 1)
	go func() {
		v, _ := mb.Pop(context.Background())
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("pop returned before push")
	case <-time.After(20 * time.Millisecond):
	}

	mb.Push("pair")
	select {
	case v := <-got:
		test.That(t, v, test.ShouldEqual, "pair")
	case <-time.After(time.Second):
		t.Fatal("pop never returned")
	}
}

func TestMailboxCloseWakesWaiters(t *testing.T) {
	mb := NewMailbox[int]()
	var wg sync.WaitGroup
	results := make([]bool, 3)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = mb.Pop(context.Background())
		}()
	}
	time.Sleep(10 * time.Millisecond)
	mb.Close()
	mb.Close()
	wg.Wait()
	for _, ok := range results {
		test.That(t, ok, test.ShouldBeFalse)
	}

	test.That(t, mb.Push(4), test.ShouldBeFalse)
	_, ok := mb.TryPop()
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMailboxCloseDiscardsPending(t *testing.T) {
	mb := NewMailbox[int]()
	mb.Push(7)
	mb.Close()
	_, ok := mb.Pop(context.Background())
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMailboxPopContext(t *testing.T) {
	mb := NewMailbox[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok := mb.Pop(ctx)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMailboxConcurrentPushers(t *testing.T) {
	mb := NewMailbox[int]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mb.Push(j)
			}
		}()
	}
	wg.Wait()
	_, ok := mb.TryPop()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, mb.Dropped(), test.ShouldEqual, 799)
}
