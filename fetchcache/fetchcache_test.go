package fetchcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetFetchesOnce(t *testing.T) {
	c := New()
	ctx := context.Background()

	fetches := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		fetches++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Get(ctx, "k", fetch)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != "value" {
			t.Errorf("Get = %v, want %q", v, "value")
		}
	}

	if fetches != 1 {
		t.Errorf("Fetch ran %d times, want 1", fetches)
	}
}

func TestConcurrentGetsShareOneFetch(t *testing.T) {
	c := New()
	ctx := context.Background()

	var fetches int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get(ctx, "k", fetch)
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			if v != 42 {
				t.Errorf("Get = %v, want 42", v)
			}
		}()
	}

	close(release)
	wg.Wait()

	// Some goroutines may arrive after the first fetch completed and hit
	// the cache instead, but the fetch never runs more than once.
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("Fetch ran %d times, want 1", got)
	}
}

func TestFetchErrorIsNotCached(t *testing.T) {
	c := New()
	ctx := context.Background()

	boom := errors.New("backend down")
	if _, err := c.Get(ctx, "k", func(ctx context.Context) (interface{}, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Errorf("Get error = %v, want %v", err, boom)
	}

	if _, ok := c.Peek("k"); ok {
		t.Errorf("Failed fetch left a cached value behind")
	}

	v, err := c.Get(ctx, "k", func(ctx context.Context) (interface{}, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("Get after failed fetch: %v", err)
	}
	if v != "recovered" {
		t.Errorf("Get = %v, want %q", v, "recovered")
	}
}

func TestSetOverridesPendingFetch(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.Set("k", "external")

	v, err := c.Get(ctx, "k", func(ctx context.Context) (interface{}, error) {
		t.Errorf("Fetch ran for a key that was already set")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "external" {
		t.Errorf("Get = %v, want %q", v, "external")
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	c := New()
	ctx := context.Background()

	fetches := 0
	fetch := func(ctx context.Context) (interface{}, error) {
		fetches++
		return fetches, nil
	}

	if _, err := c.Get(ctx, "k", fetch); err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.Invalidate("k")
	v, err := c.Get(ctx, "k", fetch)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 2 {
		t.Errorf("Get after Invalidate = %v, want 2", v)
	}
}

func TestSubscribe(t *testing.T) {
	c := New()

	var got []interface{}
	unsubscribe := c.Subscribe("k", func(v interface{}) {
		got = append(got, v)
	})

	c.Set("k", 1)
	c.Set("other", 99)
	c.Set("k", 2)

	unsubscribe()
	unsubscribe() // safe to call twice
	c.Set("k", 3)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Subscriber saw %v, want [1 2]", got)
	}
}
