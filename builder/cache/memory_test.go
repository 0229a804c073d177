package cache

import (
	"errors"
	"runtime"
	"testing"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemory[string, int]()

	if _, ok := c.Get("a"); ok {
		t.Error("Get on empty cache returned ok")
	}

	v := 7
	c.Set("a", &v)
	got, ok := c.Get("a")
	if !ok || *got != 7 {
		t.Errorf("Get = %v, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Invalidate returned ok")
	}

	c.Set("b", &v)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestNoopCache(t *testing.T) {
	c := NewNoop[string, int]()

	v := 1
	c.Set("a", &v)
	if _, ok := c.Get("a"); ok {
		t.Error("NoopCache stored a value")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestWeakCacheHoldsLiveValues(t *testing.T) {
	c := NewWeak[string, string]()

	v := "rendered html"
	c.Set("post", &v)

	got, ok := c.Get("post")
	if !ok || *got != "rendered html" {
		t.Errorf("Get = %v, %v", got, ok)
	}

	c.Invalidate("post")
	if _, ok := c.Get("post"); ok {
		t.Error("Get after Invalidate returned ok")
	}

	runtime.KeepAlive(&v)
}

func TestGetOrCompute(t *testing.T) {
	c := NewMemory[string, string]()

	calls := 0
	compute := func() (*string, error) {
		calls++
		s := "value"
		return &s, nil
	}

	v, err := GetOrCompute(c, "k", compute)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if *v != "value" {
		t.Errorf("value = %q", *v)
	}

	if _, err := GetOrCompute(c, "k", compute); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
}

func TestGetOrComputeError(t *testing.T) {
	c := NewMemory[string, string]()

	wantErr := errors.New("render failed")
	_, err := GetOrCompute(c, "k", func() (*string, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if c.Len() != 0 {
		t.Error("failed compute was cached")
	}
}
