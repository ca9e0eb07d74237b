package cache

import (
	"testing"
	"time"
)

// --------------- Get / Set / Delete ---------------

func TestSetAndGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v.(int) != 42 {
		t.Errorf("value = %v", v)
	}
}

func TestGet_Missing(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	if _, ok := c.Get("nope"); ok {
		t.Error("expected cache miss")
	}
}

func TestGet_Expired(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Stop()

	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
}

func TestDelete(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry should miss")
	}
}

func TestFlush(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Flush()
	if _, ok := c.Get("a"); ok {
		t.Error("flushed entry should miss")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("flushed entry should miss")
	}
}
