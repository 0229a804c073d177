package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestBufferPoolReuse(t *testing.T) {
	pool := NewBufferPool()

	buf := pool.Get()
	buf.WriteString("hello")
	pool.Put(buf)

	buf2 := pool.Get()
	if buf2.Len() != 0 {
		t.Error("buffer not reset on Put")
	}
}

func TestBufferPoolDiscardsOversized(t *testing.T) {
	pool := NewBufferPool()

	big := pool.Get()
	big.Grow(MaxBufferSize + 1)
	pool.Put(big)

	// The pool must still hand out usable buffers afterwards
	buf := pool.Get()
	buf.WriteString("ok")
	if buf.String() != "ok" {
		t.Error("pool returned unusable buffer")
	}
}

func TestStringBuilderPoolReuse(t *testing.T) {
	pool := NewStringBuilderPool()

	sb := pool.Get()
	sb.WriteString("content")
	pool.Put(sb)

	sb2 := pool.Get()
	if sb2.Len() != 0 {
		t.Error("builder not reset on Put")
	}
}

func TestBufioWriterPool(t *testing.T) {
	pool := NewBufioWriterPool()

	var out bytes.Buffer
	w := pool.Get(&out)
	if _, err := w.WriteString("buffered"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	pool.Put(w)

	if out.String() != "buffered" {
		t.Errorf("output = %q", out.String())
	}

	var out2 strings.Builder
	w2 := pool.Get(&out2)
	if _, err := w2.WriteString("again"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := w2.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out2.String() != "again" {
		t.Errorf("reused writer output = %q", out2.String())
	}
}

func TestSharedPoolsInitialized(t *testing.T) {
	if SharedBufferPool == nil {
		t.Error("SharedBufferPool is nil")
	}
	if SharedStringBuilderPool == nil {
		t.Error("SharedStringBuilderPool is nil")
	}
	if SharedBufioWriterPool == nil {
		t.Error("SharedBufioWriterPool is nil")
	}
}
