package bridge

import (
	"sync"
	"testing"
)

func TestRingBuffer_BasicWriteRead(t *testing.T) {
	rb := newRingBuffer(1024)
	rb.Write([]byte("hello"))
	if got := rb.String(); got != "hello" {
		t.Errorf("String() = %q, want %q", got, "hello")
	}
	if got := rb.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
}

func TestRingBuffer_MultipleWrites(t *testing.T) {
	rb := newRingBuffer(1024)
	rb.Write([]byte("hello "))
	rb.Write([]byte("world"))
	if got := rb.String(); got != "hello world" {
		t.Errorf("String() = %q, want %q", got, "hello world")
	}
}

func TestRingBuffer_Overflow(t *testing.T) {
	rb := newRingBuffer(10)
	rb.Write([]byte("0123456789")) // exactly 10
	if got := rb.Len(); got != 10 {
		t.Errorf("Len() = %d, want 10", got)
	}

	rb.Write([]byte("ABCDE")) // push to 15, should trim to last 10
	if got := rb.Len(); got != 10 {
		t.Errorf("Len() after overflow = %d, want 10", got)
	}
	if got := rb.String(); got != "56789ABCDE" {
		t.Errorf("String() after overflow = %q, want %q", got, "56789ABCDE")
	}
}

func TestRingBuffer_Empty(t *testing.T) {
	rb := newRingBuffer(1024)
	if got := rb.String(); got != "" {
		t.Errorf("String() on empty = %q, want empty", got)
	}
	if got := rb.Len(); got != 0 {
		t.Errorf("Len() on empty = %d, want 0", got)
	}
}

func TestRingBuffer_LargeOverflow(t *testing.T) {
	rb := newRingBuffer(5)
	// Write way more than capacity in one shot
	rb.Write([]byte("abcdefghijklmnop"))
	if got := rb.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	if got := rb.String(); got != "lmnop" {
		t.Errorf("String() = %q, want %q", got, "lmnop")
	}
}

func TestRingBuffer_WriteReportsFullLength(t *testing.T) {
	rb := newRingBuffer(5)
	n, err := rb.Write([]byte("0123456789"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 10 {
		t.Errorf("Write() n = %d, want 10", n)
	}
}

func TestRingBuffer_ConcurrentWrites(t *testing.T) {
	rb := newRingBuffer(1024 * 1024) // 1MB
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rb.Write([]byte("x"))
			}
		}()
	}
	wg.Wait()

	if got := rb.Len(); got != 10000 {
		t.Errorf("Len() after concurrent writes = %d, want 10000", got)
	}
}
