package stream

import (
	"reflect"
	"testing"
)

func TestLineBufferCompletesAcrossChunks(t *testing.T) {
	var b LineBuffer

	lines := b.Feed([]byte("hel"))
	if len(lines) != 0 {
		t.Fatalf("expected no lines yet, got %q", lines)
	}

	lines = b.Feed([]byte("lo\nwor"))
	if len(lines) != 1 || string(lines[0]) != "hello" {
		t.Fatalf("expected [hello], got %q", lines)
	}

	lines = b.Feed([]byte("ld\n"))
	if len(lines) != 1 || string(lines[0]) != "world" {
		t.Fatalf("expected [world], got %q", lines)
	}

	if len(b.Tail()) != 0 {
		t.Fatalf("expected empty tail, got %q", b.Tail())
	}
}

func TestLineBufferTailHoldsUnterminatedFragment(t *testing.T) {
	var b LineBuffer
	b.Feed([]byte("complete\npartial"))
	if string(b.Tail()) != "partial" {
		t.Fatalf("expected tail 'partial', got %q", b.Tail())
	}
}

func TestLineBufferSplitInvariance(t *testing.T) {
	input := []byte("one\ntwo\r\nthree\n\nfour\n")

	collect := func(chunkSize int) [][]byte {
		var b LineBuffer
		var all [][]byte
		for i := 0; i < len(input); i += chunkSize {
			end := i + chunkSize
			if end > len(input) {
				end = len(input)
			}
			all = append(all, b.Feed(input[i:end])...)
		}
		return all
	}

	want := collect(len(input))
	for _, size := range []int{1, 2, 3, 5, 7} {
		got := collect(size)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("chunk size %d: got %q, want %q", size, got, want)
		}
	}
}
