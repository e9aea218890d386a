package ps2kbd

import (
	"bytes"
	"testing"
)

func drain(q *Queue) []byte {
	var out []byte
	for {
		b, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func TestQueueFIFO(t *testing.T) {
	var q Queue
	if !q.Empty() {
		t.Fatal("new queue not empty")
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue returned a byte")
	}

	in := []byte{0xE0, 0xF0, 0x6B, 0x1E}
	for _, b := range in {
		q.Push(b)
	}
	if q.Len() != len(in) {
		t.Fatalf("Len() = %d, want %d", q.Len(), len(in))
	}
	if b, ok := q.Peek(); !ok || b != 0xE0 {
		t.Fatalf("Peek() = 0x%02X, %v, want 0xE0, true", b, ok)
	}
	if got := drain(&q); !bytes.Equal(got, in) {
		t.Errorf("popped % X, want % X", got, in)
	}
	if !q.Empty() {
		t.Error("queue not empty after draining")
	}
}

func TestQueueOverflowKeepsNewest(t *testing.T) {
	tests := []struct {
		name   string
		pushes int
	}{
		{"exactly full", QueueSize - 1},
		{"one over", QueueSize},
		{"two over", QueueSize + 2},
		{"many times over", 5*QueueSize + 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Queue
			var all []byte
			for i := 0; i < tt.pushes; i++ {
				q.Push(byte(i))
				all = append(all, byte(i))
			}

			want := all
			if len(want) > QueueSize-1 {
				want = want[len(want)-(QueueSize-1):]
			}
			if q.Len() != len(want) {
				t.Fatalf("Len() = %d, want %d", q.Len(), len(want))
			}
			if got := drain(&q); !bytes.Equal(got, want) {
				t.Errorf("popped % X, want % X", got, want)
			}
		})
	}
}

func TestQueueWrapAround(t *testing.T) {
	var q Queue
	for i := 0; i < 3*QueueSize; i++ {
		q.Push(byte(i))
		q.Push(byte(i + 1))
		if b, _ := q.Pop(); b != byte(i) {
			t.Fatalf("step %d: popped 0x%02X, want 0x%02X", i, b, byte(i))
		}
		if b, _ := q.Pop(); b != byte(i+1) {
			t.Fatalf("step %d: popped 0x%02X, want 0x%02X", i, b, byte(i+1))
		}
	}
	if !q.Empty() {
		t.Error("queue not empty")
	}
}

func TestQueueClear(t *testing.T) {
	var q Queue
	for i := 0; i < 10; i++ {
		q.Push(byte(i))
	}
	q.Pop()
	q.Clear()

	if !q.Empty() || q.Len() != 0 {
		t.Fatalf("queue not empty after Clear, Len() = %d", q.Len())
	}
	if q.start != 0 || q.end != 0 {
		t.Errorf("indices after Clear = %d, %d, want 0, 0", q.start, q.end)
	}
	q.Push(0x42)
	if b, ok := q.Pop(); !ok || b != 0x42 {
		t.Errorf("Pop() after Clear = 0x%02X, %v", b, ok)
	}
}
