package ps2kbd

// QueueSize is the capacity of each byte queue. One slot always stays
// free, so at most QueueSize-1 bytes are held.
const QueueSize = 128

// Queue is a fixed-size circular byte buffer. Pushing into a full queue
// drops the oldest byte instead of failing.
//
// Queue does no locking of its own; the Keyboard wraps every access from
// the main loop in its critical section.
type Queue struct {
	buf   [QueueSize]byte
	start uint8
	end   uint8
}

// Push appends b, evicting the oldest byte when the buffer wraps onto it.
func (q *Queue) Push(b byte) {
	q.buf[q.end] = b
	q.end = next(q.end)
	if q.end == q.start {
		q.start = next(q.start)
	}
}

// Pop removes and returns the oldest byte. ok is false if the queue is empty.
func (q *Queue) Pop() (b byte, ok bool) {
	if q.start == q.end {
		return 0, false
	}
	b = q.buf[q.start]
	q.start = next(q.start)
	return b, true
}

// Peek returns the oldest byte without removing it.
func (q *Queue) Peek() (b byte, ok bool) {
	if q.start == q.end {
		return 0, false
	}
	return q.buf[q.start], true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.start = 0
	q.end = 0
}

// Empty reports whether the queue holds no bytes.
func (q *Queue) Empty() bool {
	return q.start == q.end
}

// Len returns the number of queued bytes.
func (q *Queue) Len() int {
	return (int(q.end) - int(q.start) + QueueSize) % QueueSize
}

func next(i uint8) uint8 {
	if i++; i == QueueSize {
		return 0
	}
	return i
}
