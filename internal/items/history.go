package items

// HistoryDepth is the number of snapshots retained for undo.
const HistoryDepth = 20

// history is a fixed-capacity ring of collection snapshots. Pushing onto a
// full ring overwrites the oldest snapshot.
type history struct {
	buf  [][]WorkItem
	head int // index of the next write
	size int
}

func newHistory(capacity int) *history {
	return &history{buf: make([][]WorkItem, capacity)}
}

func (h *history) push(snapshot []WorkItem) {
	h.buf[h.head] = snapshot
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

func (h *history) pop() ([]WorkItem, bool) {
	if h.size == 0 {
		return nil, false
	}
	h.head = (h.head - 1 + len(h.buf)) % len(h.buf)
	snapshot := h.buf[h.head]
	h.buf[h.head] = nil
	h.size--
	return snapshot, true
}

func (h *history) len() int { return h.size }

func (h *history) clear() {
	clear(h.buf)
	h.head = 0
	h.size = 0
}
