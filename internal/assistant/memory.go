package assistant

// memoryCapacity is the number of exchanges the conversation window retains.
const memoryCapacity = 5

// Memory is a bounded FIFO window over the most recent exchanges of one
// session. It is distinct from the durable conversation store: losing it loses
// only conversational context, never the transcript. Not safe for concurrent
// use; the session registry serializes turns per session.
type Memory struct {
	window   []Exchange
	capacity int
}

// NewMemory creates an empty window with the default capacity.
func NewMemory() *Memory {
	return &Memory{capacity: memoryCapacity}
}

// Add appends an exchange, evicting the oldest entry when over capacity.
func (m *Memory) Add(question, answer string) {
	m.window = append(m.window, Exchange{Question: question, Answer: answer})
	if len(m.window) > m.capacity {
		m.window = m.window[1:]
	}
}

// Clear empties the window.
func (m *Memory) Clear() {
	m.window = nil
}

// Len returns the number of retained exchanges.
func (m *Memory) Len() int {
	return len(m.window)
}

// Last returns the most recent exchange, if any.
func (m *Memory) Last() (Exchange, bool) {
	if len(m.window) == 0 {
		return Exchange{}, false
	}
	return m.window[len(m.window)-1], true
}

// Recent returns up to n of the most recent exchanges, oldest first.
func (m *Memory) Recent(n int) []Exchange {
	if n <= 0 || len(m.window) == 0 {
		return nil
	}
	if n > len(m.window) {
		n = len(m.window)
	}
	out := make([]Exchange, n)
	copy(out, m.window[len(m.window)-n:])
	return out
}
