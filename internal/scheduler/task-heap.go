package scheduler

import (
	"container/heap"
	"strings"
	"time"
)

type (
	// Task is a function due at a point in time. A task with a Path is
	// keyed: scheduling the same path again replaces it
	Task struct {
		Func  TaskFunc
		At    time.Time
		Path  []string
		key   string
		index int
		seq   uint64
	}

	// TaskHeap stores scheduled tasks ordered by execution time. Tasks due
	// at the same instant keep their insertion order
	TaskHeap struct {
		items []*Task
		keyed map[string]*Task
		seq   uint64
	}
)

const pathSep = "\x00"

// NewTaskHeap creates an empty task heap
func NewTaskHeap() *TaskHeap {
	return &TaskHeap{
		keyed: map[string]*Task{},
	}
}

// Insert adds a task to the heap or reschedules the keyed task already
// stored at the same path
func (h *TaskHeap) Insert(t *Task) {
	if t == nil || t.Func == nil || t.At.IsZero() {
		return
	}
	h.seq++
	t.seq = h.seq
	if len(t.Path) == 0 {
		heap.Push(h, t)
		return
	}

	t.key = pathKey(t.Path)
	if old, ok := h.keyed[t.key]; ok {
		old.Func, old.At, old.seq = t.Func, t.At, t.seq
		heap.Fix(h, old.index)
		return
	}
	heap.Push(h, t)
}

// PopTask removes and returns the next scheduled task
func (h *TaskHeap) PopTask() *Task {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*Task)
}

// PopDue removes and returns, in order, every task due at or before now
func (h *TaskHeap) PopDue(now time.Time) []*Task {
	var res []*Task
	for t := h.Peek(); t != nil && !t.At.After(now); t = h.Peek() {
		res = append(res, h.PopTask())
	}
	return res
}

// Peek returns the next scheduled task without removing it
func (h *TaskHeap) Peek() *Task {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// Cancel removes the keyed task stored at the exact path
func (h *TaskHeap) Cancel(path []string) {
	if len(path) == 0 {
		return
	}
	if t, ok := h.keyed[pathKey(path)]; ok {
		heap.Remove(h, t.index)
	}
}

// CancelPrefix removes the task at prefix and every keyed task below it
func (h *TaskHeap) CancelPrefix(prefix []string) {
	if len(prefix) == 0 {
		return
	}
	exact := pathKey(prefix)
	below := exact + pathSep
	for key, t := range h.keyed {
		if key == exact || strings.HasPrefix(key, below) {
			heap.Remove(h, t.index)
		}
	}
}

// Len returns the number of scheduled tasks in the heap
func (h *TaskHeap) Len() int {
	return len(h.items)
}

// Less orders by due time, then by insertion sequence
func (h *TaskHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.At.Equal(b.At) {
		return a.seq < b.seq
	}
	return a.At.Before(b.At)
}

// Swap exchanges the heap items at the provided indexes
func (h *TaskHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

// Push is called by container/heap; use Insert instead
func (h *TaskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(h.items)
	h.items = append(h.items, t)
	if t.key != "" {
		h.keyed[t.key] = t
	}
}

// Pop is called by container/heap; use PopTask instead
func (h *TaskHeap) Pop() any {
	n := len(h.items)
	if n == 0 {
		return nil
	}
	t := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	t.index = -1
	if t.key != "" {
		delete(h.keyed, t.key)
	}
	return t
}

func pathKey(path []string) string {
	return strings.Join(path, pathSep)
}
