package engine

import "github.com/Heropr/ask-me-anything/pkg/api"

// conversation is the append-only entry log, indexed by entry ID so that
// in-place updates never depend on an entry's position
type conversation struct {
	entries []*api.ConversationEntry
	index   map[api.EntryID]int
}

func newConversation() *conversation {
	return &conversation{
		index: map[api.EntryID]int{},
	}
}

func (c *conversation) add(e *api.ConversationEntry) {
	c.index[e.ID] = len(c.entries)
	c.entries = append(c.entries, e)
}

// update replaces the entry with a matching ID. It reports false when the
// entry is no longer in the log
func (c *conversation) update(e *api.ConversationEntry) bool {
	i, ok := c.index[e.ID]
	if !ok {
		return false
	}
	c.entries[i] = e
	return true
}

func (c *conversation) contains(id api.EntryID) bool {
	_, ok := c.index[id]
	return ok
}

// truncate keeps the entries up to and including index. Out of range
// indexes leave the log alone
func (c *conversation) truncate(index int) bool {
	if index < -1 || index >= len(c.entries)-1 {
		return false
	}
	for _, e := range c.entries[index+1:] {
		delete(c.index, e.ID)
	}
	clear(c.entries[index+1:])
	c.entries = c.entries[:index+1]
	return true
}

func (c *conversation) reset() {
	c.entries = nil
	c.index = map[api.EntryID]int{}
}

func (c *conversation) last() *api.ConversationEntry {
	if len(c.entries) == 0 {
		return nil
	}
	return c.entries[len(c.entries)-1].Clone()
}

func (c *conversation) snapshot() []*api.ConversationEntry {
	res := make([]*api.ConversationEntry, len(c.entries))
	for i, e := range c.entries {
		res[i] = e.Clone()
	}
	return res
}

func (c *conversation) size() int {
	return len(c.entries)
}
