package stream

// Cursor tracks the produced-but-unconsumed window of an output buffer of
// Total elements. Valid elements start at Offset, and between operations
// Valid == Total-Offset.
type Cursor struct {
	total  int
	valid  int
	offset int
}

// NewCursor returns an exhausted cursor over total elements.
func NewCursor(total int) Cursor {
	if total < 0 {
		total = 0
	}
	return Cursor{total: total, offset: total}
}

func (c Cursor) Total() int  { return c.total }
func (c Cursor) Valid() int  { return c.valid }
func (c Cursor) Offset() int { return c.offset }

// Fill marks the whole buffer as freshly produced.
func (c *Cursor) Fill() {
	c.valid = c.total
	c.offset = 0
}

// Consume advances past n valid elements. It reports false and leaves the
// cursor unchanged when fewer than n are valid.
func (c *Cursor) Consume(n int) bool {
	if n < 0 || n > c.valid {
		return false
	}
	c.offset += n
	c.valid -= n
	return true
}

// Invalidate discards the remaining elements.
func (c *Cursor) Invalidate() {
	c.valid = 0
	c.offset = c.total
}
