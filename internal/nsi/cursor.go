package nsi

// EnumParams carries the caller's flat output arrays for EnumerateAll.
//
// Record i of a category lives at buf[i*size:(i+1)*size]. A nil buffer means
// the category is not populated even if its size is non-zero. Count is the
// capacity on entry and the number of records found on return.
type EnumParams struct {
	Key, RW, Dynamic, Static                 []byte
	KeySize, RWSize, DynamicSize, StaticSize int
	Count                                    int
}

// WantData reports whether the caller asked for any records rather than a
// bare count.
func (p *EnumParams) WantData() bool {
	return wanted(p.Key, p.KeySize) || wanted(p.RW, p.RWSize) ||
		wanted(p.Dynamic, p.DynamicSize) || wanted(p.Static, p.StaticSize)
}

func wanted(buf []byte, size int) bool {
	return buf != nil && size > 0
}

// Slot is one record position in the caller's arrays. Categories the caller
// did not ask for are nil.
type Slot struct {
	Key, RW, Dynamic, Static []byte
}

// Cursor counts every matched record and fills the caller's arrays while
// there is room. Counting and filling happen in the same pass so sources
// walk their data once.
type Cursor struct {
	p        *EnumParams
	capacity int
	num      int
}

// NewCursor starts an enumeration over p with p.Count as the capacity.
func NewCursor(p *EnumParams) *Cursor {
	return &Cursor{p: p, capacity: p.Count}
}

// WantKeys reports whether the caller asked for key records.
func (c *Cursor) WantKeys() bool { return wanted(c.p.Key, c.p.KeySize) }

// WantRW reports whether the caller asked for read-write records.
func (c *Cursor) WantRW() bool { return wanted(c.p.RW, c.p.RWSize) }

// WantDynamic reports whether the caller asked for dynamic records.
func (c *Cursor) WantDynamic() bool { return wanted(c.p.Dynamic, c.p.DynamicSize) }

// WantStatic reports whether the caller asked for static records.
func (c *Cursor) WantStatic() bool { return wanted(c.p.Static, c.p.StaticSize) }

// Emit records one matched row. fill runs only when a free slot exists and
// must write whole records into the non-nil parts of the slot.
func (c *Cursor) Emit(fill func(Slot)) {
	if c.num < c.capacity {
		fill(Slot{
			Key:     record(c.p.Key, c.p.KeySize, c.num),
			RW:      record(c.p.RW, c.p.RWSize, c.num),
			Dynamic: record(c.p.Dynamic, c.p.DynamicSize, c.num),
			Static:  record(c.p.Static, c.p.StaticSize, c.num),
		})
	}
	c.num++
}

// Found is the number of records emitted so far.
func (c *Cursor) Found() int { return c.num }

// Done publishes the total into Count. It returns ErrBufferOverflow when the
// caller wanted data and more records exist than fit.
func (c *Cursor) Done() error {
	c.p.Count = c.num
	if c.num > c.capacity && c.p.WantData() {
		return ErrBufferOverflow
	}
	return nil
}

func record(buf []byte, size, i int) []byte {
	if !wanted(buf, size) {
		return nil
	}
	lo, hi := i*size, (i+1)*size
	return buf[lo:hi:hi]
}
