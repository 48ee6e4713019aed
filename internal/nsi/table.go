package nsi

import "fmt"

// ModuleID names a statistics family, e.g. "udp".
type ModuleID string

// TableID identifies a table within a module.
type TableID uint32

// Sizes is the record layout of a table: the byte size of the key and of
// each sub-record. A zero size means the table has no such sub-record.
type Sizes struct {
	Key     int
	RW      int
	Dynamic int
	Static  int
}

// GetAllParametersFunc fills the sub-records of the row identified by key.
// Empty output slices are not wanted and must not be written.
type GetAllParametersFunc func(key, rw, dynamic, static []byte) error

// EnumerateAllFunc walks every row of a table into p, usually through a Cursor.
type EnumerateAllFunc func(p *EnumParams) error

// Table is an immutable table descriptor.
type Table struct {
	ID               TableID
	Sizes            Sizes
	EnumerateAll     EnumerateAllFunc
	GetAllParameters GetAllParametersFunc
}

// Module groups the tables of one statistics family.
type Module struct {
	ID     ModuleID
	Tables []Table
}

func (m Module) table(id TableID) (*Table, bool) {
	for i := range m.Tables {
		if m.Tables[i].ID == id {
			return &m.Tables[i], true
		}
	}
	return nil, false
}

func (m Module) validate() error {
	seen := make(map[TableID]bool, len(m.Tables))
	for _, t := range m.Tables {
		if seen[t.ID] {
			return fmt.Errorf("module %s: duplicate table %d", m.ID, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// checkSize accepts a caller-declared size of zero (not wanted) or the
// exact layout size.
func checkSize(declared, layout int) bool {
	return declared == 0 || declared == layout
}
