package nsi

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// ParamKind selects one sub-record category for GetParameter.
type ParamKind int

const (
	ParamRW ParamKind = iota
	ParamDynamic
	ParamStatic
)

// Provider routes table queries by module and table identifier. It holds
// only immutable descriptors and is safe for concurrent use.
type Provider struct {
	modules map[ModuleID]Module
}

// NewProvider registers modules. Identifiers must be unique.
func NewProvider(modules ...Module) (*Provider, error) {
	p := &Provider{modules: make(map[ModuleID]Module, len(modules))}
	for _, m := range modules {
		if _, dup := p.modules[m.ID]; dup {
			return nil, fmt.Errorf("duplicate module %s", m.ID)
		}
		if err := m.validate(); err != nil {
			return nil, err
		}
		p.modules[m.ID] = m
	}
	return p, nil
}

// Table returns the descriptor registered for module/table.
func (p *Provider) Table(module ModuleID, table TableID) (Table, error) {
	t, err := p.lookup(module, table)
	if err != nil {
		return Table{}, err
	}
	return *t, nil
}

func (p *Provider) lookup(module ModuleID, table TableID) (*Table, error) {
	m, ok := p.modules[module]
	if !ok {
		return nil, fmt.Errorf("module %s: %w", module, ErrNotSupported)
	}
	t, ok := m.table(table)
	if !ok {
		return nil, fmt.Errorf("module %s table %d: %w", module, table, ErrNotSupported)
	}
	return t, nil
}

// GetAllParameters fills the sub-records of one row. The length of each
// slice is its declared size; an empty slice is not wanted.
func (p *Provider) GetAllParameters(module ModuleID, table TableID, key, rw, dynamic, static []byte) error {
	t, err := p.lookup(module, table)
	if err != nil {
		return err
	}
	if len(key) != t.Sizes.Key ||
		!checkSize(len(rw), t.Sizes.RW) ||
		!checkSize(len(dynamic), t.Sizes.Dynamic) ||
		!checkSize(len(static), t.Sizes.Static) {
		return fmt.Errorf("module %s table %d: sizes %d/%d/%d/%d: %w",
			module, table, len(key), len(rw), len(dynamic), len(static), ErrInvalidParameter)
	}
	if t.GetAllParameters == nil {
		return fmt.Errorf("module %s table %d get all parameters: %w", module, table, ErrNotImplemented)
	}
	log.Debug("get all parameters", "module", module, "table", table)
	return t.GetAllParameters(key, rw, dynamic, static)
}

// EnumerateAll walks every row of a table into params. On return
// params.Count holds the number of rows found, which may exceed the
// capacity passed in; ErrBufferOverflow then signals that not all rows fit.
func (p *Provider) EnumerateAll(module ModuleID, table TableID, params *EnumParams) error {
	t, err := p.lookup(module, table)
	if err != nil {
		return err
	}
	if err := validateEnum(t.Sizes, params); err != nil {
		return fmt.Errorf("module %s table %d: %w", module, table, err)
	}
	if t.EnumerateAll == nil {
		return fmt.Errorf("module %s table %d enumerate: %w", module, table, ErrNotImplemented)
	}
	log.Debug("enumerate all", "module", module, "table", table, "capacity", params.Count, "want_data", params.WantData())
	return t.EnumerateAll(params)
}

func validateEnum(s Sizes, p *EnumParams) error {
	if p.Count < 0 {
		return fmt.Errorf("negative count %d: %w", p.Count, ErrInvalidParameter)
	}
	parts := []struct {
		name     string
		buf      []byte
		declared int
		layout   int
	}{
		{"key", p.Key, p.KeySize, s.Key},
		{"rw", p.RW, p.RWSize, s.RW},
		{"dynamic", p.Dynamic, p.DynamicSize, s.Dynamic},
		{"static", p.Static, p.StaticSize, s.Static},
	}
	for _, part := range parts {
		if !checkSize(part.declared, part.layout) {
			return fmt.Errorf("%s size %d, layout %d: %w", part.name, part.declared, part.layout, ErrInvalidParameter)
		}
		if wanted(part.buf, part.declared) && len(part.buf) < p.Count*part.declared {
			return fmt.Errorf("%s buffer holds %d bytes, need %d: %w",
				part.name, len(part.buf), p.Count*part.declared, ErrInvalidParameter)
		}
	}
	return nil
}

// GetParameter copies len(out) bytes at offset from one sub-record of the
// row identified by key.
func (p *Provider) GetParameter(module ModuleID, table TableID, key []byte, kind ParamKind, offset int, out []byte) error {
	t, err := p.lookup(module, table)
	if err != nil {
		return err
	}
	var size int
	switch kind {
	case ParamRW:
		size = t.Sizes.RW
	case ParamDynamic:
		size = t.Sizes.Dynamic
	case ParamStatic:
		size = t.Sizes.Static
	default:
		return fmt.Errorf("parameter kind %d: %w", kind, ErrInvalidParameter)
	}
	if offset < 0 || offset+len(out) > size {
		return fmt.Errorf("range %d+%d outside %d byte record: %w", offset, len(out), size, ErrInvalidParameter)
	}

	scratch := make([]byte, size)
	var rw, dynamic, static []byte
	switch kind {
	case ParamRW:
		rw = scratch
	case ParamDynamic:
		dynamic = scratch
	case ParamStatic:
		static = scratch
	}
	if err := p.GetAllParameters(module, table, key, rw, dynamic, static); err != nil {
		return err
	}
	copy(out, scratch[offset:])
	return nil
}
