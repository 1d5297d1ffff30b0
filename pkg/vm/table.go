package vm

import (
	"sort"

	"github.com/enpitsuLin/taiyi/pkg/io"
)

// Table is the opaque key-value data a contract function returns and the
// shared/private contract data entities carry. Keys are iterated in sorted
// order whenever the table is serialized so the byte form is deterministic.
type Table map[string]string

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// sortedKeys returns table keys in lexicographic order.
func (t Table) sortedKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PackSize returns the serialized size of the table in bytes. It is the unit
// used for state-growth mana charges.
func (t Table) PackSize() int {
	size := io.GetVarSize(len(t))
	for k, v := range t {
		size += io.GetVarSize(k) + io.GetVarSize(v)
	}
	return size
}

// EncodeBinary implements the io.Serializable interface.
func (t Table) EncodeBinary(w *io.BinWriter) {
	w.WriteVarUint(uint64(len(t)))
	for _, k := range t.sortedKeys() {
		w.WriteString(k)
		w.WriteString(t[k])
	}
}

// DecodeTable reads a Table from the given reader.
func DecodeTable(r *io.BinReader) Table {
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	t := make(Table, n)
	for i := uint64(0); i < n; i++ {
		k := r.ReadString()
		v := r.ReadString()
		if r.Err != nil {
			return nil
		}
		t[k] = v
	}
	return t
}
