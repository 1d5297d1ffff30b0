package state

import (
	"sort"

	"github.com/enpitsuLin/taiyi/pkg/crypto/keys"
	"github.com/enpitsuLin/taiyi/pkg/io"
	"github.com/enpitsuLin/taiyi/pkg/vm"
)

// Contract is a deployed script with an ABI and shared data.
type Contract struct {
	ID    ContractID
	Name  string
	Owner AccountID

	// ABI maps exported function names to their declarations.
	ABI map[string]string

	// Data is the contract-wide shared table.
	Data vm.Table

	// CheckContractAuthority demands ContractAuthority among the signing
	// keys of any transaction creating NFAs from this contract.
	CheckContractAuthority bool
	ContractAuthority      *keys.PublicKey
}

// HasFunction reports whether the ABI exports the named function.
func (c *Contract) HasFunction(name string) bool {
	_, ok := c.ABI[name]
	return ok
}

// EncodeBinary implements the io.Serializable interface.
func (c *Contract) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(c.ID))
	w.WriteString(c.Name)
	w.WriteU64LE(uint64(c.Owner))
	w.WriteVarUint(uint64(len(c.ABI)))
	names := make([]string, 0, len(c.ABI))
	for n := range c.ABI {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w.WriteString(n)
		w.WriteString(c.ABI[n])
	}
	c.Data.EncodeBinary(w)
	w.WriteBool(c.CheckContractAuthority)
	if c.ContractAuthority != nil {
		w.WriteBool(true)
		c.ContractAuthority.EncodeBinary(w)
	} else {
		w.WriteBool(false)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (c *Contract) DecodeBinary(r *io.BinReader) {
	c.ID = ContractID(r.ReadU64LE())
	c.Name = r.ReadString()
	c.Owner = AccountID(r.ReadU64LE())
	n := r.ReadVarUint()
	if r.Err != nil {
		return
	}
	c.ABI = make(map[string]string, n)
	for i := uint64(0); i < n; i++ {
		name := r.ReadString()
		c.ABI[name] = r.ReadString()
	}
	c.Data = vm.DecodeTable(r)
	c.CheckContractAuthority = r.ReadBool()
	if r.ReadBool() {
		c.ContractAuthority = new(keys.PublicKey)
		c.ContractAuthority.DecodeBinary(r)
	} else {
		c.ContractAuthority = nil
	}
}

// AccountContractData is the per-caller private table of a contract. It is
// auto-created on first use.
type AccountContractData struct {
	ID       AccountContractDataID
	Owner    AccountID
	Contract ContractID
	Data     vm.Table
}

// EncodeBinary implements the io.Serializable interface.
func (d *AccountContractData) EncodeBinary(w *io.BinWriter) {
	w.WriteU64LE(uint64(d.ID))
	w.WriteU64LE(uint64(d.Owner))
	w.WriteU64LE(uint64(d.Contract))
	d.Data.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (d *AccountContractData) DecodeBinary(r *io.BinReader) {
	d.ID = AccountContractDataID(r.ReadU64LE())
	d.Owner = AccountID(r.ReadU64LE())
	d.Contract = ContractID(r.ReadU64LE())
	d.Data = vm.DecodeTable(r)
}
