// Package registry holds the fixed, read-only mapping from symbolic
// register name to Modbus address, data-type codec, and scale factor for
// the target inverter. The table is populated once at process start and
// never changes afterwards, so lookup is a plain map read.
package registry

import (
	"fmt"

	"github.com/nattery/edge-bridge/internal/errs"
)

// DataType identifies how a register's raw words are decoded and scaled.
type DataType int

const (
	U16 DataType = iota
	I16
	U32
	I32
	F32
	Bool
)

func (t DataType) String() string {
	switch t {
	case U16:
		return "u16"
	case I16:
		return "i16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	case F32:
		return "f32"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// WordCount returns how many 16-bit registers this data type spans.
func (t DataType) WordCount() int {
	switch t {
	case U32, I32, F32:
		return 2
	default:
		return 1
	}
}

// Register is an immutable descriptor for one named Modbus register.
type Register struct {
	Name        string
	Address     uint16
	DataType    DataType
	Scale       float64
	Unit        string
	Description string
	Writable    bool
}

// IsInputRegister reports whether this register lives in the input
// address space (>= 30000) rather than the holding address space. The
// Accessor subtracts 30000 before asking the Transport for the on-wire
// input read.
func (r Register) IsInputRegister() bool {
	return r.Address >= 30000
}

// Catalog is the process-wide, read-only set of register descriptors.
type Catalog struct {
	byName map[string]Register
}

// NewCatalog builds the catalog from the fixed register table. It is
// cheap and deterministic; callers construct exactly one and share it.
func NewCatalog() *Catalog {
	c := &Catalog{byName: make(map[string]Register, len(registerTable))}
	for _, r := range registerTable {
		c.byName[r.Name] = r
	}
	return c
}

// Lookup returns the register descriptor for name, or UnknownRegisterError.
func (c *Catalog) Lookup(name string) (Register, error) {
	r, ok := c.byName[name]
	if !ok {
		return Register{}, &errs.UnknownRegisterError{Name: name}
	}
	return r, nil
}

// All returns every register descriptor, in table order.
func (c *Catalog) All() []Register {
	out := make([]Register, len(registerTable))
	copy(out, registerTable)
	return out
}

// WritableOnly returns every writable register descriptor, in table order.
func (c *Catalog) WritableOnly() []Register {
	out := make([]Register, 0, len(registerTable))
	for _, r := range registerTable {
		if r.Writable {
			out = append(out, r)
		}
	}
	return out
}

// SamplerRegisters is the curated set of registers the Sampler reads on
// every tick.
var SamplerRegisters = []string{
	"battery_voltage",
	"battery_current",
	"battery_power",
	"battery_soc",
	"battery_temperature",
	"ac_voltage_output",
	"ac_current_output",
	"ac_power_output",
	"pv_voltage",
	"pv_current",
	"pv_power",
	"inverter_temperature",
	"working_mode",
	"fault_code",
}
