// Package accessor composes the register catalog and the Modbus
// transport into a typed read_by_name/write_by_name interface. It is
// the only component that translates a symbolic register name into an
// on-wire address and back into a decoded value.
package accessor

import (
	"context"

	"github.com/nattery/edge-bridge/internal/errs"
	"github.com/nattery/edge-bridge/internal/registry"
)

// RawTransport is the subset of transport.Transport the accessor needs.
// Declaring it locally lets queue/sampler/health tests substitute a fake
// transport without a real serial port.
type RawTransport interface {
	ReadHolding(ctx context.Context, addr, count uint16) ([]uint16, error)
	ReadInput(ctx context.Context, addr, count uint16) ([]uint16, error)
	WriteHolding(ctx context.Context, addr, value uint16) (bool, error)
	IsConnected() bool
	ConsecutiveFailures() uint32
}

// Decoder and Encoder are the value codec the Accessor applies; they are
// passed in rather than imported. The production wiring and the tests
// both use transport.DecodeValue/EncodeU16OrI16.
type Decoder func(words []uint16, dt registry.DataType, scale float64) (float64, bool)
type Encoder func(value float64, dt registry.DataType, scale float64) uint16

// Accessor composes a Catalog and a RawTransport.
type Accessor struct {
	catalog   *registry.Catalog
	transport RawTransport
	decode    Decoder
	encode    Encoder
}

// New builds an Accessor. decode/encode are normally
// transport.DecodeValue / transport.EncodeU16OrI16.
func New(catalog *registry.Catalog, t RawTransport, decode Decoder, encode Encoder) *Accessor {
	return &Accessor{catalog: catalog, transport: t, decode: decode, encode: encode}
}

// ReadByName reads and decodes a single register by its symbolic name.
func (a *Accessor) ReadByName(ctx context.Context, name string) (float64, error) {
	reg, err := a.catalog.Lookup(name)
	if err != nil {
		return 0, err
	}

	count := uint16(reg.DataType.WordCount())

	var words []uint16
	if reg.IsInputRegister() {
		words, err = a.transport.ReadInput(ctx, reg.Address-30000, count)
	} else {
		words, err = a.transport.ReadHolding(ctx, reg.Address, count)
	}
	if err != nil {
		return 0, err
	}

	value, ok := a.decode(words, reg.DataType, reg.Scale)
	if !ok {
		return 0, &errs.TransportError{Detail: "short register read for " + name}
	}
	return value, nil
}

// WriteByName writes a single register by its symbolic name.
func (a *Accessor) WriteByName(ctx context.Context, name string, value float64) (bool, error) {
	reg, err := a.catalog.Lookup(name)
	if err != nil {
		return false, err
	}
	if !reg.Writable {
		return false, &errs.NotWritableError{Name: name}
	}
	if reg.DataType != registry.U16 && reg.DataType != registry.I16 {
		return false, &errs.EncodingUnsupportedError{DataType: reg.DataType.String()}
	}

	word := a.encode(value, reg.DataType, reg.Scale)
	return a.transport.WriteHolding(ctx, reg.Address, word)
}

// ReadAll reads the curated sampler register set, sleeping a short
// interval between reads, and returns name -> value for every register
// that read successfully. Registers that fail to read are simply
// omitted.
func (a *Accessor) ReadAll(ctx context.Context, sleepBetween func()) map[string]float64 {
	out := make(map[string]float64, len(registry.SamplerRegisters))
	for i, name := range registry.SamplerRegisters {
		value, err := a.ReadByName(ctx, name)
		if err == nil {
			out[name] = value
		}
		if i < len(registry.SamplerRegisters)-1 && sleepBetween != nil {
			sleepBetween()
		}
	}
	return out
}

// Transport exposes the underlying RawTransport for components (health
// supervisor) that need connection state alongside typed reads.
func (a *Accessor) Transport() RawTransport {
	return a.transport
}
