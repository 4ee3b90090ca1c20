package xleval

import (
	"fmt"
	"iter"
)

// CellLookup is the read-only view of a cell store that references resolve
// through. Implementations must not mutate cells while an evaluation that
// holds references into them is running.
type CellLookup interface {
	// ValueAt returns the current evaluated value of a cell. Sheet, row and
	// column indexes count from zero. A nil result is treated as Blank.
	ValueAt(sheetx, rowx, colx int) Value
}

// LookupFunc adapts a plain function to CellLookup.
type LookupFunc func(sheetx, rowx, colx int) Value

func (f LookupFunc) ValueAt(sheetx, rowx, colx int) Value {
	return f(sheetx, rowx, colx)
}

// Ref3D is a box of one or more cells on a single sheet.
// The row and column upper bounds are exclusive:
// 0 <= RowXLo < RowXHi and 0 <= ColXLo < ColXHi.
type Ref3D struct {
	ShtX           int
	RowXLo, RowXHi int
	ColXLo, ColXHi int
}

// NewRef3D creates a box from inclusive first/last row and column indexes,
// normalising the corners so that the first index is the smaller one.
func NewRef3D(sheetx, firstRowx, firstColx, lastRowx, lastColx int) Ref3D {
	if lastRowx < firstRowx {
		firstRowx, lastRowx = lastRowx, firstRowx
	}
	if lastColx < firstColx {
		firstColx, lastColx = lastColx, firstColx
	}
	return Ref3D{
		ShtX:   sheetx,
		RowXLo: firstRowx,
		RowXHi: lastRowx + 1,
		ColXLo: firstColx,
		ColXHi: lastColx + 1,
	}
}

// String returns a string representation of the Ref3D.
func (r Ref3D) String() string {
	return fmt.Sprintf("Ref3D(sheet=%d, coords=[%d %d %d %d])", r.ShtX, r.RowXLo, r.RowXHi, r.ColXLo, r.ColXHi)
}

// RefValue is a reference to a single cell.
type RefValue struct {
	Sheetx int
	Rowx   int
	Colx   int

	lookup CellLookup
}

// NewRefValue creates a reference to one cell, resolved through lookup.
func NewRefValue(lookup CellLookup, sheetx, rowx, colx int) *RefValue {
	return &RefValue{Sheetx: sheetx, Rowx: rowx, Colx: colx, lookup: lookup}
}

func (*RefValue) Kind() Kind { return KindRef }
func (*RefValue) value()     {}

// InnerValue returns the current value of the referenced cell.
func (r *RefValue) InnerValue() Value {
	return resolve(r.lookup, r.Sheetx, r.Rowx, r.Colx)
}

func (r *RefValue) String() string {
	return CellNameAbs(r.Rowx, r.Colx, false)
}

// AreaValue is a reference to a rectangular range of cells.
type AreaValue struct {
	Ref3D

	lookup CellLookup
}

// NewAreaValue creates a range reference over box, resolved through lookup.
func NewAreaValue(lookup CellLookup, box Ref3D) *AreaValue {
	return &AreaValue{Ref3D: box, lookup: lookup}
}

func (*AreaValue) Kind() Kind { return KindArea }
func (*AreaValue) value()     {}

// Width is the number of columns in the range.
func (a *AreaValue) Width() int {
	return a.ColXHi - a.ColXLo
}

// Height is the number of rows in the range.
func (a *AreaValue) Height() int {
	return a.RowXHi - a.RowXLo
}

// IsRow reports whether the range is a single row.
func (a *AreaValue) IsRow() bool {
	return a.Height() == 1
}

// IsColumn reports whether the range is a single column.
func (a *AreaValue) IsColumn() bool {
	return a.Width() == 1
}

// RelativeValue returns the value at an offset from the top-left corner.
// Offsets outside the range yield #REF!.
func (a *AreaValue) RelativeValue(relRowx, relColx int) Value {
	if relRowx < 0 || relColx < 0 || relRowx >= a.Height() || relColx >= a.Width() {
		return ErrRef
	}
	return resolve(a.lookup, a.ShtX, a.RowXLo+relRowx, a.ColXLo+relColx)
}

// Values iterates the range in row-major order.
func (a *AreaValue) Values() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for r := 0; r < a.Height(); r++ {
			for c := 0; c < a.Width(); c++ {
				if !yield(a.RelativeValue(r, c)) {
					return
				}
			}
		}
	}
}

func (a *AreaValue) String() string {
	return RangeName2D(a.RowXLo, a.RowXHi, a.ColXLo, a.ColXHi, false)
}

func resolve(lookup CellLookup, sheetx, rowx, colx int) Value {
	if lookup == nil {
		return BlankValue
	}
	v := lookup.ValueAt(sheetx, rowx, colx)
	if v == nil {
		return BlankValue
	}
	return v
}

// Deref flattens reference indirection. A cell reference yields the cell's
// value; an area yields its top-left cell whatever its shape; every other
// value is returned unchanged. Deref never produces an error of its own.
func Deref(v Value) Value {
	switch t := v.(type) {
	case *RefValue:
		return Deref(t.InnerValue())
	case *AreaValue:
		return Deref(t.RelativeValue(0, 0))
	case nil:
		return BlankValue
	default:
		return v
	}
}
