package xleval

import (
	"fmt"
	"io"
)

// Formula evaluation limits
const (
	STACK_ALARM_LEVEL = 32
	STACK_PANIC_LEVEL = 256
)

// Book is an in-memory workbook: an ordered list of sheets that formula
// references resolve against.
//
// A Book is not safe for concurrent mutation. Any number of goroutines may
// evaluate against it as long as none of them changes a cell meanwhile.
type Book struct {
	// Registry holds the functions formulas in this book may call.
	Registry *Registry

	// Coercer converts values for operators and formula results.
	Coercer *Coercer

	sheetList  []*Sheet
	sheetNames []string
	logfile    io.Writer
	verbosity  int
}

// BookOptions contains options for creating a workbook.
type BookOptions struct {
	// Logfile is an open file to which messages and diagnostics are written.
	Logfile io.Writer

	// Verbosity increases the volume of trace material written to the logfile.
	Verbosity int

	// Culture governs how numeric text is parsed. Defaults to DefaultCulture.
	Culture *NumberCulture

	// Registry overrides the functions available to formulas.
	// Defaults to DefaultRegistry(Culture).
	Registry *Registry
}

// NewBook creates an empty workbook.
func NewBook(options *BookOptions) *Book {
	if options == nil {
		options = &BookOptions{}
	}
	bk := &Book{
		Coercer:   NewCoercer(options.Culture),
		Registry:  options.Registry,
		logfile:   options.Logfile,
		verbosity: options.Verbosity,
	}
	if bk.Registry == nil {
		bk.Registry = DefaultRegistry(bk.Coercer.Culture)
		bk.Registry.logfile = options.Logfile
		bk.Registry.verbosity = options.Verbosity
	}
	return bk
}

// AddSheet appends a new empty sheet.
func (b *Book) AddSheet(name string) (*Sheet, error) {
	if name == "" {
		return nil, NewXLEvalError("sheet name must not be empty")
	}
	if _, err := b.SheetByName(name); err == nil {
		return nil, NewXLEvalError("duplicate sheet name <%s>", name)
	}
	sh := &Sheet{
		Name:   name,
		Book:   b,
		sheetx: len(b.sheetList),
		cells:  make(map[cellKey]*Cell),
	}
	b.sheetList = append(b.sheetList, sh)
	b.sheetNames = append(b.sheetNames, name)
	b.logf(2, "add_sheet: %d %q\n", sh.sheetx, name)
	return sh, nil
}

// NSheets returns the number of sheets in the book.
func (b *Book) NSheets() int {
	return len(b.sheetList)
}

// Sheets returns a list of all sheets in the book.
func (b *Book) Sheets() []*Sheet {
	return b.sheetList
}

// SheetByIndex returns a sheet by its index.
func (b *Book) SheetByIndex(sheetx int) (*Sheet, error) {
	if sheetx < 0 || sheetx >= len(b.sheetList) {
		return nil, NewXLEvalError("sheet index %d out of range", sheetx)
	}
	return b.sheetList[sheetx], nil
}

// SheetByName returns a sheet by its name.
func (b *Book) SheetByName(sheetName string) (*Sheet, error) {
	for i, name := range b.sheetNames {
		if name == sheetName {
			return b.sheetList[i], nil
		}
	}
	return nil, NewXLEvalError("No sheet named <%s>", sheetName)
}

// SheetNames returns a list of all sheet names.
func (b *Book) SheetNames() []string {
	return b.sheetNames
}

// Get returns a sheet by index or name.
func (b *Book) Get(key interface{}) (*Sheet, error) {
	switch k := key.(type) {
	case int:
		return b.SheetByIndex(k)
	case string:
		return b.SheetByName(k)
	default:
		return nil, NewXLEvalError("Invalid key type for sheet access")
	}
}

// Ref builds a reference value from a name such as "B2", "A1:C3" or
// "Sheet2!A1". Unqualified names refer to the sheet at defaultSheetx.
func (b *Book) Ref(name string, defaultSheetx int) (Value, error) {
	sheetName, box, err := ParseRangeName(name)
	if err != nil {
		return nil, err
	}
	box.ShtX = defaultSheetx
	if sheetName != "" {
		sh, err := b.SheetByName(sheetName)
		if err != nil {
			return nil, err
		}
		box.ShtX = sh.sheetx
	}
	if box.RowXHi-box.RowXLo == 1 && box.ColXHi-box.ColXLo == 1 {
		return NewRefValue(b, box.ShtX, box.RowXLo, box.ColXLo), nil
	}
	return NewAreaValue(b, box), nil
}

// ValueAt implements CellLookup. Formula cells are evaluated on demand;
// an unknown sheet, a circular reference or runaway nesting gives #REF!.
func (b *Book) ValueAt(sheetx, rowx, colx int) Value {
	return b.valueAt(sheetx, rowx, colx, nil)
}

func (b *Book) valueAt(sheetx, rowx, colx int, ev *evaluation) Value {
	sh, err := b.SheetByIndex(sheetx)
	if err != nil {
		b.logf(1, "value_at: %v\n", err)
		return ErrRef
	}
	cell := sh.Cell(rowx, colx)
	if cell.CType != XL_CELL_FORMULA {
		if cell.Value == nil {
			return BlankValue
		}
		return cell.Value
	}

	if ev == nil {
		ev = &evaluation{book: b, active: make(map[cellAddr]bool)}
	}
	addr := cellAddr{sheetx, cellKey{rowx, colx}}
	if ev.active[addr] {
		b.logf(1, "value_at: circular reference at %s\n", sh.qualifiedName(rowx, colx))
		return ErrRef
	}
	if len(ev.active) >= STACK_PANIC_LEVEL {
		b.logf(1, "value_at: nesting too deep at %s\n", sh.qualifiedName(rowx, colx))
		return ErrRef
	}
	if len(ev.active) >= STACK_ALARM_LEVEL {
		b.logf(1, "value_at: nesting level %d at %s\n", len(ev.active), sh.qualifiedName(rowx, colx))
	}

	ev.active[addr] = true
	defer delete(ev.active, addr)

	result, err := ev.evaluate(sheetx, rowx, colx, cell.Formula)
	if err != nil {
		b.logf(1, "value_at: %s: %v\n", sh.qualifiedName(rowx, colx), err)
		return ErrValue
	}
	result = Deref(result)
	if _, ok := result.(Blank); ok {
		// a formula pointing at an empty cell shows 0
		return Number(0)
	}
	return result
}

func (b *Book) logf(level int, format string, args ...interface{}) {
	if b.verbosity >= level && b.logfile != nil {
		fmt.Fprintf(b.logfile, format, args...)
	}
}

type cellAddr struct {
	sheetx int
	key    cellKey
}

// evaluation tracks the formula cells being computed by one top-level call
// so that cycles are detected across nested references.
type evaluation struct {
	book   *Book
	active map[cellAddr]bool
}

// ValueAt implements CellLookup for references created during this
// evaluation, so nested formula cells share the cycle check.
func (ev *evaluation) ValueAt(sheetx, rowx, colx int) Value {
	return ev.book.valueAt(sheetx, rowx, colx, ev)
}
