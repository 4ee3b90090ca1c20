package xleval

import (
	"strings"
)

// Sheet contains the cells of one worksheet.
//
// In the cell access functions, rowx is a row index, counting from zero,
// and colx is a column index, counting from zero.
//
// You don't instantiate this type yourself. You create Sheet objects via
// Book.AddSheet.
type Sheet struct {
	// Name is the name of the sheet.
	Name string

	// Book is a reference to the Book object to which this sheet belongs.
	Book *Book

	// NRows is the number of rows in sheet: one more than the maximum row
	// index holding a cell.
	NRows int

	// NCols is one more than the maximum column index holding a cell.
	NCols int

	sheetx int
	cells  map[cellKey]*Cell
}

type cellKey struct {
	rowx, colx int
}

// Cell represents a cell in a worksheet.
type Cell struct {
	// CType is the type of the cell.
	// One of: XL_CELL_EMPTY, XL_CELL_TEXT, XL_CELL_NUMBER, XL_CELL_BOOLEAN,
	// XL_CELL_ERROR, XL_CELL_BLANK, XL_CELL_FORMULA
	CType int

	// Value is the stored value of the cell. Nil for formula cells.
	Value Value

	// Formula is the formula text of a formula cell, without the leading "=".
	Formula string
}

// EmptyCell returns an empty cell.
func EmptyCell() *Cell {
	return &Cell{CType: XL_CELL_EMPTY, Value: BlankValue}
}

// Index returns the position of the sheet in its book.
func (s *Sheet) Index() int {
	return s.sheetx
}

func (s *Sheet) checkAddr(rowx, colx int) error {
	if rowx < 0 || rowx >= MaxRows || colx < 0 || colx >= MaxColumns {
		return NewXLEvalError("cell (%d, %d) out of range", rowx, colx)
	}
	return nil
}

func (s *Sheet) store(rowx, colx int, cell *Cell) {
	s.cells[cellKey{rowx, colx}] = cell
	s.NRows = max(s.NRows, rowx+1)
	s.NCols = max(s.NCols, colx+1)
}

// Put stores a scalar value. A nil value stores a blank cell. References
// cannot be stored; dereference them first.
func (s *Sheet) Put(rowx, colx int, v Value) error {
	if err := s.checkAddr(rowx, colx); err != nil {
		return err
	}
	if v == nil {
		v = BlankValue
	}
	switch v.(type) {
	case *RefValue, *AreaValue:
		return NewXLEvalError("cannot store a reference in %s", CellName(rowx, colx))
	}
	s.store(rowx, colx, &Cell{CType: CellTypeOf(v), Value: v})
	return nil
}

// PutFormula stores a formula. A leading "=" is optional.
func (s *Sheet) PutFormula(rowx, colx int, formula string) error {
	if err := s.checkAddr(rowx, colx); err != nil {
		return err
	}
	formula = strings.TrimPrefix(strings.TrimSpace(formula), "=")
	if formula == "" {
		return NewXLEvalError("empty formula for %s", CellName(rowx, colx))
	}
	s.store(rowx, colx, &Cell{CType: XL_CELL_FORMULA, Formula: formula})
	return nil
}

// Enter stores input the way typing it into a cell would: "=..." is a
// formula, TRUE/FALSE a boolean, "#N/A" style text an error, numeric text
// (in the book's culture) a number, the empty string a blank, and anything
// else text. A leading apostrophe forces text.
func (s *Sheet) Enter(rowx, colx int, input string) error {
	switch {
	case input == "":
		return s.Put(rowx, colx, BlankValue)
	case strings.HasPrefix(input, "'"):
		return s.Put(rowx, colx, Text(input[1:]))
	case strings.HasPrefix(input, "=") && len(input) > 1:
		return s.PutFormula(rowx, colx, input)
	}
	switch strings.ToUpper(input) {
	case "TRUE":
		return s.Put(rowx, colx, True)
	case "FALSE":
		return s.Put(rowx, colx, False)
	}
	if code, ok := ErrorCodeFromText(input); ok {
		return s.Put(rowx, colx, code)
	}
	if f, ok := s.Book.Coercer.culture().ParseNumber(input); ok {
		return s.Put(rowx, colx, Number(f))
	}
	return s.Put(rowx, colx, Text(input))
}

// Clear removes a cell.
func (s *Sheet) Clear(rowx, colx int) {
	delete(s.cells, cellKey{rowx, colx})
}

// Cell returns the Cell object at the given row and column.
func (s *Sheet) Cell(rowx, colx int) *Cell {
	if cell, ok := s.cells[cellKey{rowx, colx}]; ok {
		return cell
	}
	return EmptyCell()
}

// CellType returns the type of the cell at the given row and column.
func (s *Sheet) CellType(rowx, colx int) int {
	return s.Cell(rowx, colx).CType
}

// CellValue returns the evaluated value of the cell at the given row and column.
func (s *Sheet) CellValue(rowx, colx int) Value {
	return s.Book.ValueAt(s.sheetx, rowx, colx)
}

// Row returns the evaluated values of a row, up to NCols.
func (s *Sheet) Row(rowx int) []Value {
	row := make([]Value, s.NCols)
	for colx := range row {
		row[colx] = s.CellValue(rowx, colx)
	}
	return row
}

// RowLen returns the number of cells stored in the row.
func (s *Sheet) RowLen(rowx int) int {
	n := 0
	for key := range s.cells {
		if key.rowx == rowx {
			n++
		}
	}
	return n
}

// Evaluate evaluates formula as if it were entered at (rowx, colx).
func (s *Sheet) Evaluate(rowx, colx int, formula string) (Value, error) {
	return Evaluate(s.Book, s.sheetx, rowx, colx, formula)
}

func (s *Sheet) qualifiedName(rowx, colx int) string {
	return QuotedSheetName(s.Name) + "!" + CellName(rowx, colx)
}
