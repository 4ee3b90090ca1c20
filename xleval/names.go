package xleval

import (
	"fmt"
	"strconv"
	"strings"
)

// Column and row limits of an .xlsx worksheet.
const (
	MaxRows    = 1048576
	MaxColumns = 16384
)

// Colname returns the column name for a given column index (0-based).
// Example: Colname(0) returns "A", Colname(25) returns "Z", Colname(26) returns "AA"
func Colname(colx int) string {
	if colx < 0 {
		return ""
	}

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	name := ""
	for {
		quot := colx / 26
		rem := colx % 26
		name = string(alphabet[rem]) + name
		if quot == 0 {
			break
		}
		colx = quot - 1
	}
	return name
}

// CellName returns the cell name for a given row and column (0-based).
// Example: CellName(0, 0) returns "A1", CellName(5, 7) returns "H6"
func CellName(rowx, colx int) string {
	return Colname(colx) + strconv.Itoa(rowx+1)
}

// CellNameAbs returns the absolute cell name.
// Example: CellNameAbs(5, 7, false) returns "$H$6"
// If r1c1 is true, returns R1C1 style: "R6C8"
func CellNameAbs(rowx, colx int, r1c1 bool) string {
	if r1c1 {
		return fmt.Sprintf("R%dC%d", rowx+1, colx+1)
	}
	return fmt.Sprintf("$%s$%d", Colname(colx), rowx+1)
}

// RangeName2D returns a 2D range name. rhi and chi are exclusive.
// Example: RangeName2D(5, 20, 7, 10, false) returns "$H$6:$J$20"
func RangeName2D(rlo, rhi, clo, chi int, r1c1 bool) string {
	if r1c1 {
		return fmt.Sprintf("R%dC%d:R%dC%d", rlo+1, clo+1, rhi, chi)
	}
	if rhi == rlo+1 && chi == clo+1 {
		return CellNameAbs(rlo, clo, r1c1)
	}
	return fmt.Sprintf("%s:%s", CellNameAbs(rlo, clo, r1c1), CellNameAbs(rhi-1, chi-1, r1c1))
}

// ParseCellName converts an A1-style name such as "B3" or "$B$3" into
// 0-based row and column indexes.
func ParseCellName(name string) (rowx, colx int, err error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "$")

	i := 0
	colx = 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		colx = colx*26 + int(s[i]-'A'+1)
		if colx > MaxColumns {
			return 0, 0, NewXLEvalError("column out of range in cell name %q", name)
		}
		i++
	}
	if i == 0 {
		return 0, 0, NewXLEvalError("no column in cell name %q", name)
	}
	rest := strings.TrimPrefix(s[i:], "$")
	row, convErr := strconv.Atoi(rest)
	if convErr != nil || row < 1 || row > MaxRows || strings.HasPrefix(rest, "+") {
		return 0, 0, NewXLEvalError("bad row in cell name %q", name)
	}
	return row - 1, colx - 1, nil
}

// ParseRangeName splits an optional sheet qualifier from an A1-style cell or
// range name. "Sheet2!A1:B3" returns ("Sheet2", box) and "C4" returns ("", box).
// Quoted sheet names ('My Sheet'!A1) are unquoted. The ShtX of the returned
// box is left at zero for the caller to fill in.
func ParseRangeName(name string) (string, Ref3D, error) {
	sheetName := ""
	ref := strings.TrimSpace(name)
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		sheetName = ref[:i]
		ref = ref[i+1:]
		if len(sheetName) >= 2 && sheetName[0] == '\'' && sheetName[len(sheetName)-1] == '\'' {
			sheetName = strings.ReplaceAll(sheetName[1:len(sheetName)-1], "''", "'")
		}
		if sheetName == "" {
			return "", Ref3D{}, NewXLEvalError("empty sheet name in %q", name)
		}
	}

	first, last, isRange := strings.Cut(ref, ":")
	r1, c1, err := ParseCellName(first)
	if err != nil {
		return "", Ref3D{}, err
	}
	if !isRange {
		return sheetName, NewRef3D(0, r1, c1, r1, c1), nil
	}
	r2, c2, err := ParseCellName(last)
	if err != nil {
		return "", Ref3D{}, err
	}
	return sheetName, NewRef3D(0, r1, c1, r2, c2), nil
}

// QuotedSheetName returns a sheet name quoted for use in a formula if necessary.
func QuotedSheetName(shname string) string {
	if strings.ContainsAny(shname, "' !:-") {
		return "'" + strings.ReplaceAll(shname, "'", "''") + "'"
	}
	return shname
}
