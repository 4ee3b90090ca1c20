package xleval

import (
	"fmt"
	"strings"
)

// XLEvalError represents a failure that is not itself a spreadsheet value,
// such as a malformed cell address or an unknown sheet name.
type XLEvalError struct {
	Message string
}

func (e *XLEvalError) Error() string {
	return e.Message
}

// NewXLEvalError creates a new XLEvalError with the given message.
func NewXLEvalError(format string, args ...interface{}) *XLEvalError {
	return &XLEvalError{Message: fmt.Sprintf(format, args...)}
}

// Cell types
const (
	XL_CELL_EMPTY   = 0
	XL_CELL_TEXT    = 1
	XL_CELL_NUMBER  = 2
	XL_CELL_BOOLEAN = 4
	XL_CELL_ERROR   = 5
	XL_CELL_BLANK   = 6 // present in the store but holding no value
	XL_CELL_FORMULA = 7
)

var cellTypeText = map[int]string{
	XL_CELL_EMPTY:   "empty",
	XL_CELL_TEXT:    "text",
	XL_CELL_NUMBER:  "number",
	XL_CELL_BOOLEAN: "boolean",
	XL_CELL_ERROR:   "error",
	XL_CELL_BLANK:   "blank",
	XL_CELL_FORMULA: "formula",
}

// CellTypeText returns a text representation of a cell type constant.
func CellTypeText(ctype int) string {
	if text, ok := cellTypeText[ctype]; ok {
		return text
	}
	return fmt.Sprintf("Unknown(%d)", ctype)
}

// ErrorCode is the error variant of Value. The numeric values are the
// codes Excel writes into BIFF BOOLERR records.
type ErrorCode byte

const (
	ErrNull  ErrorCode = 0x00 // Intersection of two cell ranges is empty
	ErrDiv0  ErrorCode = 0x07 // Division by zero
	ErrValue ErrorCode = 0x0F // Wrong type of operand
	ErrRef   ErrorCode = 0x17 // Illegal or deleted cell reference
	ErrName  ErrorCode = 0x1D // Wrong function or range name
	ErrNum   ErrorCode = 0x24 // Value range overflow
	ErrNA    ErrorCode = 0x2A // Argument or function not available
)

// ErrorTextFromCode returns a text representation of an Excel error code.
var ErrorTextFromCode = map[ErrorCode]string{
	ErrNull:  "#NULL!",
	ErrDiv0:  "#DIV/0!",
	ErrValue: "#VALUE!",
	ErrRef:   "#REF!",
	ErrName:  "#NAME?",
	ErrNum:   "#NUM!",
	ErrNA:    "#N/A",
}

// ErrorCodeFromText looks up an error code by its display text, ignoring case.
func ErrorCodeFromText(text string) (ErrorCode, bool) {
	text = strings.ToUpper(strings.TrimSpace(text))
	for code, t := range ErrorTextFromCode {
		if t == text {
			return code, true
		}
	}
	return 0, false
}

func (e ErrorCode) Error() string {
	return e.String()
}

func (e ErrorCode) String() string {
	if text, ok := ErrorTextFromCode[e]; ok {
		return text
	}
	return fmt.Sprintf("#ERR(0x%02X)", byte(e))
}

// Known reports whether e is one of the standard error codes.
func (e ErrorCode) Known() bool {
	_, ok := ErrorTextFromCode[e]
	return ok
}
