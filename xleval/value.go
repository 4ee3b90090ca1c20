package xleval

import "fmt"

// Value is the result of evaluating a formula expression or literal.
//
// The set of implementations is closed:
//   - Text: a string
//   - Number: a float64
//   - Boolean: TRUE or FALSE
//   - Blank: an empty cell
//   - ErrorCode: one of the Err* constants
//   - *RefValue: a reference to a single cell
//   - *AreaValue: a reference to a rectangular range of cells
//
// Values are immutable. Coercion never changes a value; it produces a Go
// string or float64 at the point of use.
type Value interface {
	Kind() Kind
	value()
}

// Kind identifies the variant of a Value.
type Kind int

const (
	KindBlank Kind = iota
	KindText
	KindNumber
	KindBoolean
	KindError
	KindRef
	KindArea
)

// KindDict maps kinds to their string representations.
var KindDict = map[Kind]string{
	KindBlank:   "Blank",
	KindText:    "Text",
	KindNumber:  "Number",
	KindBoolean: "Boolean",
	KindError:   "Error",
	KindRef:     "Ref",
	KindArea:    "Area",
}

func (k Kind) String() string {
	if s, ok := KindDict[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Text is a string value.
type Text string

// Number is a numeric value. Integers are represented as whole floats.
type Number float64

// Boolean is a TRUE/FALSE value.
type Boolean bool

// Blank is the value of an empty cell.
type Blank struct{}

// BlankValue is the Blank value.
var BlankValue = Blank{}

const (
	True  = Boolean(true)
	False = Boolean(false)
)

func (Text) Kind() Kind      { return KindText }
func (Number) Kind() Kind    { return KindNumber }
func (Boolean) Kind() Kind   { return KindBoolean }
func (Blank) Kind() Kind     { return KindBlank }
func (ErrorCode) Kind() Kind { return KindError }

func (Text) value()      {}
func (Number) value()    {}
func (Boolean) value()   {}
func (Blank) value()     {}
func (ErrorCode) value() {}

func (t Text) String() string {
	return string(t)
}

func (n Number) String() string {
	return Num2Str(float64(n))
}

func (b Boolean) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (Blank) String() string {
	return ""
}

// KindOf returns the kind of v. A nil Value is reported as KindBlank.
func KindOf(v Value) Kind {
	if v == nil {
		return KindBlank
	}
	return v.Kind()
}

// IsError reports whether v is an error value, returning its code.
func IsError(v Value) (ErrorCode, bool) {
	e, ok := v.(ErrorCode)
	return e, ok
}

// CellTypeOf maps a scalar value to the XL_CELL_* type a cell holding it
// would report. References report XL_CELL_EMPTY.
func CellTypeOf(v Value) int {
	switch v.(type) {
	case Text:
		return XL_CELL_TEXT
	case Number:
		return XL_CELL_NUMBER
	case Boolean:
		return XL_CELL_BOOLEAN
	case ErrorCode:
		return XL_CELL_ERROR
	case Blank:
		return XL_CELL_BLANK
	default:
		return XL_CELL_EMPTY
	}
}

// Display renders v the way a cell shows it. References are shown
// as their dereferenced value.
func Display(v Value) string {
	switch t := Deref(v).(type) {
	case ErrorCode:
		return t.String()
	case nil:
		return ""
	default:
		s, _ := ToText(t)
		return s
	}
}
