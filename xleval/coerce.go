package xleval

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Coercer converts evaluated values to the Go types function parameters
// need. Every method dereferences its argument first. Failures are returned
// as an ErrorCode; an argument that already is an error is returned as-is.
type Coercer struct {
	Culture *NumberCulture
}

// DefaultCoercer parses numeric text with DefaultCulture.
var DefaultCoercer = &Coercer{Culture: DefaultCulture}

// NewCoercer returns a Coercer using culture, or DefaultCulture if nil.
func NewCoercer(culture *NumberCulture) *Coercer {
	if culture == nil {
		culture = DefaultCulture
	}
	return &Coercer{Culture: culture}
}

func (c *Coercer) culture() *NumberCulture {
	if c == nil || c.Culture == nil {
		return DefaultCulture
	}
	return c.Culture
}

// ToText coerces v to a string.
func (c *Coercer) ToText(v Value) (string, error) {
	switch t := Deref(v).(type) {
	case Text:
		return string(t), nil
	case Number:
		return Num2Str(float64(t)), nil
	case Boolean:
		return t.String(), nil
	case Blank:
		return "", nil
	case ErrorCode:
		return "", t
	default:
		return "", ErrValue
	}
}

// ToNumber coerces v to a float64. Text that does not parse is #VALUE!.
func (c *Coercer) ToNumber(v Value) (float64, error) {
	switch t := Deref(v).(type) {
	case Number:
		return float64(t), nil
	case Text:
		f, ok := c.culture().ParseNumber(string(t))
		if !ok {
			return 0, ErrValue
		}
		return f, nil
	case Boolean:
		if t {
			return 1, nil
		}
		return 0, nil
	case Blank:
		return 0, nil
	case ErrorCode:
		return 0, t
	default:
		return 0, ErrValue
	}
}

// ToInt coerces v to a number and truncates it toward zero. Magnitudes
// beyond the 32-bit range saturate; NaN and infinities are #VALUE!.
func (c *Coercer) ToInt(v Value) (int, error) {
	f, err := c.ToNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrValue
	}
	f = math.Trunc(f)
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32, nil
	case f < math.MinInt32:
		return math.MinInt32, nil
	}
	return int(f), nil
}

// ToBool coerces v to a boolean. Numbers are true when non-zero; text must
// spell TRUE or FALSE.
func (c *Coercer) ToBool(v Value) (bool, error) {
	switch t := Deref(v).(type) {
	case Boolean:
		return bool(t), nil
	case Number:
		return t != 0, nil
	case Text:
		switch strings.ToUpper(strings.TrimSpace(string(t))) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		return false, ErrValue
	case Blank:
		return false, nil
	case ErrorCode:
		return false, t
	default:
		return false, ErrValue
	}
}

// ToText coerces v to a string using DefaultCoercer.
func ToText(v Value) (string, error) {
	return DefaultCoercer.ToText(v)
}

// ToNumber coerces v to a float64 using DefaultCoercer.
func ToNumber(v Value) (float64, error) {
	return DefaultCoercer.ToNumber(v)
}

// ToInt coerces v to a truncated int using DefaultCoercer.
func ToInt(v Value) (int, error) {
	return DefaultCoercer.ToInt(v)
}

// ToBool coerces v to a bool using DefaultCoercer.
func ToBool(v Value) (bool, error) {
	return DefaultCoercer.ToBool(v)
}

// AsErrorValue converts an error returned by a coercion back into a Value.
// Errors that are not an ErrorCode become #VALUE!.
func AsErrorValue(err error) Value {
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ErrValue
}

// FirstError returns the first error value among args after dereferencing,
// scanning left to right.
func FirstError(args []Value) (ErrorCode, bool) {
	for _, arg := range args {
		if e, ok := Deref(arg).(ErrorCode); ok {
			return e, true
		}
	}
	return 0, false
}

// Num2Str converts a number to string, emulating Excel's General format:
// at most 15 significant digits, no trailing fraction for whole numbers,
// and scientific notation for very large or very small magnitudes.
func Num2Str(num float64) string {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return ErrNum.String()
	}
	if num == 0 {
		return "0"
	}
	// round to the 15 significant digits Excel keeps
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(num, 'g', 15, 64), 64)

	abs := math.Abs(rounded)
	if abs >= 1e-9 && abs < 1e21 {
		return strconv.FormatFloat(rounded, 'f', -1, 64)
	}

	s := strconv.FormatFloat(rounded, 'E', -1, 64)
	mant, exp, _ := strings.Cut(s, "E")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	if len(exp) < 2 {
		exp = strings.Repeat("0", 2-len(exp)) + exp
	}
	return mant + "E" + string(sign) + exp
}
