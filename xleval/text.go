package xleval

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Text functions. Positions and lengths count characters (runes), are
// 1-based, and are truncated toward zero when given as fractions.
// Arguments are coerced left to right and the first failure is the result.

// MaxTextLength is the longest string a cell can hold.
const MaxTextLength = 32767

// MID(text, start_num, num_chars) evaluated with DefaultCoercer.
var MID Function = mid(DefaultCoercer)

// TextFunctions returns the text function family bound to c.
func TextFunctions(c *Coercer) []FuncDef {
	return []FuncDef{
		{"CHAR", 1, 1, char(c)},
		{"CODE", 1, 1, code(c)},
		{"CONCATENATE", 1, VarArgs, concatenate(c)},
		{"EXACT", 2, 2, exact(c)},
		{"FIND", 2, 3, find(c, false)},
		{"LEFT", 1, 2, left(c)},
		{"LEN", 1, 1, length(c)},
		{"LOWER", 1, 1, mapText(c, strings.ToLower)},
		{"MID", 3, 3, mid(c)},
		{"REPT", 2, 2, rept(c)},
		{"RIGHT", 1, 2, right(c)},
		{"SEARCH", 2, 3, find(c, true)},
		{"TRIM", 1, 1, mapText(c, trimSpaces)},
		{"UPPER", 1, 1, mapText(c, strings.ToUpper)},
		{"VALUE", 1, 1, value(c)},
	}
}

func mid(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) != 3 {
			return ErrValue
		}
		text, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		start, err := c.ToInt(args[1])
		if err != nil {
			return AsErrorValue(err)
		}
		count, err := c.ToInt(args[2])
		if err != nil {
			return AsErrorValue(err)
		}
		if start < 1 || count < 0 {
			return ErrValue
		}
		return Text(substring(text, start-1, count))
	}
}

// substring returns up to count runes of s starting at rune offset off,
// clamped to the end of s.
func substring(s string, off, count int) string {
	runes := []rune(s)
	if off >= len(runes) {
		return ""
	}
	n := min(count, len(runes)-off)
	return string(runes[off : off+n])
}

// optionalCount coerces the optional character count of LEFT and RIGHT.
func optionalCount(c *Coercer, args []Value) (int, Value) {
	if len(args) < 2 {
		return 1, nil
	}
	n, err := c.ToInt(args[1])
	if err != nil {
		return 0, AsErrorValue(err)
	}
	if n < 0 {
		return 0, ErrValue
	}
	return n, nil
}

func left(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) < 1 || len(args) > 2 {
			return ErrValue
		}
		text, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		n, ev := optionalCount(c, args)
		if ev != nil {
			return ev
		}
		return Text(substring(text, 0, n))
	}
}

func right(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) < 1 || len(args) > 2 {
			return ErrValue
		}
		text, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		n, ev := optionalCount(c, args)
		if ev != nil {
			return ev
		}
		runes := []rune(text)
		if n >= len(runes) {
			return Text(text)
		}
		return Text(string(runes[len(runes)-n:]))
	}
}

func length(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) != 1 {
			return ErrValue
		}
		text, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		return Number(utf8.RuneCountInString(text))
	}
}

// mapText builds a one-argument function applying fn to its text.
func mapText(c *Coercer, fn func(string) string) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) != 1 {
			return ErrValue
		}
		text, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		return Text(fn(text))
	}
}

// trimSpaces removes leading and trailing spaces and collapses inner runs of
// spaces to one. Only the space character is affected.
func trimSpaces(s string) string {
	parts := strings.Split(s, " ")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func concatenate(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		var b strings.Builder
		for _, arg := range args {
			text, err := c.ToText(arg)
			if err != nil {
				return AsErrorValue(err)
			}
			b.WriteString(text)
		}
		if utf8.RuneCountInString(b.String()) > MaxTextLength {
			return ErrValue
		}
		return Text(b.String())
	}
}

func exact(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) != 2 {
			return ErrValue
		}
		a, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		b, err := c.ToText(args[1])
		if err != nil {
			return AsErrorValue(err)
		}
		return Boolean(a == b)
	}
}

func rept(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) != 2 {
			return ErrValue
		}
		text, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		n, err := c.ToInt(args[1])
		if err != nil {
			return AsErrorValue(err)
		}
		if n < 0 {
			return ErrValue
		}
		if n > 0 && utf8.RuneCountInString(text) > MaxTextLength/n {
			return ErrValue
		}
		return Text(strings.Repeat(text, n))
	}
}

// CHAR and CODE use the Windows ANSI code page, as Excel for Windows does.
var ansi = charmap.Windows1252

func char(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) != 1 {
			return ErrValue
		}
		n, err := c.ToInt(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		if n < 1 || n > 255 {
			return ErrValue
		}
		return Text(string(ansi.DecodeByte(byte(n))))
	}
}

func code(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) != 1 {
			return ErrValue
		}
		text, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		if text == "" {
			return ErrValue
		}
		r, _ := utf8.DecodeRuneInString(text)
		b, ok := ansi.EncodeRune(r)
		if !ok {
			return Number('?')
		}
		return Number(b)
	}
}

func value(c *Coercer) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) != 1 {
			return ErrValue
		}
		if _, ok := Deref(args[0]).(Boolean); ok {
			return ErrValue
		}
		f, err := c.ToNumber(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		return Number(f)
	}
}

// find implements FIND and, with fold set, SEARCH: case-insensitive
// matching with ? and * wildcards (~ escapes them).
func find(c *Coercer, fold bool) FunctionFunc {
	return func(args []Value, _, _ int) Value {
		if len(args) < 2 || len(args) > 3 {
			return ErrValue
		}
		needle, err := c.ToText(args[0])
		if err != nil {
			return AsErrorValue(err)
		}
		within, err := c.ToText(args[1])
		if err != nil {
			return AsErrorValue(err)
		}
		start := 1
		if len(args) == 3 {
			if start, err = c.ToInt(args[2]); err != nil {
				return AsErrorValue(err)
			}
		}
		runes := []rune(within)
		if start < 1 || start > len(runes)+1 {
			return ErrValue
		}
		if needle == "" {
			return Number(start)
		}

		haystack := string(runes[start-1:])
		var idx int
		if fold {
			re, err := regexp.Compile("(?is)" + wildcardPattern(needle))
			if err != nil {
				return ErrValue
			}
			loc := re.FindStringIndex(haystack)
			if loc == nil {
				return ErrValue
			}
			idx = loc[0]
		} else {
			idx = strings.Index(haystack, needle)
			if idx < 0 {
				return ErrValue
			}
		}
		return Number(start + utf8.RuneCountInString(haystack[:idx]))
	}
}

// wildcardPattern translates a SEARCH pattern into a regular expression.
func wildcardPattern(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '~':
			if i+1 < len(runes) && (runes[i+1] == '?' || runes[i+1] == '*' || runes[i+1] == '~') {
				i++
				b.WriteString(regexp.QuoteMeta(string(runes[i])))
			} else {
				b.WriteString(regexp.QuoteMeta("~"))
			}
		case '?':
			b.WriteString(".")
		case '*':
			b.WriteString(".*")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}
