package xleval

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NumberCulture holds the separators used when text is coerced to a number.
type NumberCulture struct {
	Tag     language.Tag
	Decimal rune
	Group   rune // zero when the locale does not group digits
}

// DefaultCulture is used when no culture is configured. It is fixed to
// en-US and does not follow the process environment.
var DefaultCulture = NewNumberCulture(language.AmericanEnglish)

// probe has two grouping boundaries so locales with a minimum grouping of
// two digits (es, pl) still show their group separator.
const probe = 1234567.5

// NewNumberCulture derives the decimal and group separators of tag by
// formatting a probe number with the CLDR data in golang.org/x/text.
func NewNumberCulture(tag language.Tag) *NumberCulture {
	p := message.NewPrinter(tag)
	rendered := p.Sprintf("%v", number.Decimal(probe))

	var runs [][]rune
	var cur []rune
	for _, r := range rendered {
		if unicode.IsDigit(r) {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}

	nc := &NumberCulture{Tag: tag, Decimal: '.'}
	switch {
	case len(runs) == 1:
		nc.Decimal = runs[0][0]
	case len(runs) > 1:
		nc.Group = runs[0][0]
		nc.Decimal = runs[len(runs)-1][0]
	}
	return nc
}

// ParseCulture builds a NumberCulture from a BCP 47 tag such as "en-US" or "de".
func ParseCulture(tag string) (*NumberCulture, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return nil, NewXLEvalError("bad locale %q: %v", tag, err)
	}
	return NewNumberCulture(t), nil
}

func (nc *NumberCulture) String() string {
	return nc.Tag.String()
}

func (nc *NumberCulture) isGroup(r rune) bool {
	if nc.Group == 0 {
		return false
	}
	if r == nc.Group {
		return true
	}
	// no-break spaces are typed as plain spaces
	return r == ' ' && (nc.Group == '\u00a0' || nc.Group == '\u202f')
}

// ParseNumber parses numeric text the way a cell entry is interpreted:
// surrounding spaces, a leading sign, group separators between groups of
// three digits, one decimal separator, an exponent and a trailing percent
// sign are accepted.
func (nc *NumberCulture) ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}

	runes := []rune(s)
	var b strings.Builder
	i := 0
	if i < len(runes) && (runes[i] == '+' || runes[i] == '-') {
		if runes[i] == '-' {
			b.WriteByte('-')
		}
		i++
	}

	digits := 0
	seenDecimal := false
	groupRun := -1 // digits since the last group separator, -1 when none seen
	for ; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
			if groupRun >= 0 && !seenDecimal {
				groupRun++
			}
		case r == nc.Decimal && !seenDecimal:
			if groupRun >= 0 && groupRun != 3 {
				return 0, false
			}
			seenDecimal = true
			b.WriteByte('.')
		case nc.isGroup(r) && !seenDecimal:
			if digits == 0 || (groupRun >= 0 && groupRun != 3) {
				return 0, false
			}
			groupRun = 0
		case r == 'e' || r == 'E':
			if digits == 0 {
				return 0, false
			}
			exp, ok := parseExponent(runes[i+1:])
			if !ok {
				return 0, false
			}
			b.WriteByte('e')
			b.WriteString(exp)
			i = len(runes)
		default:
			return 0, false
		}
	}
	if digits == 0 || (groupRun >= 0 && !seenDecimal && groupRun != 3) {
		return 0, false
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	if percent {
		f /= 100
	}
	return f, true
}

func parseExponent(runes []rune) (string, bool) {
	var b strings.Builder
	i := 0
	if i < len(runes) && (runes[i] == '+' || runes[i] == '-') {
		b.WriteRune(runes[i])
		i++
	}
	n := 0
	for ; i < len(runes); i++ {
		if runes[i] < '0' || runes[i] > '9' {
			return "", false
		}
		b.WriteRune(runes[i])
		n++
	}
	return b.String(), n > 0
}
