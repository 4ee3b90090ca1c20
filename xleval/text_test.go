package xleval

import (
	"testing"
	"unicode/utf8"
)

// gridLookup serves a fixed grid of values on sheet 0, anchored at A1.
type gridLookup [][]Value

func (g gridLookup) ValueAt(sheetx, rowx, colx int) Value {
	if sheetx != 0 || rowx < 0 || rowx >= len(g) || colx < 0 || colx >= len(g[rowx]) {
		return BlankValue
	}
	return g[rowx][colx]
}

func invokeMid(text, startPos, numChars Value) Value {
	return MID.Evaluate([]Value{text, startPos, numChars}, -1, -1)
}

func confirmMid(t *testing.T, text, startPos, numChars Value, want string) {
	t.Helper()
	result := invokeMid(text, startPos, numChars)
	got, ok := result.(Text)
	if !ok {
		t.Fatalf("MID(%v, %v, %v) = %#v (%v), want Text %q", text, startPos, numChars, result, KindOf(result), want)
	}
	if string(got) != want {
		t.Errorf("MID(%v, %v, %v) = %q, want %q", text, startPos, numChars, got, want)
	}
}

func confirmMidError(t *testing.T, text, startPos, numChars Value, want ErrorCode) {
	t.Helper()
	result := invokeMid(text, startPos, numChars)
	got, ok := result.(ErrorCode)
	if !ok {
		t.Fatalf("MID(%v, %v, %v) = %#v, want error %v", text, startPos, numChars, result, want)
	}
	if got != want {
		t.Errorf("MID(%v, %v, %v) = %v, want %v", text, startPos, numChars, got, want)
	}
}

func TestMidBasic(t *testing.T) {
	confirmMid(t, Text("galactic"), Number(3), Number(4), "lact")
}

func TestMidUnusualArgs(t *testing.T) {
	// startPos with fractional digits
	confirmMid(t, Text("galactic"), Number(3.1), Number(4), "lact")

	// string startPos
	confirmMid(t, Text("galactic"), Text("3"), Number(4), "lact")

	// numeric text arg, other args are strings with fractional digits
	confirmMid(t, Number(123456), Text("3.1"), Text("2.9"), "34")

	// startPos is a 1x1 area ref, numChars is a cell ref
	area := NewAreaValue(gridLookup{{Number(2)}}, NewRef3D(0, 0, 0, 0, 0))
	ref := NewRefValue(gridLookup{{BlankValue, Number(3)}}, 0, 0, 1)
	confirmMid(t, Text("galactic"), area, ref, "ala")

	confirmMid(t, Text("galactic"), Number(3.1), BlankValue, "")

	confirmMid(t, Text("galactic"), Number(3), False, "")
	confirmMid(t, Text("galactic"), Number(3), True, "l")
	confirmMid(t, BlankValue, Number(3), True, "")
}

func TestMidAreaUsesTopLeft(t *testing.T) {
	grid := gridLookup{
		{Number(2), Text("x")},
		{Number(9), ErrDiv0},
	}
	area := NewAreaValue(grid, NewRef3D(0, 0, 0, 1, 1))
	confirmMid(t, Text("galactic"), area, Number(3), "ala")

	textArea := NewAreaValue(gridLookup{{Text("hello"), Text("ignored")}}, NewRef3D(0, 0, 0, 0, 1))
	confirmMid(t, textArea, Number(2), Number(3), "ell")
}

func TestMidExtremes(t *testing.T) {
	confirmMid(t, Text("galactic"), Number(4), Number(400), "actic")

	confirmMid(t, Text("galactic"), Number(30), Number(4), "")
	confirmMid(t, Text("galactic"), Number(3), Number(0), "")

	confirmMid(t, Text("galactic"), Number(1), Number(1e12), "galactic")
	confirmMid(t, Text("galactic"), Number(1e12), Number(2), "")
}

func TestMidErrors(t *testing.T) {
	confirmMidError(t, ErrName, Number(3), Number(4), ErrName)
	confirmMidError(t, Text("galactic"), ErrName, Number(4), ErrName)
	confirmMidError(t, Text("galactic"), Number(3), ErrName, ErrName)
	confirmMidError(t, Text("galactic"), ErrDiv0, ErrName, ErrDiv0)

	confirmMidError(t, Text("galactic"), BlankValue, Number(3.1), ErrValue)

	confirmMidError(t, Text("galactic"), Number(0), Number(4), ErrValue)
	confirmMidError(t, Text("galactic"), Number(1), Number(-1), ErrValue)

	confirmMidError(t, Text("galactic"), Text("three"), Number(4), ErrValue)

	// an error held in a referenced cell propagates unchanged
	ref := NewRefValue(gridLookup{{ErrNA}}, 0, 0, 0)
	confirmMidError(t, ref, Number(3), Number(4), ErrNA)
}

func TestMidWrongArgCount(t *testing.T) {
	if got := MID.Evaluate([]Value{Text("galactic"), Number(3)}, -1, -1); got != ErrValue {
		t.Errorf("MID with 2 args = %v, want %v", got, ErrValue)
	}
}

func TestMidCountsCharacters(t *testing.T) {
	confirmMid(t, Text("日本語テキスト"), Number(2), Number(3), "本語テ")
}

func TestMidSubstringLength(t *testing.T) {
	texts := []string{"", "a", "galactic", "ünïcödé"}
	for _, text := range texts {
		n := utf8.RuneCountInString(text)
		for start := 1; start <= n+3; start++ {
			for count := 0; count <= n+3; count++ {
				result := invokeMid(Text(text), Number(start), Number(count))
				got, ok := result.(Text)
				if !ok {
					t.Fatalf("MID(%q, %d, %d) = %v, want text", text, start, count, result)
				}
				want := min(count, max(0, n-(start-1)))
				if l := utf8.RuneCountInString(string(got)); l != want {
					t.Errorf("len(MID(%q, %d, %d)) = %d, want %d", text, start, count, l, want)
				}
				if want > 0 && string([]rune(text)[start-1:start-1+want]) != string(got) {
					t.Errorf("MID(%q, %d, %d) = %q, not a substring at %d", text, start, count, got, start)
				}
			}
		}
	}
}

func callText(t *testing.T, name string, args ...Value) Value {
	t.Helper()
	return DefaultRegistry(nil).Call(name, args, -1, -1)
}

func TestTextFunctions(t *testing.T) {
	tests := []struct {
		name string
		args []Value
		want Value
	}{
		{"LEFT", []Value{Text("galactic")}, Text("g")},
		{"LEFT", []Value{Text("galactic"), Number(3.9)}, Text("gal")},
		{"LEFT", []Value{Text("galactic"), Number(100)}, Text("galactic")},
		{"LEFT", []Value{Text("galactic"), Number(-1)}, ErrValue},
		{"RIGHT", []Value{Text("galactic")}, Text("c")},
		{"RIGHT", []Value{Text("galactic"), Number(4)}, Text("ctic")},
		{"RIGHT", []Value{Number(123456), Number(2)}, Text("56")},
		{"LEN", []Value{Text("galactic")}, Number(8)},
		{"LEN", []Value{BlankValue}, Number(0)},
		{"LEN", []Value{True}, Number(4)},
		{"LOWER", []Value{Text("GaLaCtIc")}, Text("galactic")},
		{"UPPER", []Value{Text("galactic")}, Text("GALACTIC")},
		{"TRIM", []Value{Text("  a   b  c ")}, Text("a b c")},
		{"CONCATENATE", []Value{Text("a"), Number(1), True, BlankValue}, Text("a1TRUE")},
		{"CONCATENATE", []Value{Text("a"), ErrRef, ErrDiv0}, ErrRef},
		{"EXACT", []Value{Text("abc"), Text("abc")}, True},
		{"EXACT", []Value{Text("abc"), Text("ABC")}, False},
		{"EXACT", []Value{Number(1), Text("1")}, True},
		{"REPT", []Value{Text("ab"), Number(3)}, Text("ababab")},
		{"REPT", []Value{Text("ab"), Number(0)}, Text("")},
		{"REPT", []Value{Text("ab"), Number(-1)}, ErrValue},
		{"REPT", []Value{Text("ab"), Number(20000)}, ErrValue},
		{"CHAR", []Value{Number(65)}, Text("A")},
		{"CHAR", []Value{Number(128)}, Text("€")},
		{"CHAR", []Value{Number(0)}, ErrValue},
		{"CHAR", []Value{Number(256)}, ErrValue},
		{"CODE", []Value{Text("A")}, Number(65)},
		{"CODE", []Value{Text("€uro")}, Number(128)},
		{"CODE", []Value{Text("")}, ErrValue},
		{"CODE", []Value{Text("日")}, Number(63)},
		{"VALUE", []Value{Text(" 1,234.5 ")}, Number(1234.5)},
		{"VALUE", []Value{Text("12%")}, Number(0.12)},
		{"VALUE", []Value{Text("abc")}, ErrValue},
		{"VALUE", []Value{True}, ErrValue},
		{"VALUE", []Value{BlankValue}, Number(0)},
		{"FIND", []Value{Text("a"), Text("galactic")}, Number(2)},
		{"FIND", []Value{Text("a"), Text("galactic"), Number(3)}, Number(4)},
		{"FIND", []Value{Text("A"), Text("galactic")}, ErrValue},
		{"FIND", []Value{Text(""), Text("galactic"), Number(5)}, Number(5)},
		{"FIND", []Value{Text("a"), Text("galactic"), Number(0)}, ErrValue},
		{"SEARCH", []Value{Text("A"), Text("galactic")}, Number(2)},
		{"SEARCH", []Value{Text("l?c"), Text("galactic")}, Number(3)},
		{"SEARCH", []Value{Text("t*c"), Text("galactic")}, Number(6)},
		{"SEARCH", []Value{Text("~*"), Text("a*b")}, Number(2)},
		{"SEARCH", []Value{Text("z"), Text("galactic")}, ErrValue},
		{"MID", []Value{Text("galactic"), Number(3), Number(4)}, Text("lact")},
	}
	for _, tt := range tests {
		got := callText(t, tt.name, tt.args...)
		if got != tt.want {
			t.Errorf("%s(%v) = %#v, want %#v", tt.name, tt.args, got, tt.want)
		}
	}
}

func TestTextFunctionsUseCulture(t *testing.T) {
	de, err := ParseCulture("de-DE")
	if err != nil {
		t.Fatalf("ParseCulture: %v", err)
	}
	r := DefaultRegistry(de)
	if got := r.Call("MID", []Value{Text("galactic"), Text("3,1"), Text("2,9")}, -1, -1); got != Text("la") {
		t.Errorf("MID with de-DE text args = %#v, want %q", got, "la")
	}
	if got := r.Call("VALUE", []Value{Text("1.234,5")}, -1, -1); got != Number(1234.5) {
		t.Errorf("VALUE(\"1.234,5\") in de-DE = %#v, want 1234.5", got)
	}
}
