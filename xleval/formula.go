package xleval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// FormulaError represents an error in formula parsing.
type FormulaError struct {
	Message string
}

func (e *FormulaError) Error() string {
	return e.Message
}

// NewFormulaError creates a new FormulaError with the given message.
func NewFormulaError(format string, args ...interface{}) *FormulaError {
	return &FormulaError{Message: fmt.Sprintf(format, args...)}
}

// Operator precedence ranks, loosest first.
const (
	rankCompare = 10
	rankConcat  = 20
	rankAdd     = 30
	rankMul     = 40
	rankPower   = 50
)

var binopRanks = map[string]int{
	"=":  rankCompare,
	"<>": rankCompare,
	"<":  rankCompare,
	"<=": rankCompare,
	">":  rankCompare,
	">=": rankCompare,
	"&":  rankConcat,
	"+":  rankAdd,
	"-":  rankAdd,
	"*":  rankMul,
	"/":  rankMul,
	"^":  rankPower,
}

// Evaluate computes a formula as if it were entered in the cell at
// (sheetx, rowx, colx) of bk. A leading "=" is optional.
//
// Syntax problems are returned as a *FormulaError. Everything that goes
// wrong while computing, from unknown functions to bad operands, is part
// of the returned Value as an ErrorCode. The result may be a reference;
// use Deref or Display to get the cell-style value.
func Evaluate(bk *Book, sheetx, rowx, colx int, formula string) (Value, error) {
	ev := &evaluation{book: bk, active: make(map[cellAddr]bool)}
	return ev.evaluate(sheetx, rowx, colx, formula)
}

func (ev *evaluation) evaluate(sheetx, rowx, colx int, formula string) (Value, error) {
	formula = strings.TrimSpace(formula)
	if !strings.HasPrefix(formula, "=") {
		formula = "=" + formula
	}
	if formula == "=" {
		return nil, NewFormulaError("empty formula")
	}

	ps := efp.ExcelParser()
	tokens := ps.Parse(formula)
	if ev.book.verbosity >= 3 && ev.book.logfile != nil {
		fmt.Fprintf(ev.book.logfile, "evaluate: %s\n%s\n", formula, ps.PrettyPrint())
	}

	fp := &formulaParser{
		ev:     ev,
		sheetx: sheetx,
		rowx:   rowx,
		colx:   colx,
	}
	for _, tok := range tokens {
		if tok.TType == efp.TokenTypeWhitespace || tok.TType == efp.TokenTypeNoop {
			continue
		}
		if tok.TType == efp.TokenTypeUnknown {
			return nil, NewFormulaError("unexpected %q in %s", tok.TValue, formula)
		}
		fp.tokens = append(fp.tokens, tok)
	}
	if len(fp.tokens) == 0 {
		return nil, NewFormulaError("empty formula")
	}

	result, err := fp.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if fp.pos != len(fp.tokens) {
		return nil, NewFormulaError("unexpected %q in %s", fp.tokens[fp.pos].TValue, formula)
	}
	return result, nil
}

type formulaParser struct {
	ev     *evaluation
	tokens []efp.Token
	pos    int

	sheetx, rowx, colx int
}

func (fp *formulaParser) peek() (efp.Token, bool) {
	if fp.pos >= len(fp.tokens) {
		return efp.Token{}, false
	}
	return fp.tokens[fp.pos], true
}

func (fp *formulaParser) next() (efp.Token, bool) {
	tok, ok := fp.peek()
	if ok {
		fp.pos++
	}
	return tok, ok
}

func (fp *formulaParser) parseExpr(minRank int) (Value, error) {
	lhs, err := fp.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := fp.peek()
		if !ok || tok.TType != efp.TokenTypeOperatorInfix {
			return lhs, nil
		}
		rank, known := binopRanks[tok.TValue]
		if !known {
			return nil, NewFormulaError("unsupported operator %q", tok.TValue)
		}
		if rank < minRank {
			return lhs, nil
		}
		fp.pos++
		// all operators are left-associative
		rhs, err := fp.parseExpr(rank + 1)
		if err != nil {
			return nil, err
		}
		lhs = fp.ev.book.binop(tok.TValue, lhs, rhs)
	}
}

func (fp *formulaParser) parseUnary() (Value, error) {
	tok, ok := fp.peek()
	if ok && tok.TType == efp.TokenTypeOperatorPrefix {
		fp.pos++
		operand, err := fp.parseUnary()
		if err != nil {
			return nil, err
		}
		switch tok.TValue {
		case "+":
			return operand, nil
		case "-":
			return fp.ev.book.arith(operand, Number(-1), func(a, b float64) float64 { return a * b }), nil
		}
		return nil, NewFormulaError("unsupported prefix operator %q", tok.TValue)
	}

	v, err := fp.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := fp.peek()
		if !ok || tok.TType != efp.TokenTypeOperatorPostfix {
			return v, nil
		}
		fp.pos++
		v = fp.ev.book.arith(v, Number(100), func(a, b float64) float64 { return a / b })
	}
}

func (fp *formulaParser) parsePrimary() (Value, error) {
	tok, ok := fp.next()
	if !ok {
		return nil, NewFormulaError("formula ends unexpectedly")
	}
	switch tok.TType {
	case efp.TokenTypeOperand:
		return fp.operand(tok)

	case efp.TokenTypeSubexpression:
		if tok.TSubType != efp.TokenSubTypeStart {
			return nil, NewFormulaError("unbalanced parenthesis")
		}
		v, err := fp.parseExpr(0)
		if err != nil {
			return nil, err
		}
		closing, ok := fp.next()
		if !ok || closing.TType != efp.TokenTypeSubexpression || closing.TSubType != efp.TokenSubTypeStop {
			return nil, NewFormulaError("missing closing parenthesis")
		}
		return v, nil

	case efp.TokenTypeFunction:
		if tok.TSubType != efp.TokenSubTypeStart {
			return nil, NewFormulaError("unbalanced parenthesis")
		}
		return fp.call(tok.TValue)
	}
	return nil, NewFormulaError("unexpected %q", tok.TValue)
}

func (fp *formulaParser) isFuncStop(tok efp.Token) bool {
	return tok.TType == efp.TokenTypeFunction && tok.TSubType == efp.TokenSubTypeStop
}

func (fp *formulaParser) call(name string) (Value, error) {
	name = strings.TrimPrefix(strings.ToUpper(name), "_XLFN.")
	if name == "" || name == "ARRAY" || name == "ARRAYROW" {
		return nil, NewFormulaError("array constants are not supported")
	}

	var args []Value
	tok, ok := fp.peek()
	if ok && fp.isFuncStop(tok) {
		fp.pos++
		return fp.ev.book.Registry.Call(name, args, fp.rowx, fp.colx), nil
	}
	for {
		tok, ok = fp.peek()
		if !ok {
			return nil, NewFormulaError("missing closing parenthesis after %s", name)
		}
		if tok.TType == efp.TokenTypeArgument || fp.isFuncStop(tok) {
			// an omitted argument, as in MID(A1,,2)
			args = append(args, BlankValue)
		} else {
			arg, err := fp.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}

		tok, ok = fp.next()
		switch {
		case !ok:
			return nil, NewFormulaError("missing closing parenthesis after %s", name)
		case tok.TType == efp.TokenTypeArgument:
			continue
		case fp.isFuncStop(tok):
			return fp.ev.book.Registry.Call(name, args, fp.rowx, fp.colx), nil
		default:
			return nil, NewFormulaError("unexpected %q in arguments of %s", tok.TValue, name)
		}
	}
}

func (fp *formulaParser) operand(tok efp.Token) (Value, error) {
	switch tok.TSubType {
	case efp.TokenSubTypeNumber:
		f, err := strconv.ParseFloat(tok.TValue, 64)
		if err != nil {
			return nil, NewFormulaError("bad number %q", tok.TValue)
		}
		return Number(f), nil
	case efp.TokenSubTypeText:
		return Text(tok.TValue), nil
	case efp.TokenSubTypeLogical:
		return Boolean(strings.EqualFold(tok.TValue, "TRUE")), nil
	case efp.TokenSubTypeError:
		code, ok := ErrorCodeFromText(tok.TValue)
		if !ok {
			return nil, NewFormulaError("unknown error literal %q", tok.TValue)
		}
		return code, nil
	case efp.TokenSubTypeRange:
		return fp.reference(tok.TValue), nil
	}
	return nil, NewFormulaError("unexpected operand %q", tok.TValue)
}

// reference resolves a range operand. Names that are not cell addresses
// give #NAME? and unknown sheets give #REF!.
func (fp *formulaParser) reference(name string) Value {
	sheetName, box, err := ParseRangeName(name)
	if err != nil {
		return ErrName
	}
	box.ShtX = fp.sheetx
	if sheetName != "" {
		sh, err := fp.ev.book.SheetByName(sheetName)
		if err != nil {
			return ErrRef
		}
		box.ShtX = sh.sheetx
	}
	if box.RowXHi-box.RowXLo == 1 && box.ColXHi-box.ColXLo == 1 {
		return NewRefValue(fp.ev, box.ShtX, box.RowXLo, box.ColXLo)
	}
	return NewAreaValue(fp.ev, box)
}

// binop applies an infix operator. Operands are dereferenced to scalars;
// the left operand's error wins over the right one's.
func (b *Book) binop(op string, lhs, rhs Value) Value {
	switch op {
	case "+":
		return b.arith(lhs, rhs, func(x, y float64) float64 { return x + y })
	case "-":
		return b.arith(lhs, rhs, func(x, y float64) float64 { return x - y })
	case "*":
		return b.arith(lhs, rhs, func(x, y float64) float64 { return x * y })
	case "/":
		return b.arith(lhs, rhs, func(x, y float64) float64 {
			if y == 0 {
				return math.NaN()
			}
			return x / y
		})
	case "^":
		return b.arith(lhs, rhs, math.Pow)
	case "&":
		x, err := b.Coercer.ToText(lhs)
		if err != nil {
			return AsErrorValue(err)
		}
		y, err := b.Coercer.ToText(rhs)
		if err != nil {
			return AsErrorValue(err)
		}
		return Text(x + y)
	}

	x, y := Deref(lhs), Deref(rhs)
	if e, ok := FirstError([]Value{x, y}); ok {
		return e
	}
	cmp := CompareValues(x, y)
	switch op {
	case "=":
		return Boolean(cmp == 0)
	case "<>":
		return Boolean(cmp != 0)
	case "<":
		return Boolean(cmp < 0)
	case "<=":
		return Boolean(cmp <= 0)
	case ">":
		return Boolean(cmp > 0)
	case ">=":
		return Boolean(cmp >= 0)
	}
	return ErrValue
}

// arith coerces both operands to numbers and applies fn. A NaN result from
// division is #DIV/0!; any other non-finite result is #NUM!.
func (b *Book) arith(lhs, rhs Value, fn func(x, y float64) float64) Value {
	if e, ok := FirstError([]Value{lhs, rhs}); ok {
		return e
	}
	x, err := b.Coercer.ToNumber(lhs)
	if err != nil {
		return AsErrorValue(err)
	}
	y, err := b.Coercer.ToNumber(rhs)
	if err != nil {
		return AsErrorValue(err)
	}
	r := fn(x, y)
	switch {
	case math.IsNaN(r) && y == 0 && !math.IsNaN(x):
		return ErrDiv0
	case math.IsNaN(r) || math.IsInf(r, 0):
		return ErrNum
	}
	return Number(r)
}

// CompareValues orders two scalar values the way spreadsheet comparison
// operators do: numbers sort before text, text before booleans, text is
// compared without regard to case, and a blank compares as the zero value
// of the other operand's type. Error operands must be handled by the caller.
func CompareValues(x, y Value) int {
	x, y = Deref(x), Deref(y)
	_, xBlank := x.(Blank)
	_, yBlank := y.(Blank)
	switch {
	case xBlank && yBlank:
		return 0
	case xBlank:
		x = zeroLike(y)
	case yBlank:
		y = zeroLike(x)
	}

	rx, ry := typeRank(x), typeRank(y)
	if rx != ry {
		return cmpInt(rx, ry)
	}
	switch xv := x.(type) {
	case Number:
		yv := y.(Number)
		switch {
		case xv < yv:
			return -1
		case xv > yv:
			return 1
		}
		return 0
	case Text:
		return strings.Compare(strings.ToLower(string(xv)), strings.ToLower(string(y.(Text))))
	case Boolean:
		return cmpInt(boolRank(bool(xv)), boolRank(bool(y.(Boolean))))
	}
	return 0
}

func zeroLike(v Value) Value {
	switch v.(type) {
	case Text:
		return Text("")
	case Boolean:
		return False
	default:
		return Number(0)
	}
}

func typeRank(v Value) int {
	switch v.(type) {
	case Number:
		return 0
	case Text:
		return 1
	case Boolean:
		return 2
	default:
		return 3
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
