package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/baalimago/qwery/internal/models"
)

type CalculatorTool models.Specification

var Calculator = CalculatorTool{
	Name: "calculator",
	Description: "Evaluate an arithmetic expression. Supports numeric literals, " +
		"the operators + - * /, parentheses and the functions: sqrt, abs, pow, min, max, floor, ceil, round, log, exp.",
	Inputs: &models.InputSchema{
		Type:     "object",
		Required: []string{"expression"},
		Properties: map[string]models.ParameterObject{
			"expression": {
				Type:        "string",
				Description: "The expression to evaluate, example: 'sqrt(9) * (2 + 2)'",
			},
		},
	},
}

func (c CalculatorTool) Call(input models.Input) (string, error) {
	expr, ok := input["expression"].(string)
	if !ok {
		return "", fmt.Errorf("expression must be a string")
	}
	v, err := evalExpression(expr)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate '%v': %w", expr, err)
	}
	return "Result: " + strconv.FormatFloat(v, 'f', -1, 64), nil
}

func (c CalculatorTool) Specification() models.Specification {
	return models.Specification(Calculator)
}

// mathFuncs is the allow-list of callable functions. Anything outside
// it is a parse error, the calculator must never evaluate general code.
var mathFuncs = map[string]func(args []float64) (float64, error){
	"sqrt":  unary(math.Sqrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"round": unary(math.Round),
	"log":   unary(math.Log),
	"exp":   unary(math.Exp),
	"pow":   binary(math.Pow),
	"min":   binary(math.Min),
	"max":   binary(math.Max),
}

func unary(f func(float64) float64) func([]float64) (float64, error) {
	return func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("expected 1 argument, got: %v", len(args))
		}
		return f(args[0]), nil
	}
}

func binary(f func(float64, float64) float64) func([]float64) (float64, error) {
	return func(args []float64) (float64, error) {
		if len(args) != 2 {
			return 0, fmt.Errorf("expected 2 arguments, got: %v", len(args))
		}
		return f(args[0], args[1]), nil
	}
}

// exprParser is a recursive descent parser over the grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = "-" unary | primary
//	primary = number | "(" expr ")" | ident "(" expr { "," expr } ")"
type exprParser struct {
	s   string
	pos int
}

func evalExpression(s string) (float64, error) {
	p := &exprParser{s: s}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.s) {
		return 0, fmt.Errorf("unexpected character '%c' at position %v", p.s[p.pos], p.pos)
	}
	return v, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *exprParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis at position %v", p.pos)
		}
		p.pos++
		return v, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case unicode.IsLetter(rune(c)):
		return p.parseFuncCall()
	case c == 0:
		return 0, fmt.Errorf("unexpected end of expression")
	default:
		return 0, fmt.Errorf("unexpected character '%c' at position %v", c, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.s) && (p.s[p.pos] >= '0' && p.s[p.pos] <= '9' || p.s[p.pos] == '.') {
		p.pos++
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%v'", p.s[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) parseFuncCall() (float64, error) {
	start := p.pos
	for p.pos < len(p.s) && unicode.IsLetter(rune(p.s[p.pos])) {
		p.pos++
	}
	name := strings.ToLower(p.s[start:p.pos])
	f, ok := mathFuncs[name]
	if !ok {
		return 0, fmt.Errorf("unknown function '%v'", name)
	}
	if p.peek() != '(' {
		return 0, fmt.Errorf("expected '(' after function '%v'", name)
	}
	p.pos++
	var args []float64
	for {
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	if p.peek() != ')' {
		return 0, fmt.Errorf("missing closing parenthesis in call to '%v'", name)
	}
	p.pos++
	return f(args)
}
