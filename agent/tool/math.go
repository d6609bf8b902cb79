package tool

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

const (
	ToolMathEvaluate = "math_evaluate"
)

// Accepts digits, whitespace, decimal points, operators, and parentheses.
var mathExpressionPattern = regexp.MustCompile(`^[\d\s\+\-\*/%\^\(\)\.]+$`)

type MathEvaluateOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

func MathEvaluateTool() Descriptor {
	return NewLocal(ToolMathEvaluate, "Evaluate an arithmetic expression.", evaluateMath,
		Parameter{Name: "expression", Type: "string", Description: "Expression to evaluate", Required: true},
	)
}

func evaluateMath(_ context.Context, args map[string]any) (any, error) {
	expression, err := stringArg(args, "expression")
	if err != nil {
		return nil, err
	}

	expression = strings.TrimSpace(expression)
	if err := validateMathExpression(expression); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrInvalidArguments, err)
	}

	result, err := evaluateMathExpression(expression)
	if err != nil {
		return nil, err
	}

	return MathEvaluateOutput{
		Expression: expression,
		Result:     result,
	}, nil
}

func validateMathExpression(expression string) error {
	if expression == "" {
		return fmt.Errorf("expression is empty")
	}
	if !mathExpressionPattern.MatchString(expression) {
		return fmt.Errorf("expression contains invalid characters")
	}
	return nil
}

type binaryOp struct {
	prec       int
	rightAssoc bool
	apply      func(a, b float64) (float64, error)
}

var binaryOps = map[byte]binaryOp{
	'+': {prec: 1, apply: func(a, b float64) (float64, error) { return a + b, nil }},
	'-': {prec: 1, apply: func(a, b float64) (float64, error) { return a - b, nil }},
	'*': {prec: 2, apply: func(a, b float64) (float64, error) { return a * b, nil }},
	'/': {prec: 2, apply: func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	}},
	'%': {prec: 2, apply: func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, fmt.Errorf("modulo by zero")
		}
		return math.Mod(a, b), nil
	}},
	'^': {prec: 3, rightAssoc: true, apply: func(a, b float64) (float64, error) { return math.Pow(a, b), nil }},
}

// evaluateMathExpression is a precedence-climbing evaluator. Unary signs bind
// tighter than any binary operator, so -2^2 is 4.
func evaluateMathExpression(expression string) (float64, error) {
	s := &mathScanner{input: expression}
	value, err := s.expr(1)
	if err != nil {
		return 0, err
	}
	if c, ok := s.peek(); ok {
		return 0, fmt.Errorf("unexpected %q at position %d", c, s.pos)
	}
	return value, nil
}

type mathScanner struct {
	input string
	pos   int
}

func (s *mathScanner) expr(minPrec int) (float64, error) {
	left, err := s.operand()
	if err != nil {
		return 0, err
	}
	for {
		c, ok := s.peek()
		if !ok {
			return left, nil
		}
		op, isOp := binaryOps[c]
		if !isOp || op.prec < minPrec {
			return left, nil
		}
		s.pos++

		next := op.prec + 1
		if op.rightAssoc {
			next = op.prec
		}
		right, err := s.expr(next)
		if err != nil {
			return 0, err
		}
		if left, err = op.apply(left, right); err != nil {
			return 0, err
		}
	}
}

func (s *mathScanner) operand() (float64, error) {
	c, ok := s.peek()
	if !ok {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	switch c {
	case '+', '-':
		s.pos++
		v, err := s.operand()
		if c == '-' {
			v = -v
		}
		return v, err
	case '(':
		s.pos++
		v, err := s.expr(1)
		if err != nil {
			return 0, err
		}
		if c, ok := s.peek(); !ok || c != ')' {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", s.pos)
		}
		s.pos++
		return v, nil
	}
	return s.number()
}

func (s *mathScanner) number() (float64, error) {
	start := s.pos
	for s.pos < len(s.input) && (s.input[s.pos] == '.' || (s.input[s.pos] >= '0' && s.input[s.pos] <= '9')) {
		s.pos++
	}
	raw := s.input[start:s.pos]
	if raw == "" {
		return 0, fmt.Errorf("expected number at position %d", start)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q at position %d", raw, start)
	}
	return value, nil
}

// peek skips whitespace and returns the next byte without consuming it.
func (s *mathScanner) peek() (byte, bool) {
	for s.pos < len(s.input) && strings.IndexByte(" \t\n\r", s.input[s.pos]) >= 0 {
		s.pos++
	}
	if s.pos >= len(s.input) {
		return 0, false
	}
	return s.input[s.pos], true
}
