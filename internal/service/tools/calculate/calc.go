package calculate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// normalizeExpression maps common unicode arithmetic glyphs to their ASCII
// operators so expressions like "25 × 4 + 10" evaluate directly.
func normalizeExpression(expr string) string {
	replacer := strings.NewReplacer(
		"×", "*",
		"·", "*",
		"÷", "/",
		"−", "-",
		",", ".",
	)
	return replacer.Replace(expr)
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenOperator
	tokenLeftParen
	tokenRightParen
)

type token struct {
	kind  tokenKind
	value float64
	op    byte
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(expr) && (expr[j] >= '0' && expr[j] <= '9' || expr[j] == '.') {
				j++
			}
			value, err := strconv.ParseFloat(expr[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", expr[i:j])
			}
			tokens = append(tokens, token{kind: tokenNumber, value: value})
			i = j
		case c == '(':
			tokens = append(tokens, token{kind: tokenLeftParen})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRightParen})
			i++
		case strings.IndexByte("+-*/%^", c) >= 0:
			tokens = append(tokens, token{kind: tokenOperator, op: c})
			i++
		default:
			if unicode.IsLetter(rune(c)) {
				return nil, fmt.Errorf("unexpected symbol %q", string(expr[i]))
			}
			return nil, fmt.Errorf("unexpected character %q", string(expr[i]))
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return tokens, nil
}

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/', '%':
		return 2
	case '^':
		return 3
	case 'u': // unary minus
		return 4
	}
	return 0
}

func rightAssociative(op byte) bool {
	return op == '^' || op == 'u'
}

// Evaluate parses and evaluates an arithmetic expression using the
// shunting-yard algorithm. Supported: + - * / % ^, parentheses, unary minus.
func Evaluate(expr string) (float64, error) {
	tokens, err := tokenize(normalizeExpression(expr))
	if err != nil {
		return 0, err
	}

	var output []token
	var operators []token

	popWhile := func(cond func(top token) bool) {
		for len(operators) > 0 {
			top := operators[len(operators)-1]
			if !cond(top) {
				return
			}
			operators = operators[:len(operators)-1]
			output = append(output, top)
		}
	}

	prevKind := tokenOperator
	prevWasParenOpen := true
	for _, t := range tokens {
		switch t.kind {
		case tokenNumber:
			output = append(output, t)
		case tokenOperator:
			op := t.op
			if op == '-' && (prevKind == tokenOperator || prevWasParenOpen) {
				op = 'u'
			}
			popWhile(func(top token) bool {
				if top.kind != tokenOperator {
					return false
				}
				if rightAssociative(op) {
					return precedence(top.op) > precedence(op)
				}
				return precedence(top.op) >= precedence(op)
			})
			operators = append(operators, token{kind: tokenOperator, op: op})
		case tokenLeftParen:
			operators = append(operators, t)
		case tokenRightParen:
			popWhile(func(top token) bool { return top.kind == tokenOperator })
			if len(operators) == 0 {
				return 0, fmt.Errorf("unbalanced parentheses")
			}
			operators = operators[:len(operators)-1]
		}
		prevWasParenOpen = t.kind == tokenLeftParen
		if t.kind != tokenRightParen {
			prevKind = t.kind
		} else {
			prevKind = tokenNumber
		}
	}
	popWhile(func(top token) bool { return top.kind == tokenOperator })
	if len(operators) > 0 {
		return 0, fmt.Errorf("unbalanced parentheses")
	}

	var stack []float64
	pop := func() (float64, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}

	for _, t := range output {
		if t.kind == tokenNumber {
			stack = append(stack, t.value)
			continue
		}
		if t.op == 'u' {
			v, ok := pop()
			if !ok {
				return 0, fmt.Errorf("malformed expression")
			}
			stack = append(stack, -v)
			continue
		}
		right, okR := pop()
		left, okL := pop()
		if !okR || !okL {
			return 0, fmt.Errorf("malformed expression")
		}
		switch t.op {
		case '+':
			stack = append(stack, left+right)
		case '-':
			stack = append(stack, left-right)
		case '*':
			stack = append(stack, left*right)
		case '/':
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			stack = append(stack, left/right)
		case '%':
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			stack = append(stack, math.Mod(left, right))
		case '^':
			stack = append(stack, math.Pow(left, right))
		}
	}

	if len(stack) != 1 {
		return 0, fmt.Errorf("malformed expression")
	}
	result := stack[0]
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	return result, nil
}

// FormatNumber renders integral results without a decimal point.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
