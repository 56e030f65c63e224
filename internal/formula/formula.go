package formula

import (
	"fmt"
	"strings"
)

// TokenType classifies a single formula token.
type TokenType string

const (
	TokenMetric   TokenType = "metric"
	TokenNumber   TokenType = "number"
	TokenOperator TokenType = "operator"
	TokenParen    TokenType = "paren"
)

// Token is an ephemeral parse artifact. Tokens are never persisted; they only
// exist while an expression is being validated.
type Token struct {
	Type  TokenType `json:"type"`
	Value string    `json:"value"`
}

// ParseResult is the output of a successful Parse.
type ParseResult struct {
	Tokens               []Token `json:"tokens"`
	NormalizedExpression string  `json:"normalized_expression"`
}

// ValidateOptions constrains which metric codes an expression may reference.
// Codes are matched case-insensitively.
type ValidateOptions struct {
	KnownMetricCodes    []string
	DisallowMetricCodes []string
}

// ValidationResult is the output of Validate. On failure the tokens and metric
// codes found so far are still populated so callers can display them.
type ValidationResult struct {
	Tokens               []Token  `json:"tokens"`
	MetricCodes          []string `json:"metric_codes"`
	NormalizedExpression string   `json:"normalized_expression"`
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isOperator(c byte) bool {
	return c == '+' || c == '-' || c == '*' || c == '/'
}

// Serialize joins token values with single spaces. This is the canonical form:
// re-parsing a serialized token list always succeeds and yields the same
// tokens.
func Serialize(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		parts = append(parts, token.Value)
	}
	return strings.Join(parts, " ")
}

// Parse tokenizes a raw formula expression and checks the token adjacency
// rules. It is pure and deterministic.
func Parse(expression string) (*ParseResult, error) {
	return tokenize(expression)
}

func tokenize(expression string) (*ParseResult, error) {
	input := strings.TrimSpace(expression)
	if input == "" {
		return nil, fmt.Errorf("Formula expression is required.")
	}

	var tokens []Token
	index := 0

	for index < len(input) {
		c := input[index]

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			index++
			continue
		}

		if isOperator(c) {
			tokens = append(tokens, Token{Type: TokenOperator, Value: string(c)})
			index++
			continue
		}

		if c == '(' || c == ')' {
			tokens = append(tokens, Token{Type: TokenParen, Value: string(c)})
			index++
			continue
		}

		if isDigit(c) || c == '.' {
			end := index
			dotCount := 0
			for end < len(input) {
				dc := input[end]
				if dc == '.' {
					dotCount++
					if dotCount > 1 {
						break
					}
					end++
					continue
				}
				if !isDigit(dc) {
					break
				}
				end++
			}

			numberToken := input[index:end]
			if strings.HasPrefix(numberToken, ".") {
				return nil, fmt.Errorf("Invalid number token %q.", numberToken)
			}

			tokens = append(tokens, Token{Type: TokenNumber, Value: numberToken})
			index = end
			continue
		}

		if isIdentifierStart(c) {
			end := index + 1
			for end < len(input) && isIdentifierChar(input[end]) {
				end++
			}
			tokens = append(tokens, Token{
				Type:  TokenMetric,
				Value: strings.ToLower(input[index:end]),
			})
			index = end
			continue
		}

		return nil, fmt.Errorf("Invalid token %q.", string(c))
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("Formula expression is required.")
	}

	// Adjacency pass. A flat state machine over the token stream; there is no
	// AST and no operator precedence to enforce.
	const (
		stateStart = iota
		stateOperand
		stateOperator
		stateOpen
		stateClose
	)

	depth := 0
	previous := stateStart

	for _, token := range tokens {
		switch {
		case token.Type == TokenNumber || token.Type == TokenMetric:
			if previous == stateOperand || previous == stateClose {
				return nil, fmt.Errorf("Missing operator before %q.", token.Value)
			}
			previous = stateOperand

		case token.Type == TokenParen && token.Value == "(":
			if previous == stateOperand || previous == stateClose {
				return nil, fmt.Errorf(`Missing operator before "(".`)
			}
			depth++
			previous = stateOpen

		case token.Type == TokenParen && token.Value == ")":
			if depth == 0 {
				return nil, fmt.Errorf("Unmatched closing parenthesis.")
			}
			if previous == stateOperator || previous == stateOpen || previous == stateStart {
				return nil, fmt.Errorf("Parentheses cannot be empty.")
			}
			depth--
			previous = stateClose

		case token.Type == TokenOperator:
			if previous == stateStart || previous == stateOperator || previous == stateOpen {
				return nil, fmt.Errorf("Operator %q is in an invalid position.", token.Value)
			}
			previous = stateOperator
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("Unclosed parenthesis in formula.")
	}
	if previous == stateOperator || previous == stateOpen || previous == stateStart {
		return nil, fmt.Errorf("Formula cannot end with an operator.")
	}

	return &ParseResult{
		Tokens:               tokens,
		NormalizedExpression: Serialize(tokens),
	}, nil
}

// Validate tokenizes an expression and checks its metric references against
// the provided code sets. Referenced codes are deduplicated in first-occurrence
// order.
func Validate(expression string, opts ValidateOptions) (*ValidationResult, error) {
	parsed, err := tokenize(expression)
	if err != nil {
		return &ValidationResult{Tokens: []Token{}, MetricCodes: []string{}}, err
	}

	seen := map[string]bool{}
	metricCodes := []string{}
	for _, token := range parsed.Tokens {
		if token.Type != TokenMetric {
			continue
		}
		if seen[token.Value] {
			continue
		}
		seen[token.Value] = true
		metricCodes = append(metricCodes, token.Value)
	}

	result := &ValidationResult{
		Tokens:               parsed.Tokens,
		MetricCodes:          metricCodes,
		NormalizedExpression: parsed.NormalizedExpression,
	}

	if opts.KnownMetricCodes != nil {
		known := lowerSet(opts.KnownMetricCodes)
		for _, code := range metricCodes {
			if !known[code] {
				return result, fmt.Errorf("Unknown metric code %q in formula.", code)
			}
		}
	}

	if opts.DisallowMetricCodes != nil {
		disallowed := lowerSet(opts.DisallowMetricCodes)
		for _, code := range metricCodes {
			if disallowed[code] {
				return result, fmt.Errorf("Metric %q cannot reference itself.", code)
			}
		}
	}

	return result, nil
}

func lowerSet(codes []string) map[string]bool {
	out := make(map[string]bool, len(codes))
	for _, code := range codes {
		out[strings.ToLower(code)] = true
	}
	return out
}
