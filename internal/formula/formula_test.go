package formula

import (
	"reflect"
	"testing"
)

func TestParseSuccess(t *testing.T) {
	result, err := Parse("sold_items / quoted_households")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantTokens := []Token{
		{Type: TokenMetric, Value: "sold_items"},
		{Type: TokenOperator, Value: "/"},
		{Type: TokenMetric, Value: "quoted_households"},
	}
	if !reflect.DeepEqual(result.Tokens, wantTokens) {
		t.Fatalf("Parse tokens: got %+v, want %+v", result.Tokens, wantTokens)
	}
	if result.NormalizedExpression != "sold_items / quoted_households" {
		t.Fatalf("Parse normalized: got %q", result.NormalizedExpression)
	}
}

func TestParseNormalizesWhitespaceAndCase(t *testing.T) {
	result, err := Parse("  Sold_Items*(   2.5 +\tquoted_households )\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.NormalizedExpression != "sold_items * ( 2.5 + quoted_households )" {
		t.Fatalf("normalized: got %q", result.NormalizedExpression)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name       string
		expression string
		wantErr    string
	}{
		{"empty", "", "Formula expression is required."},
		{"whitespace only", "   \t\n", "Formula expression is required."},
		{"trailing operator", "a + ", "Formula cannot end with an operator."},
		{"unclosed paren", "(a + b", "Unclosed parenthesis in formula."},
		{"missing operator", "a b", `Missing operator before "b".`},
		{"missing operator before paren", "a (b)", `Missing operator before "(".`},
		{"missing operator after close", "(a) b", `Missing operator before "b".`},
		{"leading dot number", ".5 + a", `Invalid number token ".5".`},
		{"bare dot", "a + .", `Invalid number token ".".`},
		{"double dot number", "1..2", `Invalid number token ".2".`},
		{"unmatched close", "a + b)", "Unmatched closing parenthesis."},
		{"empty parens", "a + ()", "Parentheses cannot be empty."},
		{"leading operator", "+ a", `Operator "+" is in an invalid position.`},
		{"double operator", "a + * b", `Operator "*" is in an invalid position.`},
		{"operator after open", "(+ a)", `Operator "+" is in an invalid position.`},
		{"invalid character", "a % b", `Invalid token "%".`},
		{"invalid character hash", "a + #", `Invalid token "#".`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.expression)
			if err == nil {
				t.Fatalf("Parse(%q): expected error", tc.expression)
			}
			if err.Error() != tc.wantErr {
				t.Fatalf("Parse(%q): got %q, want %q", tc.expression, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	expressions := []string{
		"sold_items / quoted_households",
		"( a + b ) * 2",
		"a - b - c",
		"(x*(y+z))/100",
		"rate * 0.25 + base",
	}

	for _, expression := range expressions {
		first, err := Parse(expression)
		if err != nil {
			t.Fatalf("Parse(%q): %v", expression, err)
		}
		second, err := Parse(first.NormalizedExpression)
		if err != nil {
			t.Fatalf("re-Parse(%q): %v", first.NormalizedExpression, err)
		}
		if !reflect.DeepEqual(first.Tokens, second.Tokens) {
			t.Fatalf("round trip of %q changed tokens: %+v vs %+v", expression, first.Tokens, second.Tokens)
		}
		if second.NormalizedExpression != first.NormalizedExpression {
			t.Fatalf("round trip of %q changed normalization: %q vs %q", expression, first.NormalizedExpression, second.NormalizedExpression)
		}
	}
}

func TestValidateCollectsMetricCodes(t *testing.T) {
	result, err := Validate("a + b * a + 2", ValidateOptions{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := []string{"a", "b"}
	if !reflect.DeepEqual(result.MetricCodes, want) {
		t.Fatalf("metric codes: got %v, want %v", result.MetricCodes, want)
	}
}

func TestValidateKnownCodes(t *testing.T) {
	known := []string{"sold_items", "quoted_households"}

	result, err := Validate("sold_items / quoted_households", ValidateOptions{KnownMetricCodes: known})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.NormalizedExpression != "sold_items / quoted_households" {
		t.Fatalf("normalized: got %q", result.NormalizedExpression)
	}

	result, err = Validate("sold_items / win_rate", ValidateOptions{KnownMetricCodes: known})
	if err == nil {
		t.Fatalf("expected unknown code error")
	}
	if err.Error() != `Unknown metric code "win_rate" in formula.` {
		t.Fatalf("unknown code error: got %q", err.Error())
	}
	// Tokens and codes are still returned for display.
	if len(result.Tokens) != 3 || len(result.MetricCodes) != 2 {
		t.Fatalf("partial result: tokens=%d codes=%d", len(result.Tokens), len(result.MetricCodes))
	}
}

func TestValidateDisallowedCodesCaseInsensitive(t *testing.T) {
	_, err := Validate("Win_Rate + 1", ValidateOptions{DisallowMetricCodes: []string{"WIN_RATE"}})
	if err == nil {
		t.Fatalf("expected self-reference error")
	}
	if err.Error() != `Metric "win_rate" cannot reference itself.` {
		t.Fatalf("self-reference error: got %q", err.Error())
	}
}

func TestValidateParseFailureReturnsEmptyResult(t *testing.T) {
	result, err := Validate("a +", ValidateOptions{KnownMetricCodes: []string{"a"}})
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if err.Error() != "Formula cannot end with an operator." {
		t.Fatalf("error: got %q", err.Error())
	}
	if len(result.Tokens) != 0 || len(result.MetricCodes) != 0 {
		t.Fatalf("expected empty result on parse failure, got %+v", result)
	}
}
