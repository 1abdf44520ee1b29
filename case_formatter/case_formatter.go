// Package case_formatter turns segmented word tokens into identifiers that follow one of the
// clang-tidy readability-identifier-naming casing conventions.
package case_formatter

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/akss-tools/namefix/code_analyzer/models"
)

// Convention is a target casing style. The string values are the clang-tidy option values.
type Convention string

const (
	LowerCase             Convention = "lower_case"
	UpperCase             Convention = "UPPER_CASE"
	CamelBack             Convention = "camelBack"
	CamelCase             Convention = "CamelCase"
	CamelSnakeBack        Convention = "camel_Snake_Back"
	CamelSnakeCase        Convention = "Camel_Snake_Case"
	AnyCase               Convention = "aNy_CasE"
	LeadingUpperSnakeCase Convention = "Leading_upper_snake_case"
)

var allConventions = []Convention{
	LowerCase, UpperCase, CamelBack, CamelCase,
	CamelSnakeBack, CamelSnakeCase, AnyCase, LeadingUpperSnakeCase,
}

// AllConventions returns the eight supported conventions in their canonical order.
func AllConventions() []Convention {
	out := make([]Convention, len(allConventions))
	copy(out, allConventions)
	return out
}

// ParseConvention validates a convention name.
func ParseConvention(s string) (Convention, error) {
	for _, c := range allConventions {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown case convention %q (valid: %s)", s, conventionNames())
}

func conventionNames() string {
	names := make([]string, len(allConventions))
	for i, c := range allConventions {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// Format joins tokens according to the convention. An empty token list yields "".
func Format(tokens []string, c Convention) string {
	if len(tokens) == 0 {
		return ""
	}

	switch c {
	case LowerCase, AnyCase:
		return join(tokens, "_", lower, lower)
	case UpperCase:
		return join(tokens, "_", upper, upper)
	case CamelBack:
		return join(tokens, "", lower, capitalize)
	case CamelCase:
		return join(tokens, "", capitalize, capitalize)
	case CamelSnakeBack:
		return join(tokens, "_", lower, capitalize)
	case CamelSnakeCase:
		return join(tokens, "_", capitalize, capitalize)
	case LeadingUpperSnakeCase:
		return join(tokens, "_", capitalize, lower)
	}
	return join(tokens, "_", lower, lower)
}

// join applies first to word 0 and rest to every following word.
func join(tokens []string, sep string, first, rest func(string) string) string {
	var b strings.Builder
	for i, w := range tokens {
		if i > 0 {
			b.WriteString(sep)
			b.WriteString(rest(w))
			continue
		}
		b.WriteString(first(w))
	}
	return b.String()
}

func lower(w string) string {
	return cases.Lower(language.Und).String(w)
}

func upper(w string) string {
	return cases.Upper(language.Und).String(w)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(w string) string {
	return cases.Title(language.Und).String(w)
}

// Conventions holds the target convention for every symbol kind.
type Conventions struct {
	Variable Convention `mapstructure:"variable" yaml:"variable"`
	Function Convention `mapstructure:"function" yaml:"function"`
	Class    Convention `mapstructure:"class" yaml:"class"`
}

// DefaultConventions is used when no convention is configured.
var DefaultConventions = Conventions{
	Variable: UpperCase,
	Function: CamelBack,
	Class:    CamelCase,
}

// For returns the convention configured for kind.
func (cs Conventions) For(kind models.SymbolKind) Convention {
	switch kind {
	case models.Variable:
		return cs.Variable
	case models.Function:
		return cs.Function
	case models.Class:
		return cs.Class
	}
	panic(fmt.Sprintf("case_formatter: unhandled symbol kind %v", kind))
}

// Validate checks that every kind maps to a known convention.
func (cs Conventions) Validate() error {
	for _, kind := range models.SymbolKinds {
		if _, err := ParseConvention(string(cs.For(kind))); err != nil {
			return fmt.Errorf("%s convention: %w", kind, err)
		}
	}
	return nil
}
