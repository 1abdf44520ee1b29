package case_formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akss-tools/namefix/code_analyzer/models"
)

func TestFormat(t *testing.T) {
	words := []string{"hello", "world"}

	tests := []struct {
		convention Convention
		want       string
	}{
		{LowerCase, "hello_world"},
		{UpperCase, "HELLO_WORLD"},
		{CamelBack, "helloWorld"},
		{CamelCase, "HelloWorld"},
		{CamelSnakeBack, "hello_World"},
		{CamelSnakeCase, "Hello_World"},
		{LeadingUpperSnakeCase, "Hello_world"},
		{AnyCase, "hello_world"},
	}

	for _, tt := range tests {
		t.Run(string(tt.convention), func(t *testing.T) {
			assert.Equal(t, tt.want, Format(words, tt.convention))
		})
	}
}

func TestFormat_EmptyTokens(t *testing.T) {
	for _, c := range AllConventions() {
		assert.Equal(t, "", Format(nil, c), "convention %s", c)
		assert.Equal(t, "", Format([]string{}, c), "convention %s", c)
	}
}

func TestFormat_SingleWord(t *testing.T) {
	assert.Equal(t, "buffer", Format([]string{"buffer"}, CamelBack))
	assert.Equal(t, "Buffer", Format([]string{"buffer"}, CamelCase))
	assert.Equal(t, "BUFFER", Format([]string{"buffer"}, UpperCase))
	assert.Equal(t, "Buffer", Format([]string{"buffer"}, LeadingUpperSnakeCase))
}

func TestFormat_CapitalizeLowersTail(t *testing.T) {
	assert.Equal(t, "MaxCount", Format([]string{"MAX", "cOUNT"}, CamelCase))
	assert.Equal(t, "max_count", Format([]string{"MAX", "Count"}, LowerCase))
}

func TestFormat_DigitsStayAttached(t *testing.T) {
	assert.Equal(t, "layer2Output", Format([]string{"layer2", "output"}, CamelBack))
	assert.Equal(t, "LAYER2_OUTPUT", Format([]string{"layer2", "output"}, UpperCase))
}

func TestFormat_Deterministic(t *testing.T) {
	tokens := []string{"get", "buffer", "size"}
	for _, c := range AllConventions() {
		first := Format(tokens, c)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Format(tokens, c))
		}
	}
	assert.Equal(t, []string{"get", "buffer", "size"}, tokens, "input must not be mutated")
}

func TestParseConvention(t *testing.T) {
	for _, c := range AllConventions() {
		got, err := ParseConvention(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseConvention("kebab-case")
	assert.Error(t, err)
}

func TestConventions_For(t *testing.T) {
	cs := Conventions{Variable: LowerCase, Function: CamelBack, Class: CamelCase}
	assert.Equal(t, LowerCase, cs.For(models.Variable))
	assert.Equal(t, CamelBack, cs.For(models.Function))
	assert.Equal(t, CamelCase, cs.For(models.Class))
	assert.Panics(t, func() { cs.For(models.SymbolKind(42)) })
}

func TestConventions_Validate(t *testing.T) {
	require.NoError(t, DefaultConventions.Validate())

	bad := DefaultConventions
	bad.Function = "snake"
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "func")
}
