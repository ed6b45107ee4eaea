package mutagens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/evomut/internal/model"
)

func TestBooleanLiteral(t *testing.T) {
	t.Run("two of each literal", func(t *testing.T) {
		code := "let a = true; let b = false; if true { return false; }"
		mutations, err := BooleanLiteral{}.Mutate(code, "bool.rs")
		require.NoError(t, err)
		require.Len(t, mutations, 4)
		requireLocated(t, code, mutations)

		counts := originals(mutations)
		assert.Equal(t, 2, counts["true"])
		assert.Equal(t, 2, counts["false"])

		for _, mu := range mutations {
			assert.Equal(t, m.MutationBoolean, mu.Type)
			assert.NotEqual(t, mu.Original, mu.Mutated)
		}
	})

	t.Run("true literals come first on a line", func(t *testing.T) {
		mutations, err := BooleanLiteral{}.Mutate("f(false, true)", "bool.go")
		require.NoError(t, err)
		require.Len(t, mutations, 2)
		assert.Equal(t, "true", mutations[0].Original)
		assert.Equal(t, 10, mutations[0].Column)
		assert.Equal(t, "false", mutations[1].Original)
		assert.Equal(t, 3, mutations[1].Column)
	})

	t.Run("identifiers containing literals are ignored", func(t *testing.T) {
		mutations, err := BooleanLiteral{}.Mutate("isTrue := untrue || falsey || true_", "bool.go")
		require.NoError(t, err)
		assert.Empty(t, mutations)
	})

	t.Run("example module", func(t *testing.T) {
		code := readExample(t, "boolean")
		mutations, err := BooleanLiteral{}.Mutate(code, m.Path(examplePath(t, "boolean")))
		require.NoError(t, err)
		assert.NotEmpty(t, mutations)
		requireLocated(t, code, mutations)
	})
}
