package mutagens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogicalOperator(t *testing.T) {
	t.Run("every occurrence on a line", func(t *testing.T) {
		code := "if a && b || c && d {}"
		mutations, err := LogicalOperator{}.Mutate(code, "logic.rs")
		require.NoError(t, err)
		require.Len(t, mutations, 3)
		requireLocated(t, code, mutations)

		assert.Equal(t, "&&", mutations[0].Original)
		assert.Equal(t, "||", mutations[0].Mutated)
		assert.Equal(t, 6, mutations[0].Column)
		assert.Equal(t, "&&", mutations[1].Original)
		assert.Equal(t, 16, mutations[1].Column)
		assert.Equal(t, "||", mutations[2].Original)
		assert.Equal(t, "&&", mutations[2].Mutated)
		assert.Equal(t, 11, mutations[2].Column)
	})

	t.Run("adjacent operators do not overlap", func(t *testing.T) {
		mutations, err := LogicalOperator{}.Mutate("&&&&", "logic.go")
		require.NoError(t, err)
		require.Len(t, mutations, 2)
		assert.Equal(t, 1, mutations[0].Column)
		assert.Equal(t, 3, mutations[1].Column)
	})

	t.Run("multiple lines", func(t *testing.T) {
		mutations, err := LogicalOperator{}.Mutate("a && b\n\nc || d\n", "logic.go")
		require.NoError(t, err)
		require.Len(t, mutations, 2)
		assert.Equal(t, 1, mutations[0].Line)
		assert.Equal(t, 3, mutations[1].Line)
	})
}
