// Package model defines the data structures for mutation testing.
package model

import "fmt"

// MutationType represents the category of mutation.
type MutationType string

const (
	// MutationArithmetic represents arithmetic operator mutations (+, -, *, /, %).
	MutationArithmetic MutationType = "arithmetic"
	// MutationComparison represents comparison operator mutations (==, !=, <, >, <=, >=).
	MutationComparison MutationType = "comparison"
	// MutationBoolean represents boolean literal mutations (true <-> false).
	MutationBoolean MutationType = "boolean"
	// MutationLogical represents logical operator mutations (&& <-> ||).
	MutationLogical MutationType = "logical"
	// MutationReturnValue represents modified return values.
	MutationReturnValue MutationType = "return_value"
	// MutationConditional represents removed or altered conditional statements.
	MutationConditional MutationType = "conditional"
	// MutationNumericConstant represents modified numeric constants.
	MutationNumericConstant MutationType = "numeric_constant"
	// MutationFunctionCall represents removed function calls.
	MutationFunctionCall MutationType = "function_call"
)

// MutationTypes lists every known mutation type in declaration order.
var MutationTypes = []MutationType{
	MutationArithmetic,
	MutationComparison,
	MutationBoolean,
	MutationLogical,
	MutationReturnValue,
	MutationConditional,
	MutationNumericConstant,
	MutationFunctionCall,
}

// Mutation represents a single proposed textual edit. Line and Column are 1-based.
type Mutation struct {
	ID       string       `json:"id"`
	FilePath Path         `json:"file_path"`
	Line     int          `json:"line"`
	Column   int          `json:"column"`
	Type     MutationType `json:"type"`
	Original string       `json:"original"`
	Mutated  string       `json:"mutated"`
}

// String renders the mutation as "path:line:col original -> mutated".
func (mu Mutation) String() string {
	return fmt.Sprintf("%s:%d:%d %s -> %s", mu.FilePath, mu.Line, mu.Column, mu.Original, mu.Mutated)
}

// ShortID returns the first eight characters of the mutation ID.
func (mu Mutation) ShortID() string {
	if len(mu.ID) <= 8 {
		return mu.ID
	}

	return mu.ID[:8]
}
