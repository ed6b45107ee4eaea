package mutagens

import (
	m "gooze.dev/pkg/evomut/internal/model"
)

var arithmeticTable = []replacement{
	{op: "+", replacements: []string{"-", "*", "/", "%"}},
	{op: "-", replacements: []string{"+", "*", "/", "%"}},
	{op: "*", replacements: []string{"+", "-", "/", "%"}},
	{op: "/", replacements: []string{"+", "-", "*", "%"}},
	{op: "%", replacements: []string{"+", "-", "*", "/"}},
}

// ArithmeticOperator rewrites each of + - * / % to every other operator of
// the set, at the first occurrence on a line.
type ArithmeticOperator struct{}

// Name implements Operator.
func (ArithmeticOperator) Name() string {
	return string(m.MutationArithmetic)
}

// Mutate implements Operator.
func (ArithmeticOperator) Mutate(code string, path m.Path) ([]m.Mutation, error) {
	return firstMatchMutations(code, path, m.MutationArithmetic, arithmeticTable), nil
}
