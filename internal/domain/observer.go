package domain

import m "gooze.dev/pkg/evomut/internal/model"

// Observer receives progress notifications from the evolutionary engine.
// Calls happen on the engine goroutine, in evaluation order.
type Observer interface {
	GenerationStarted(generation int, population int)
	MutationEvaluated(result m.MutationResult)
	MutationFailed(mutation m.Mutation, err error)
	GenerationCompleted(summary m.GenerationSummary)
}

// NopObserver ignores every notification.
type NopObserver struct{}

// GenerationStarted implements Observer.
func (NopObserver) GenerationStarted(int, int) {}

// MutationEvaluated implements Observer.
func (NopObserver) MutationEvaluated(m.MutationResult) {}

// MutationFailed implements Observer.
func (NopObserver) MutationFailed(m.Mutation, error) {}

// GenerationCompleted implements Observer.
func (NopObserver) GenerationCompleted(m.GenerationSummary) {}

type multiObserver []Observer

// Observers fans notifications out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	fanout := make(multiObserver, 0, len(observers))

	for _, o := range observers {
		if o != nil {
			fanout = append(fanout, o)
		}
	}

	return fanout
}

func (mo multiObserver) GenerationStarted(generation int, population int) {
	for _, o := range mo {
		o.GenerationStarted(generation, population)
	}
}

func (mo multiObserver) MutationEvaluated(result m.MutationResult) {
	for _, o := range mo {
		o.MutationEvaluated(result)
	}
}

func (mo multiObserver) MutationFailed(mutation m.Mutation, err error) {
	for _, o := range mo {
		o.MutationFailed(mutation, err)
	}
}

func (mo multiObserver) GenerationCompleted(summary m.GenerationSummary) {
	for _, o := range mo {
		o.GenerationCompleted(summary)
	}
}
