package planning

import (
	"github.com/specialistvlad/stevedore/internal/events"
	"github.com/specialistvlad/stevedore/internal/stage"
	"github.com/specialistvlad/stevedore/internal/steps"
)

type ruleResult int

const (
	notReady ruleResult = iota
	ready
	abandoned
)

type rule interface {
	evaluate(past events.Set) (ruleResult, steps.Step)
	String() string
}

// ruleStage is a Stage backed by an ordered list of rules.
type ruleStage struct {
	remaining []rule
}

func newRuleStage(rules []rule) *ruleStage {
	return &ruleStage{remaining: rules}
}

func (s *ruleStage) PopNextStep(past events.Set) stage.Result {
	for i := 0; i < len(s.remaining); {
		result, step := s.remaining[i].evaluate(past)
		switch result {
		case ready:
			s.remove(i)
			return stage.StepReady{Step: step}
		case abandoned:
			s.remove(i)
		default:
			i++
		}
	}

	if len(s.remaining) == 0 {
		return stage.NoStepsRemaining{}
	}
	return stage.NoStepsReady{}
}

func (s *ruleStage) remove(i int) {
	s.remaining = append(s.remaining[:i], s.remaining[i+1:]...)
}

func networkCreated(past events.Set) (events.TaskNetworkCreatedEvent, bool) {
	return events.FirstOfType(past, func(events.TaskNetworkCreatedEvent) bool { return true })
}

func containerCreated(past events.Set, container string) (events.ContainerCreatedEvent, bool) {
	return events.FirstOfType(past, func(e events.ContainerCreatedEvent) bool { return e.Container == container })
}
