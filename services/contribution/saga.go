package contribution

import (
	"context"
	"fmt"

	"github.com/MarcGrol/campaignbackend/lib/mylog"
)

// A sagaStep pairs a forward action with the compensation that undoes it.
// A nil compensate means the step leaves nothing behind that needs undoing.
type sagaStep struct {
	name       string
	execute    func(c context.Context) error
	compensate func(c context.Context) error
}

type saga struct {
	logger mylog.Logger
	steps  []sagaStep
}

// run executes the steps in order. When a step fails, the compensations of
// the steps that did complete are run in reverse order. A failing
// compensation cannot be undone anymore, so it is logged loudly with
// enough identifiers to repair the state by hand.
func (s saga) run(c context.Context, uid string) error {
	completed := make([]sagaStep, 0, len(s.steps))

	for _, step := range s.steps {
		err := step.execute(c)
		if err == nil {
			completed = append(completed, step)
			continue
		}

		s.logger.Log(c, uid, mylog.SeverityWarn, "Step '%s' failed, rolling back %d completed steps: %s", step.name, len(completed), err)

		for i := len(completed) - 1; i >= 0; i-- {
			prev := completed[i]
			if prev.compensate == nil {
				continue
			}
			compensationError := prev.compensate(c)
			if compensationError != nil {
				s.logger.Log(c, uid, mylog.SeverityError,
					"IRRECONCILABLE STATE: compensation of step '%s' failed after failure of step '%s': %s",
					prev.name, step.name, compensationError)
			}
		}

		return fmt.Errorf("step '%s' failed: %w", step.name, err)
	}

	return nil
}
