package command

import "fmt"

// Execution is handed to a running operation. It identifies the run and lets
// the operation report progress. A nil Execution is valid and ignores all
// reports, which keeps commands easy to call directly in tests.
type Execution struct {
	d       *Dispatcher
	runID   string
	attempt int
}

// RunID returns the id of the running command.
func (x *Execution) RunID() string {
	if x == nil {
		return ""
	}
	return x.runID
}

// Attempt returns the 1-based attempt number.
func (x *Execution) Attempt() int {
	if x == nil {
		return 1
	}
	return x.attempt
}

// ReportStep records sub-progress for a multi-step operation. It updates the
// snapshot without changing its status.
func (x *Execution) ReportStep(current, total int, description string) {
	if x == nil || x.d == nil {
		return
	}
	x.d.reportStep(x.runID, x.attempt, current, total, description)
}

// Log appends a free-form line to the run's progress log.
func (x *Execution) Log(format string, args ...any) {
	if x == nil || x.d == nil {
		return
	}
	x.d.appendLine(x.runID, fmt.Sprintf(format, args...))
}
