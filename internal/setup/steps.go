package setup

import "context"

// Step indexes the wizard screens, 0 (welcome) through the post-completion
// screen.
type Step int

const (
	StepWelcome Step = iota
	StepSchools
	StepOrgUnits
	StepLevels
	StepClasses
	StepGradeScales
	StepUsers
	StepReview
	StepDone
)

// lastStep is the highest navigable step.
const lastStep = StepDone

// String returns the display name of a step.
func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "Welcome"
	case StepSchools:
		return "Schools"
	case StepOrgUnits:
		return "Organization"
	case StepLevels:
		return "Academic levels"
	case StepClasses:
		return "Classes & sections"
	case StepGradeScales:
		return "Grading scales"
	case StepUsers:
		return "Users"
	case StepReview:
		return "Review"
	case StepDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// stepGate is a pure predicate over sub-store state deciding whether the
// wizard may leave a step. Keeping gates pure lets step order change
// without touching persistence logic.
type stepGate func(*Wizard) bool

// stepCommit runs a step's remote side effects before advancing. A failure
// blocks the advance.
type stepCommit func(context.Context, *Wizard) error

// stepGates holds the per-step "can continue" predicates. Steps absent
// from the table always pass.
var stepGates = map[Step]stepGate{
	StepSchools: func(w *Wizard) bool {
		return w.Schools.StepComplete()
	},
	StepLevels: func(w *Wizard) bool {
		return len(w.Levels.Levels()) > 0
	},
	StepClasses: func(w *Wizard) bool {
		return len(w.Classes.Classes()) > 0 && len(w.Classes.Sections()) > 0
	},
}

// stepCommits holds the per-step remote commits run after a gate passes.
var stepCommits = map[Step]stepCommit{
	StepSchools: func(ctx context.Context, w *Wizard) error {
		return w.Schools.CommitPending(ctx)
	},
}
