package model

// RoutineAction is one of DeleteAction, MoveAction, CompleteAction or
// UncompleteAction.
type RoutineAction interface {
	Kind() ActionKind
	isRoutineAction()
}

type DeleteAction struct{}

// MoveAction relocates a task to the end of Target.
type MoveAction struct {
	Target int64
}

// CompleteAction marks a task completed and, when Target is set, moves it.
type CompleteAction struct {
	Target *int64
}

// UncompleteAction clears the completed flag and, when Target is set, moves it.
type UncompleteAction struct {
	Target *int64
}

func (DeleteAction) Kind() ActionKind     { return ActionDelete }
func (MoveAction) Kind() ActionKind       { return ActionMove }
func (CompleteAction) Kind() ActionKind   { return ActionComplete }
func (UncompleteAction) Kind() ActionKind { return ActionUncomplete }

func (DeleteAction) isRoutineAction()     {}
func (MoveAction) isRoutineAction()       {}
func (CompleteAction) isRoutineAction()   {}
func (UncompleteAction) isRoutineAction() {}

// NewRoutineAction builds the variant for a persisted kind and target column.
// It returns nil for an unknown kind. A MOVE without a target becomes a move to
// category 0, which the applier treats as a no-op.
func NewRoutineAction(kind ActionKind, target *int64) RoutineAction {
	switch kind {
	case ActionDelete:
		return DeleteAction{}
	case ActionMove:
		if target == nil {
			return MoveAction{}
		}
		return MoveAction{Target: *target}
	case ActionComplete:
		return CompleteAction{Target: target}
	case ActionUncomplete:
		return UncompleteAction{Target: target}
	default:
		return nil
	}
}

// MoveTarget reports the category a variant may move a task into.
func MoveTarget(a RoutineAction) *int64 {
	switch v := a.(type) {
	case MoveAction:
		target := v.Target
		return &target
	case CompleteAction:
		return v.Target
	case UncompleteAction:
		return v.Target
	default:
		return nil
	}
}
