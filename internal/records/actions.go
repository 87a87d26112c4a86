package records

import "strings"

// Action identifies one step of the processing pipeline.
type Action string

const (
	ActionValidate         Action = "validate"
	ActionContainer        Action = "container"
	ActionMovingAttachment Action = "moving_attachment"
	ActionExtract          Action = "extract"
	ActionCleanup          Action = "cleanup"
	ActionFetchYouTube     Action = "fetch_youtube"
	ActionClassify         Action = "classify"
	ActionMoving           Action = "moving"
	ActionRename           Action = "rename"
	ActionFormatting       Action = "formatting"
	ActionAppend           Action = "append"
	ActionTagging          Action = "tagging"
	ActionCompleted        Action = "completed"
)

// actionOrder is the canonical stage sequence. A later action is never
// attempted before all earlier actions carry a non-error outcome.
var actionOrder = []Action{
	ActionValidate,
	ActionContainer,
	ActionMovingAttachment,
	ActionExtract,
	ActionCleanup,
	ActionFetchYouTube,
	ActionClassify,
	ActionMoving,
	ActionRename,
	ActionFormatting,
	ActionAppend,
	ActionTagging,
	ActionCompleted,
}

var actionIndex = func() map[Action]int {
	idx := make(map[Action]int, len(actionOrder))
	for i, action := range actionOrder {
		idx[action] = i
	}
	return idx
}()

// Actions returns the canonical ordered list of pipeline actions.
func Actions() []Action {
	cp := make([]Action, len(actionOrder))
	copy(cp, actionOrder)
	return cp
}

// Index returns the position of the action in the canonical order, or -1 for
// unknown actions.
func (a Action) Index() int {
	if i, ok := actionIndex[a]; ok {
		return i
	}
	return -1
}

// Known reports whether the action is part of the canonical sequence.
func (a Action) Known() bool {
	_, ok := actionIndex[a]
	return ok
}

// Next returns the action that follows a in canonical order. The second
// return is false when a is the terminal action or unknown.
func (a Action) Next() (Action, bool) {
	i := a.Index()
	if i < 0 || i+1 >= len(actionOrder) {
		return "", false
	}
	return actionOrder[i+1], true
}

// ParseAction converts a string into a known Action.
func ParseAction(value string) (Action, bool) {
	normalized := Action(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := actionIndex[normalized]
	return normalized, ok
}
