package state

// Action is the base interface for all state mutations
type Action interface{}

// ===== VERTICAL MOVEMENT ACTIONS =====

type MoveDownAction struct {
	Lines int
}
type MoveUpAction struct {
	Lines int
}
type MoveDownHalfPagesAction struct {
	Pages int
}
type MoveUpHalfPagesAction struct {
	Pages int
}
type MoveDownPagesAction struct {
	Pages int
}
type MoveUpPagesAction struct {
	Pages int
}
type MoveToTopAction struct{}
type MoveToBottomAction struct{}
type MoveToLineAction struct {
	Number int // 1-based
}

// ===== HORIZONTAL MOVEMENT ACTIONS =====

type MoveLeftAction struct {
	Columns int
}
type MoveRightAction struct {
	Columns int
}
type MoveLeftHalfPagesAction struct {
	Pages int
}
type MoveRightHalfPagesAction struct {
	Pages int
}
type MoveToHeadOfLineAction struct{}
type MoveToEndOfLineAction struct{}

// ===== VIEW ACTIONS =====

type ToggleLineNumbersAction struct{}
type ToggleWrapAction struct{}
type IncrementHeightAction struct {
	Delta int
}
type DecrementHeightAction struct {
	Delta int
}
type SetHeightAction struct {
	Height int
}
type ResizeAction struct {
	Width  int
	Height int
}

// ===== SEARCH ACTIONS =====

type SearchIncrementalAction struct {
	Pattern string
}
type SearchTriggerAction struct{}
type SearchNextAction struct{}
type SearchPrevAction struct{}
type CancelAction struct{}

// ===== FOLLOW ACTIONS =====

type ToggleFollowAction struct{}
type FollowChunkAction struct {
	Data []byte
}
type FollowAnomalyAction struct {
	Err error
}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}
type MessageAction struct {
	Text string
}
