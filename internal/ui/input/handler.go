package input

import (
	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/peek/internal/state"
)

// maxPrefix caps accumulated count digits so a held key cannot overflow.
const maxPrefix = 1000000

type argKind int

const (
	argNone argKind = iota
	argOptional
	argMandatory
)

// command describes how a key combines with an optional count prefix.
// with builds the action from a prefix (or the default count of 1); bare is
// used instead when no prefix was typed and the command distinguishes the
// two, like g jumping to the top but 5g jumping to line 5.
type command struct {
	arg  argKind
	with func(n int) statepkg.Action
	bare func() statepkg.Action
}

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action

	prefix    int
	hasPrefix bool

	searching bool
	searchBuf []rune
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	return &InputHandler{actionChan: actionChan}
}

// ProcessEvent converts a tcell event into an Action. It returns false when
// the session should end.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- statepkg.ResizeAction{Width: w, Height: h}
		return true
	default:
		return true
	}
}

func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	if ih.searching {
		return ih.processSearchKey(ev)
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case tcell.KeyEscape:
		ih.clearPrefix()
		ih.actionChan <- statepkg.CancelAction{}
		return true
	case tcell.KeyRune:
		return ih.processRune(ev.Rune())
	default:
		if cmd, ok := keyCommands[ev.Key()]; ok {
			ih.dispatch(cmd)
			return true
		}
		ih.clearPrefix()
		return true
	}
}

func (ih *InputHandler) processRune(r rune) bool {
	if r >= '1' && r <= '9' || (r == '0' && ih.hasPrefix) {
		ih.pushDigit(int(r - '0'))
		return true
	}
	switch r {
	case 'q', 'Q':
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case '/':
		ih.clearPrefix()
		ih.searching = true
		ih.searchBuf = nil
		ih.actionChan <- statepkg.SearchIncrementalAction{Pattern: ""}
		return true
	}
	if cmd, ok := runeCommands[r]; ok {
		ih.dispatch(cmd)
		return true
	}
	ih.clearPrefix()
	return true
}

func (ih *InputHandler) processSearchKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case tcell.KeyEnter:
		ih.searching = false
		ih.searchBuf = nil
		ih.actionChan <- statepkg.SearchTriggerAction{}
	case tcell.KeyEscape:
		ih.searching = false
		ih.searchBuf = nil
		ih.actionChan <- statepkg.CancelAction{}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ih.searchBuf) == 0 {
			ih.searching = false
			ih.actionChan <- statepkg.CancelAction{}
			break
		}
		ih.searchBuf = ih.searchBuf[:len(ih.searchBuf)-1]
		ih.actionChan <- statepkg.SearchIncrementalAction{Pattern: string(ih.searchBuf)}
	case tcell.KeyRune:
		ih.searchBuf = append(ih.searchBuf, ev.Rune())
		ih.actionChan <- statepkg.SearchIncrementalAction{Pattern: string(ih.searchBuf)}
	}
	return true
}

func (ih *InputHandler) pushDigit(d int) {
	ih.hasPrefix = true
	if ih.prefix < maxPrefix {
		ih.prefix = ih.prefix*10 + d
	}
}

func (ih *InputHandler) clearPrefix() {
	ih.prefix = 0
	ih.hasPrefix = false
}

// dispatch combines the pending count prefix with a command. A count-less
// key discards any prefix; a count-requiring key without a prefix is a
// no-op.
func (ih *InputHandler) dispatch(cmd command) {
	hasPrefix, prefix := ih.hasPrefix, ih.prefix
	ih.clearPrefix()

	switch cmd.arg {
	case argNone:
		ih.actionChan <- cmd.bare()
	case argOptional:
		if hasPrefix {
			ih.actionChan <- cmd.with(prefix)
		} else if cmd.bare != nil {
			ih.actionChan <- cmd.bare()
		} else {
			ih.actionChan <- cmd.with(1)
		}
	case argMandatory:
		if hasPrefix {
			ih.actionChan <- cmd.with(prefix)
		}
	}
}

func counted(with func(n int) statepkg.Action) command {
	return command{arg: argOptional, with: with}
}

func plain(a statepkg.Action) command {
	return command{arg: argNone, bare: func() statepkg.Action { return a }}
}

var runeCommands = map[rune]command{
	'j': counted(func(n int) statepkg.Action { return statepkg.MoveDownAction{Lines: n} }),
	'k': counted(func(n int) statepkg.Action { return statepkg.MoveUpAction{Lines: n} }),
	'h': counted(func(n int) statepkg.Action { return statepkg.MoveLeftAction{Columns: n} }),
	'l': counted(func(n int) statepkg.Action { return statepkg.MoveRightAction{Columns: n} }),
	'd': counted(func(n int) statepkg.Action { return statepkg.MoveDownHalfPagesAction{Pages: n} }),
	'u': counted(func(n int) statepkg.Action { return statepkg.MoveUpHalfPagesAction{Pages: n} }),
	'f': counted(func(n int) statepkg.Action { return statepkg.MoveDownPagesAction{Pages: n} }),
	' ': counted(func(n int) statepkg.Action { return statepkg.MoveDownPagesAction{Pages: n} }),
	'b': counted(func(n int) statepkg.Action { return statepkg.MoveUpPagesAction{Pages: n} }),
	'H': counted(func(n int) statepkg.Action { return statepkg.MoveLeftHalfPagesAction{Pages: n} }),
	'L': counted(func(n int) statepkg.Action { return statepkg.MoveRightHalfPagesAction{Pages: n} }),
	'+': counted(func(n int) statepkg.Action { return statepkg.IncrementHeightAction{Delta: n} }),
	'-': counted(func(n int) statepkg.Action { return statepkg.DecrementHeightAction{Delta: n} }),
	'=': {arg: argMandatory, with: func(n int) statepkg.Action { return statepkg.SetHeightAction{Height: n} }},
	'g': {
		arg:  argOptional,
		with: func(n int) statepkg.Action { return statepkg.MoveToLineAction{Number: n} },
		bare: func() statepkg.Action { return statepkg.MoveToTopAction{} },
	},
	'G': {
		arg:  argOptional,
		with: func(n int) statepkg.Action { return statepkg.MoveToLineAction{Number: n} },
		bare: func() statepkg.Action { return statepkg.MoveToBottomAction{} },
	},
	'0': plain(statepkg.MoveToHeadOfLineAction{}),
	'$': plain(statepkg.MoveToEndOfLineAction{}),
	'#': plain(statepkg.ToggleLineNumbersAction{}),
	'!': plain(statepkg.ToggleWrapAction{}),
	'n': plain(statepkg.SearchNextAction{}),
	'N': plain(statepkg.SearchPrevAction{}),
	'F': plain(statepkg.ToggleFollowAction{}),
}

var keyCommands = map[tcell.Key]command{
	tcell.KeyDown:  counted(func(n int) statepkg.Action { return statepkg.MoveDownAction{Lines: n} }),
	tcell.KeyUp:    counted(func(n int) statepkg.Action { return statepkg.MoveUpAction{Lines: n} }),
	tcell.KeyLeft:  counted(func(n int) statepkg.Action { return statepkg.MoveLeftAction{Columns: n} }),
	tcell.KeyRight: counted(func(n int) statepkg.Action { return statepkg.MoveRightAction{Columns: n} }),
	tcell.KeyCtrlN: counted(func(n int) statepkg.Action { return statepkg.MoveDownAction{Lines: n} }),
	tcell.KeyCtrlP: counted(func(n int) statepkg.Action { return statepkg.MoveUpAction{Lines: n} }),
	tcell.KeyCtrlJ: counted(func(n int) statepkg.Action { return statepkg.MoveDownAction{Lines: n} }),
	tcell.KeyCtrlK: counted(func(n int) statepkg.Action { return statepkg.MoveUpAction{Lines: n} }),
	tcell.KeyCtrlD: counted(func(n int) statepkg.Action { return statepkg.MoveDownHalfPagesAction{Pages: n} }),
	tcell.KeyCtrlU: counted(func(n int) statepkg.Action { return statepkg.MoveUpHalfPagesAction{Pages: n} }),
	tcell.KeyCtrlF: counted(func(n int) statepkg.Action { return statepkg.MoveDownPagesAction{Pages: n} }),
	tcell.KeyCtrlB: counted(func(n int) statepkg.Action { return statepkg.MoveUpPagesAction{Pages: n} }),
	tcell.KeyPgDn:  counted(func(n int) statepkg.Action { return statepkg.MoveDownPagesAction{Pages: n} }),
	tcell.KeyPgUp:  counted(func(n int) statepkg.Action { return statepkg.MoveUpPagesAction{Pages: n} }),
	tcell.KeyHome:  plain(statepkg.MoveToHeadOfLineAction{}),
	tcell.KeyEnd:   plain(statepkg.MoveToEndOfLineAction{}),
}
