package app

import (
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/peek/internal/follow"
	statepkg "github.com/kk-code-lab/peek/internal/state"
	"github.com/kk-code-lab/peek/internal/ui/input"
	renderui "github.com/kk-code-lab/peek/internal/ui/render"
)

// Application owns the screen, the session state and the channels feeding
// the run loop. The loop goroutine is the only writer of state.
type Application struct {
	screen   tcell.Screen
	state    *statepkg.SessionState
	reducer  *statepkg.StateReducer
	renderer *renderui.Renderer
	input    *input.InputHandler
	actionCh chan statepkg.Action

	ingestor      *follow.Ingestor
	followStarted bool

	shouldQuit bool
}

// NewApplication wires a session together. ingestor may be nil when the
// source cannot be followed.
func NewApplication(screen tcell.Screen, state *statepkg.SessionState, ingestor *follow.Ingestor) *Application {
	actionCh := make(chan statepkg.Action, 16)
	return &Application{
		screen:   screen,
		state:    state,
		reducer:  statepkg.NewStateReducer(),
		renderer: renderui.NewRenderer(screen),
		input:    input.NewInputHandler(actionCh),
		actionCh: actionCh,
		ingestor: ingestor,
	}
}

func (app *Application) Run() {
	defer app.screen.Fini()

	w, h := app.screen.Size()
	app.reduce(statepkg.ResizeAction{Width: w, Height: h})
	if app.state.Follow {
		app.startFollow()
		app.reduce(statepkg.MoveToBottomAction{})
	}
	app.renderer.Render(app.state)

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	renderPending := false
	for !app.shouldQuit {
		if renderPending {
			app.renderer.Render(app.state)
			renderPending = false
		}

		chunks, anomalies := app.followChans()
		select {
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case chunk := <-chunks:
			app.reduce(statepkg.FollowChunkAction{Data: chunk})
			app.drainChunks()
			renderPending = true
		case err := <-anomalies:
			app.reduce(statepkg.FollowAnomalyAction{Err: err})
			renderPending = true
		case <-sigCh:
			app.screen.Beep()
			app.reduce(statepkg.MessageAction{Text: "interrupt (q to quit)"})
			renderPending = true
		}

		if app.processActions() {
			renderPending = true
		}
	}

	if app.followStarted {
		app.ingestor.Stop()
	}
}

// followChans returns nil channels until the ingestor runs, which keeps the
// select arms permanently blocked instead of busy.
func (app *Application) followChans() (<-chan []byte, <-chan error) {
	if !app.followStarted {
		return nil, nil
	}
	return app.ingestor.Chunks(), app.ingestor.Anomalies()
}

func (app *Application) startFollow() {
	if app.ingestor == nil || app.followStarted {
		return
	}
	app.ingestor.Start()
	app.followStarted = true
}

// drainChunks applies every chunk already delivered before the next render,
// so a burst of appends scrolls once instead of flickering per chunk.
func (app *Application) drainChunks() {
	for {
		select {
		case chunk := <-app.ingestor.Chunks():
			app.reduce(statepkg.FollowChunkAction{Data: chunk})
		default:
			return
		}
	}
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	if !app.input.ProcessEvent(ev) {
		app.shouldQuit = true
		return false
	}
	return true
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if _, ok := action.(statepkg.QuitAction); ok {
		app.shouldQuit = true
		return false
	}
	app.reduce(action)
	if app.state.Follow {
		app.startFollow()
	}
	return true
}

// processActions drains actions the input handler queued during this
// iteration.
func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
			if app.shouldQuit {
				return changed
			}
		default:
			return changed
		}
	}
}

func (app *Application) reduce(action statepkg.Action) {
	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.state.Message = err.Error()
	}
}
