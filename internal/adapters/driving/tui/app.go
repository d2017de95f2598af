package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/views/reader"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// readerView is the document reader component.
	readerView *reader.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	readerView := reader.NewView(
		s, ports.Highlights, ports.Navigator, ports.Quotes, ports.Tree, ports.Title,
	)

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		readerView:  readerView,
		currentView: messages.ViewReader,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.readerView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("hilite - "+a.ports.Title),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		firstSize := !a.ready
		a.ready = true
		a.readerView, cmd = a.readerView.Update(msg)
		if firstSize {
			a.readerView.Rebuild()
			if a.ports.FocusID != "" {
				a.readerView.Focus(a.ports.FocusID)
			}
		}
		return a, cmd

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewReader:
			// While the capture input is focused every key is text.
			if !a.readerView.Adding() {
				if msg.String() == "?" {
					a.currentView = messages.ViewHelp
					return a, nil
				}
				if msg.String() == "q" {
					return a, tea.Quit
				}
			}
			a.readerView, cmd = a.readerView.Update(msg)
			return a, cmd

		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "?" || msg.String() == "q" {
				a.currentView = messages.ViewReader
			}
			return a, nil
		}
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.readerView, cmd = a.readerView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the reader (service call results).
	a.readerView, cmd = a.readerView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewReader:
		return a.readerView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.readerView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Reading:
  j/k, ↑/↓    Scroll
  pgup/pgdn   Page up / down
  g/G         Top / bottom

Highlights:
  n/p         Next / previous highlight
  a           Add a highlight (type its text, enter to confirm)
  d           Delete the focused highlight
  y           Copy a citation link for the focused highlight

Other:
  ?           Toggle help
  q, ctrl+c   Quit

[esc] back to reader`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Reader returns the reader view (for testing).
func (a *App) Reader() *reader.View {
	return a.readerView
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.readerView.SetDimensions(width, height)
}
