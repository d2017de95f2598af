// Package reader provides the document reader view component for the TUI.
// It renders the document's visible text with highlighted runs styled and
// drives highlight navigation and capture.
package reader

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hilite-cli/internal/core/domain"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driven"
	"github.com/custodia-labs/hilite-cli/internal/core/ports/driving"
)

// run is one styled stretch of a rendered line.
type run struct {
	text string
	ids  []string
}

// line is one wrapped display line.
type line struct {
	runs []run
}

// blockTags break the flow into paragraphs in the terminal rendering.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true, "pre": true,
	"table": true, "tr": true, "br": true, "hr": true,
}

// skipTags never contribute visible text.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true,
	"noscript": true, "template": true, "title": true,
}

// View is the document reader view.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	statusBar  *status.Bar
	highlights driving.HighlightService
	navigator  driving.Navigator
	quotes     driving.QuoteService
	tree       driven.DocumentTree

	ctx   context.Context
	title string

	lines        []line
	idLine       map[string]int
	focusedID    string
	scrollOffset int

	adding bool
	input  textinput.Model

	// inFlight is set while an add or remove command is out with the
	// service and cleared when its result message lands. Confirm and
	// remove keys are ignored in between so a session never runs two
	// mutations at once.
	inFlight bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new reader view.
func NewView(
	s *styles.Styles,
	highlights driving.HighlightService,
	navigator driving.Navigator,
	quotes driving.QuoteService,
	tree driven.DocumentTree,
	title string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()

	input := textinput.New()
	input.Placeholder = "text to highlight"
	input.CharLimit = 512

	return &View{
		styles:     s,
		keymap:     km,
		statusBar:  status.NewBar(s, km),
		highlights: highlights,
		navigator:  navigator,
		quotes:     quotes,
		tree:       tree,
		ctx:        context.Background(),
		title:      title,
		idLine:     map[string]int{},
		input:      input,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Focus jumps to the block containing the given highlight id.
func (v *View) Focus(id string) {
	progress, err := v.navigator.Focus(id)
	if err != nil {
		v.statusBar.SetState(status.StateError)
		v.statusBar.SetMessage(err.Error())
		return
	}
	v.applyProgress(progress)
}

// Rebuild re-derives the wrapped line model from the live tree. Call after
// anything that mutates markers.
func (v *View) Rebuild() {
	v.buildLines()
	v.statusBar.SetProgress(v.navigator.Progress())
}

// Update handles messages for the reader view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		v.statusBar.SetWidth(msg.Width)
		v.buildLines()
		return v, nil

	case tea.KeyMsg:
		if v.adding {
			return v.handleAddingKey(msg)
		}
		return v.handleKey(msg)

	case messages.HighlightAdded:
		v.inFlight = false
		v.adding = false
		v.input.Blur()
		if msg.Err != nil {
			v.statusBar.SetState(status.StateError)
			v.statusBar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.Rebuild()
		v.statusBar.SetState(status.StateNotice)
		v.statusBar.SetMessage("Highlight added")
		return v, nil

	case messages.HighlightRemoved:
		v.inFlight = false
		if msg.Err != nil {
			v.statusBar.SetState(status.StateError)
			v.statusBar.SetMessage(msg.Err.Error())
			return v, nil
		}
		if v.focusedID == msg.ID {
			v.focusedID = ""
		}
		v.Rebuild()
		v.statusBar.SetState(status.StateNotice)
		v.statusBar.SetMessage("Highlight removed")
		return v, nil

	case messages.QuoteCaptured:
		if msg.Err != nil {
			v.statusBar.SetState(status.StateError)
			v.statusBar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.statusBar.SetState(status.StateNotice)
		v.statusBar.SetMessage(msg.Quote.FragmentURL)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusBar.SetState(status.StateError)
		v.statusBar.SetMessage(msg.Err.Error())
		return v, nil
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case keyStr == "pgup", keyStr == "ctrl+u":
		v.scrollOffset -= v.visibleLines()
		if v.scrollOffset < 0 {
			v.scrollOffset = 0
		}
	case keyStr == "pgdown", keyStr == "ctrl+d":
		v.scrollOffset += v.visibleLines()
		if max := v.maxScrollOffset(); v.scrollOffset > max {
			v.scrollOffset = max
		}
	case keyStr == "g", keyStr == "home":
		v.scrollOffset = 0
	case keyStr == "G", keyStr == "end":
		v.scrollOffset = v.maxScrollOffset()

	case keymap.Matches(keyStr, v.keymap.Next):
		progress, err := v.navigator.Next()
		if err != nil {
			break
		}
		v.statusBar.Clear()
		v.applyProgress(progress)

	case keymap.Matches(keyStr, v.keymap.Previous):
		progress, err := v.navigator.Previous()
		if err != nil {
			break
		}
		v.statusBar.Clear()
		v.applyProgress(progress)

	case keymap.Matches(keyStr, v.keymap.Add):
		if v.inFlight {
			break
		}
		v.adding = true
		v.input.SetValue("")
		v.statusBar.SetState(status.StateAdding)
		return v, v.input.Focus()

	case keymap.Matches(keyStr, v.keymap.Remove):
		if v.inFlight {
			break
		}
		if v.focusedID == "" {
			v.statusBar.SetState(status.StateError)
			v.statusBar.SetMessage("no highlight focused")
			break
		}
		v.inFlight = true
		return v, v.removeCmd(v.focusedID)

	case keymap.Matches(keyStr, v.keymap.Quote):
		if v.focusedID == "" {
			v.statusBar.SetState(status.StateError)
			v.statusBar.SetMessage("no highlight focused")
			break
		}
		return v, v.quoteCmd(v.focusedID)
	}

	return v, nil
}

func (v *View) handleAddingKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	if keymap.Matches(keyStr, v.keymap.Cancel) {
		v.adding = false
		v.input.Blur()
		v.statusBar.Clear()
		return v, nil
	}
	if keymap.Matches(keyStr, v.keymap.Confirm) {
		if v.inFlight {
			return v, nil
		}
		text := strings.TrimSpace(v.input.Value())
		if text == "" {
			v.adding = false
			v.input.Blur()
			v.statusBar.Clear()
			return v, nil
		}
		v.inFlight = true
		return v, v.addCmd(text)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) addCmd(text string) tea.Cmd {
	return func() tea.Msg {
		anchor, err := v.highlights.Add(v.ctx, text, 1)
		return messages.HighlightAdded{Anchor: anchor, Err: err}
	}
}

func (v *View) removeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		err := v.highlights.Remove(v.ctx, id)
		return messages.HighlightRemoved{ID: id, Err: err}
	}
}

func (v *View) quoteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		var anchor *domain.HighlightAnchor
		for _, a := range v.highlights.List() {
			if a.ID == id {
				anchor = &a
				break
			}
		}
		if anchor == nil {
			return messages.QuoteCaptured{Err: fmt.Errorf("highlight %s: %w", id, domain.ErrNotFound)}
		}
		quote, err := v.quotes.Capture(anchor.Text, 1)
		return messages.QuoteCaptured{Quote: quote, Err: err}
	}
}

// applyProgress updates focus state and scrolls the focused block into view.
func (v *View) applyProgress(progress domain.Progress) {
	v.focusedID = progress.CurrentID
	v.statusBar.SetProgress(progress)

	if progress.CurrentID == "" {
		return
	}
	target, ok := v.idLine[progress.CurrentID]
	if !ok {
		return
	}
	// Keep a little context above the focused block.
	v.scrollOffset = target - 2
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
	if max := v.maxScrollOffset(); v.scrollOffset > max {
		v.scrollOffset = max
	}
}

// buildLines flattens the live tree into wrapped, styled display lines and
// records the first line of every highlight id for scroll targeting.
func (v *View) buildLines() {
	v.lines = nil
	v.idLine = map[string]int{}

	width := v.width - 4
	if width < 20 {
		width = 20
	}

	var cur line
	curWidth := 0
	flush := func() {
		if len(cur.runs) > 0 {
			v.lines = append(v.lines, cur)
			cur = line{}
			curWidth = 0
		}
	}
	blank := func() {
		flush()
		if n := len(v.lines); n > 0 && len(v.lines[n-1].runs) > 0 {
			v.lines = append(v.lines, line{})
		}
	}

	emitWord := func(word string, ids []string) {
		wordLen := len([]rune(word))
		sep := 0
		if curWidth > 0 {
			sep = 1
		}
		if curWidth+sep+wordLen > width {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.runs = append(cur.runs, run{text: " "})
			curWidth++
		}
		cur.runs = append(cur.runs, run{text: word, ids: ids})
		curWidth += wordLen
		for _, id := range ids {
			if _, seen := v.idLine[id]; !seen {
				v.idLine[id] = len(v.lines)
			}
		}
	}

	var walk func(n domain.Node, ids []string)
	walk = func(n domain.Node, ids []string) {
		if n == nil {
			return
		}
		if n.Kind() == domain.KindText {
			for _, word := range strings.Fields(n.Text()) {
				emitWord(word, ids)
			}
			return
		}
		tag := n.Tag()
		if skipTags[tag] {
			return
		}
		if _, chrome := n.Attr(driven.ChromeAttr); chrome {
			return
		}
		if raw, ok := n.Attr(driven.MarkerIDAttr); ok {
			ids = strings.Split(raw, ",")
		}
		block := blockTags[tag]
		if block {
			blank()
		}
		for _, child := range n.Children() {
			walk(child, ids)
		}
		if block {
			blank()
		}
	}
	walk(v.tree.Root(), nil)
	flush()

	if max := v.maxScrollOffset(); v.scrollOffset > max {
		v.scrollOffset = max
	}
}

func (v *View) visibleLines() int {
	// Reserve lines for title, separator, status bar and padding.
	reserved := 6
	if v.adding {
		reserved += 3
	}
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

func (v *View) maxScrollOffset() int {
	max := len(v.lines) - v.visibleLines()
	if max < 0 {
		max = 0
	}
	return max
}

// View renders the reader.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title))
	b.WriteString("\n")
	sepWidth := v.width - 4
	if sepWidth > 60 {
		sepWidth = 60
	}
	if sepWidth < 1 {
		sepWidth = 1
	}
	b.WriteString(strings.Repeat("─", sepWidth))
	b.WriteString("\n\n")

	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(v.lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderLine(v.lines[i]))
		b.WriteString("\n")
	}

	if v.adding {
		b.WriteString("\n")
		b.WriteString(v.styles.InputField.Render(v.input.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.statusBar.View())

	return b.String()
}

func (v *View) renderLine(l line) string {
	var b strings.Builder
	b.WriteString("  ")
	for _, r := range l.runs {
		switch {
		case len(r.ids) == 0:
			b.WriteString(v.styles.Normal.Render(r.text))
		case v.focusedID != "" && contains(r.ids, v.focusedID):
			b.WriteString(v.styles.MarkFocused.Render(r.text))
		default:
			b.WriteString(v.styles.Mark.Render(r.text))
		}
	}
	return b.String()
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Adding reports whether the capture input owns the keyboard.
func (v *View) Adding() bool {
	return v.adding
}

// InFlight reports whether an add or remove is awaiting its result.
func (v *View) InFlight() bool {
	return v.inFlight
}

// FocusedID returns the currently focused highlight id.
func (v *View) FocusedID() string {
	return v.focusedID
}

// ScrollOffset returns the current scroll offset (for testing).
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Lines returns the number of wrapped display lines (for testing).
func (v *View) Lines() int {
	return len(v.lines)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusBar.SetWidth(width)
	v.buildLines()
}
