package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/spinner"
	"github.com/xonecas/symb/internal/ui"
)

// Program is a bubbletea v2 Model that renders an internal/ui.Runner's
// event stream as scrolling status lines. It owns no key bindings and no
// widget catalog; this exists only to give the event bus a real consumer
// exercising bubbletea/v2, bubbles/v2, and lipgloss/v2, at a fraction of
// a full editor's size. Grounded on internal/tui/tui.go's composition
// (spinner + styles + a scrolling transcript), not its editor/modal/mouse
// machinery.
type Program struct {
	styles  Styles
	events  <-chan ui.AppEvent
	spin    spinner.Model
	running bool
	lines   []string
	theme   string
}

type eventMsg struct{ evt ui.AppEvent }
type eventsClosedMsg struct{}

// New builds a Program reading from events and rendering diffs with the
// given chroma theme name (e.g. "vulcan", the theme cmd/symb passes).
func New(events <-chan ui.AppEvent, theme string) *Program {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Program{
		styles: DefaultStyles(),
		events: events,
		spin:   sp,
		theme:  theme,
	}
}

func (p *Program) Init() tea.Cmd {
	return tea.Batch(p.spin.Tick, p.waitForEvent())
}

func (p *Program) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-p.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{evt: evt}
	}
}

func (p *Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(m)
		return p, cmd
	case eventMsg:
		p.apply(m.evt)
		return p, p.waitForEvent()
	case eventsClosedMsg:
		return p, tea.Quit
	}
	return p, nil
}

func (p *Program) apply(evt ui.AppEvent) {
	switch evt.Kind {
	case ui.EventLLMChunk:
		p.running = true
	case ui.EventLLMComplete:
		p.running = false
		p.lines = append(p.lines, p.styles.Text.Render(evt.Message.Text()))
	case ui.EventLLMError:
		p.running = false
		p.lines = append(p.lines, p.styles.Error.Render("error: "+evt.Err))
	case ui.EventToolStarted:
		p.lines = append(p.lines, p.styles.ToolArrow.Render("→ ")+p.styles.Dim.Render(evt.ToolName))
	case ui.EventToolCompleted:
		p.lines = append(p.lines, p.styles.ToolArrow.Render("← ")+p.styles.Dim.Render(evt.ToolName))
	case ui.EventToolFailed:
		p.lines = append(p.lines, p.styles.Error.Render(fmt.Sprintf("✗ %s: %s", evt.ToolName, evt.Err)))
	case ui.EventFileDiff:
		old := HighlightDiffSide(evt.DiffPath, evt.DiffOld, p.theme)
		new_ := HighlightDiffSide(evt.DiffPath, evt.DiffNew, p.theme)
		p.lines = append(p.lines, p.styles.Muted.Render("diff "+evt.DiffPath), old, new_)
	case ui.EventModelChanged:
		p.lines = append(p.lines, p.styles.Muted.Render(fmt.Sprintf("switched to %s/%s", evt.Provider, evt.Model)))
	case ui.EventModelSwitchError:
		p.lines = append(p.lines, p.styles.Error.Render("model switch failed: "+evt.Err))
	}
}

func (p *Program) View() string {
	var b strings.Builder
	for _, l := range p.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if p.running {
		b.WriteString(p.styles.Spinner.Render(p.spin.View()))
		b.WriteByte('\n')
	}
	return b.String()
}
