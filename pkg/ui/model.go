package ui

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/go-go-golems/shopchat/pkg/conversation"
	"github.com/go-go-golems/shopchat/pkg/session"
)

// conversationChangedMsg signals that the conversation snapshot is stale.
type conversationChangedMsg struct{}

// submitDoneMsg carries the outcome of a dispatched submit.
type submitDoneMsg struct{ err error }

// Model is the terminal front-end over a Conversation. It only ever reads
// snapshots; all mutation goes through Submit/QuickAction intents.
type Model struct {
	ctx  context.Context
	conv *conversation.Conversation
	log  zerolog.Logger

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	width  int
	height int
	ready  bool

	// pendingImage is a base64 payload staged by /image, sent with the next
	// message and cleared afterwards.
	pendingImage     string
	pendingImageName string

	notice string
}

func NewModel(ctx context.Context, conv *conversation.Conversation, logger zerolog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about products..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return Model{
		ctx:   ctx,
		conv:  conv,
		log:   logger.With().Str("component", "ui").Logger(),
		input: ti,
		spin:  sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, textinput.Blink, m.waitForChange())
}

// waitForChange blocks on the conversation's coalesced update signal.
func (m Model) waitForChange() tea.Cmd {
	updates := m.conv.Updates()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return tea.Quit()
		case <-updates:
			return conversationChangedMsg{}
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 4
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.handleInput()
		case "1", "2", "3", "4":
			if len(m.conv.Snapshot().Messages) == 0 && m.input.Value() == "" {
				idx := int(msg.String()[0] - '1')
				return m.dispatchQuickAction(quickActions[idx].Prompt)
			}
		}

	case conversationChangedMsg:
		m.refreshViewport()
		cmds = append(cmds, m.waitForChange())

	case submitDoneMsg:
		if msg.err != nil {
			m.notice = rejectionNotice(msg.err)
		}
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleInput() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(raw, "/image ") {
		return m.stageImage(strings.TrimSpace(strings.TrimPrefix(raw, "/image "))), nil
	}
	if raw == "" && m.pendingImage == "" {
		return m, nil
	}

	view := m.conv.Snapshot()
	if !view.SessionActive || view.Typing {
		// core rejects these too; skip the round trip and keep the input
		return m, nil
	}

	image := m.pendingImage
	m.pendingImage = ""
	m.pendingImageName = ""
	m.input.Reset()
	m.notice = ""

	conv := m.conv
	ctx := m.ctx
	return m, func() tea.Msg {
		return submitDoneMsg{err: conv.Submit(ctx, raw, image)}
	}
}

func (m Model) dispatchQuickAction(prompt string) (tea.Model, tea.Cmd) {
	conv := m.conv
	ctx := m.ctx
	return m, func() tea.Msg {
		return submitDoneMsg{err: conv.QuickAction(ctx, prompt)}
	}
}

func (m Model) stageImage(path string) Model {
	data, err := os.ReadFile(path)
	if err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("cannot read image")
		m.notice = fmt.Sprintf("cannot read image %s", path)
		m.input.Reset()
		return m
	}
	m.pendingImage = base64.StdEncoding.EncodeToString(data)
	m.pendingImageName = path
	m.notice = ""
	m.input.Reset()
	return m
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	view := m.conv.Snapshot()
	var content string
	if len(view.Messages) == 0 {
		content = renderWelcome(m.viewport.Width - 2)
	} else {
		blocks := make([]string, 0, len(view.Messages))
		for _, msg := range view.Messages {
			blocks = append(blocks, renderMessage(msg, m.viewport.Width))
		}
		content = lipgloss.JoinVertical(lipgloss.Left, blocks...)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	view := m.conv.Snapshot()

	var footer strings.Builder
	if view.Session == session.StatusFailed {
		footer.WriteString(errorBubbleStyle.Render("Failed to connect to the chat service"))
		footer.WriteString("\n")
	}
	if view.Typing {
		footer.WriteString(typingStyle.Render(m.spin.View() + " CommerceAI is typing..."))
		footer.WriteString("\n")
	}
	if m.pendingImageName != "" {
		footer.WriteString(attachmentStyle.Render("attached: " + m.pendingImageName))
		footer.WriteString("\n")
	}
	if m.notice != "" {
		footer.WriteString(statusStyle.Render(m.notice))
		footer.WriteString("\n")
	}
	footer.WriteString(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(view, m.width),
		m.viewport.View(),
		footer.String(),
	)
}

func rejectionNotice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, conversation.ErrSessionInactive):
		return "No session yet. Reload once the service is reachable."
	case errors.Is(err, conversation.ErrSendInFlight):
		return "Hold on, a reply is still on its way."
	default:
		return err.Error()
	}
}
