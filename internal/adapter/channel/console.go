package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/oklog/ulid/v2"

	"doppel-ai/internal/domain"
)

// ConsoleChannel implements domain.Channel as an interactive terminal chat.
// It owns the conversation history for the session: each turn it sends the
// accumulated history and appends the user message and final reply.
type ConsoleChannel struct {
	personaName string
	logger      *slog.Logger
	program     *tea.Program
	done        chan struct{}
}

// NewConsoleChannel creates a console channel.
func NewConsoleChannel(personaName string, logger *slog.Logger) *ConsoleChannel {
	return &ConsoleChannel{
		personaName: personaName,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Name implements domain.Channel.
func (c *ConsoleChannel) Name() string { return "console" }

// Start runs the terminal UI. Non-blocking; Done() closes when the user
// quits.
func (c *ConsoleChannel) Start(ctx context.Context, handler domain.TurnHandler) error {
	model, err := newConsoleModel(ctx, c.personaName, c.Name(), handler)
	if err != nil {
		return fmt.Errorf("console channel: %w", err)
	}
	c.program = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	go func() {
		defer close(c.done)
		if _, err := c.program.Run(); err != nil && ctx.Err() == nil {
			c.logger.Error("console channel error", "error", err)
		}
	}()

	return nil
}

// Stop quits the UI.
func (c *ConsoleChannel) Stop(_ context.Context) error {
	if c.program != nil {
		c.program.Quit()
	}
	return nil
}

// Done closes when the user exits the UI.
func (c *ConsoleChannel) Done() <-chan struct{} { return c.done }

var _ domain.Channel = (*ConsoleChannel)(nil)

// --- bubbletea model ---

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type replyMsg struct {
	content string
	err     error
}

type consoleModel struct {
	ctx         context.Context
	personaName string
	channelName string
	handler     domain.TurnHandler
	renderer    *glamour.TermRenderer

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	history    []domain.Message
	transcript []string
	waiting    bool
	ready      bool
}

func newConsoleModel(ctx context.Context, personaName, channelName string, handler domain.TurnHandler) (*consoleModel, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	ta := textarea.New()
	ta.Placeholder = "Ask me anything..."
	ta.Focus()
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &consoleModel{
		ctx:         ctx,
		personaName: personaName,
		channelName: channelName,
		handler:     handler,
		renderer:    renderer,
		textarea:    ta,
		spinner:     sp,
	}, nil
}

func (m *consoleModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-5)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 5
		}
		m.textarea.SetWidth(msg.Width)
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			message := strings.TrimSpace(m.textarea.Value())
			if message == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.appendUser(message)
			m.waiting = true
			cmds = append(cmds, m.sendTurn(message), m.spinner.Tick)
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.transcript = append(m.transcript, errorStyle.Render("error: "+msg.err.Error()))
		} else {
			m.appendAssistant(msg.content)
		}
		m.refreshViewport()

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *consoleModel) View() string {
	if !m.ready {
		return "loading..."
	}

	status := hintStyle.Render("enter to send, esc to quit")
	if m.waiting {
		status = m.spinner.View() + " thinking..."
	}

	return m.viewport.View() + "\n" + status + "\n" + m.textarea.View()
}

// sendTurn runs one turn off the UI goroutine. The console sends its own
// accumulated history; the reply is appended when the command returns.
func (m *consoleModel) sendTurn(message string) tea.Cmd {
	history := append([]domain.Message(nil), m.history...)
	return func() tea.Msg {
		out, err := m.handler(m.ctx, domain.InboundMessage{
			TurnID:      ulid.Make().String(),
			Content:     message,
			History:     history,
			ChannelName: m.channelName,
		})
		if err != nil {
			return replyMsg{err: err}
		}
		return replyMsg{content: out.Content}
	}
}

func (m *consoleModel) appendUser(message string) {
	m.history = append(m.history, domain.Message{Role: domain.RoleUser, Content: message})
	m.transcript = append(m.transcript, userStyle.Render("You: ")+message)
	m.refreshViewport()
}

func (m *consoleModel) appendAssistant(content string) {
	m.history = append(m.history, domain.Message{Role: domain.RoleAssistant, Content: content})

	rendered, err := m.renderer.Render(content)
	if err != nil {
		rendered = content
	}
	m.transcript = append(m.transcript,
		assistantStyle.Render(m.personaName+": ")+strings.TrimSpace(rendered))
}

func (m *consoleModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}
