package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/questforge/internal/handlers"
	"github.com/jwebster45206/questforge/pkg/chat"
	"github.com/jwebster45206/questforge/pkg/quest"
)

const PlaceHolderText = "Say something..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Conversation state
	npc     *handlers.NPCSummary
	history []chat.ChatMessage

	// Quest panel state
	recentQuests []handlers.QuestStatusEntry
	activeQuests []*quest.Progress

	// NPC selection state
	showNPCModal bool
	npcs         []handlers.NPCSummary
	selectedNPC  int
	loadingNPCs  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type chatResponseMsg struct {
	response *chat.ChatResponse
	err      error
}

type npcsLoadedMsg struct {
	npcs []handlers.NPCSummary
	err  error
}

type questPanelMsg struct {
	recent []handlers.QuestStatusEntry
	active []*quest.Progress
	err    error
}

type questBegunMsg struct {
	progress *quest.Progress
	err      error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	questStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")). // gold
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		ready:        false,
		showNPCModal: true,
		loadingNPCs:  true,
		selectedNPC:  0,
	}
}

func (m *ConsoleUI) npcName() string {
	if m.npc == nil {
		return "NPC"
	}
	if m.npc.Name != "" {
		return m.npc.Name
	}
	return m.npc.Key
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("QUESTFORGE") + "\n\n")

	content.WriteString("Character:\n")
	content.WriteString(m.config.Character + "\n\n")

	content.WriteString("Speaking with:\n")
	content.WriteString(m.npcName() + "\n\n")

	content.WriteString("Active quests:\n")
	if len(m.activeQuests) == 0 {
		content.WriteString("None\n")
	} else {
		for _, p := range m.activeQuests {
			content.WriteString("• " + p.QuestID)
			if p.CurrentStep != "" {
				content.WriteString(" — " + p.CurrentStep)
			}
			content.WriteString("\n")
		}
	}
	content.WriteString("\n")

	content.WriteString("Recent builds:\n")
	if len(m.recentQuests) == 0 {
		content.WriteString("None\n")
	} else {
		for _, q := range m.recentQuests {
			content.WriteString(fmt.Sprintf("• %s [%s]\n", q.Title, q.Status))
		}
	}
	content.WriteString("\n")

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /npc: Switch NPC\n")
	content.WriteString("• /begin <id>: Start quest\n")

	return content.String()
}

// writeChatContent rebuilds the chat history for the current viewport
// width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("QUESTFORGE") + "\n\n")
	content.WriteString(fmt.Sprintf("You are speaking with %s. Quest-worthy conversations\nare queued for the builder automatically.\n\n", m.npcName()))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, msg := range m.history {
		switch msg.Role {
		case chat.ChatRoleAgent:
			content.WriteString(formatNPCResponse(msg.Content, m.npcName(), chatWidth) + "\n\n")
		case chat.ChatRoleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
		case chat.ChatRoleSystem:
			content.WriteString(questStyle.Render(msg.Content) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showNPCModal {
		return m.loadNPCs()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showNPCModal {
		return m.updateNPCModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			m.history = append(m.history, chat.ChatMessage{
				Role:    chat.ChatRoleUser,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendChatMessage(input), progressTick())
		}

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.history = append(m.history, chat.ChatMessage{
				Role:    chat.ChatRoleAgent,
				Content: msg.response.Message,
			})
			if msg.response.QuestID != "" {
				m.history = append(m.history, chat.ChatMessage{
					Role:    chat.ChatRoleSystem,
					Content: fmt.Sprintf("⚑ A quest was detected and queued: %s", msg.response.QuestID),
				})
			}
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshQuestPanel()

	case questPanelMsg:
		if msg.err == nil {
			m.recentQuests = msg.recent
			m.activeQuests = msg.active
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case questBegunMsg:
		if msg.err != nil {
			m.history = append(m.history, chat.ChatMessage{
				Role:    chat.ChatRoleSystem,
				Content: "Could not begin quest: " + msg.err.Error(),
			})
		} else if msg.progress != nil {
			m.history = append(m.history, chat.ChatMessage{
				Role:    chat.ChatRoleSystem,
				Content: fmt.Sprintf("⚑ Quest %s is now %s.", msg.progress.QuestID, msg.progress.Status),
			})
		}
		m.writeChatContent()
		return m, m.refreshQuestPanel()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func formatNPCResponse(response, npcName string, width int) string {
	prefix := npcName + ": "
	wrapped := wordwrap.String(response, max(width-len(prefix), 10))
	return speakerStyle.Render(prefix) + npcStyle.Render(wrapped)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.TrimSpace(input))
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /npc - Switch to another NPC
• /begin <quest_id> - Start a built quest
• /copy - Copy the transcript to the clipboard
• Ctrl+C - Quit

How to play:
• Talk to NPCs; ask about troubles, rumors and work
• Quest-worthy replies are structured and queued automatically
• The side panel shows recent quest builds and your active quests
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/npc":
		m.textarea.Reset()
		m.showNPCModal = true
		m.loadingNPCs = true
		return m, m.loadNPCs()

	case "/begin":
		m.textarea.Reset()
		if len(fields) < 2 {
			currentContent := m.chatViewport.View()
			m.chatViewport.SetContent(currentContent + errorStyle.Render("Usage: /begin <quest_id>") + "\n")
			m.chatViewport.GotoBottom()
			return m, nil
		}
		return m, m.beginQuest(fields[1])

	case "/copy":
		m.textarea.Reset()
		var transcript strings.Builder
		for _, msg := range m.history {
			switch msg.Role {
			case chat.ChatRoleUser:
				transcript.WriteString(m.config.Character + ": " + msg.Content + "\n\n")
			case chat.ChatRoleAgent:
				name := "NPC"
				if m.npc != nil {
					name = m.npc.Name
				}
				transcript.WriteString(name + ": " + msg.Content + "\n\n")
			}
		}
		currentContent := m.chatViewport.View()
		if err := clipboard.WriteAll(transcript.String()); err != nil {
			m.chatViewport.SetContent(currentContent + errorStyle.Render("Copy failed: "+err.Error()) + "\n")
		} else {
			m.chatViewport.SetContent(currentContent + loadingStyle.Render("Transcript copied to clipboard.") + "\n")
		}
		m.chatViewport.GotoBottom()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendChatMessage(message string) tea.Cmd {
	return func() tea.Msg {
		response, err := sendChat(m.client, m.config.APIBaseURL, chat.ChatRequest{
			NPCKey:    m.npc.Key,
			Character: m.config.Character,
			Message:   message,
		})
		return chatResponseMsg{response, err}
	}
}

func (m ConsoleUI) refreshQuestPanel() tea.Cmd {
	return func() tea.Msg {
		recent, err := fetchQuestStatus(m.client, m.config.APIBaseURL)
		if err != nil {
			return questPanelMsg{err: err}
		}
		active, err := fetchActiveQuests(m.client, m.config.APIBaseURL, m.config.Character)
		return questPanelMsg{recent: recent, active: active, err: err}
	}
}

func (m ConsoleUI) beginQuest(questID string) tea.Cmd {
	return func() tea.Msg {
		progress, err := beginQuest(m.client, m.config.APIBaseURL, m.config.Character, questID)
		return questBegunMsg{progress, err}
	}
}

func (m ConsoleUI) loadNPCs() tea.Cmd {
	return func() tea.Msg {
		npcs, err := listNPCs(m.client, m.config.APIBaseURL)
		return npcsLoadedMsg{npcs, err}
	}
}

func (m ConsoleUI) updateNPCModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case npcsLoadedMsg:
		m.loadingNPCs = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.npcs = msg.npcs
			m.err = nil
			if m.selectedNPC >= len(m.npcs) {
				m.selectedNPC = 0
			}
		}

	case tea.KeyMsg:
		if m.loadingNPCs || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedNPC > 0 {
				m.selectedNPC--
			}
		case tea.KeyDown:
			if m.selectedNPC < len(m.npcs)-1 {
				m.selectedNPC++
			}
		case tea.KeyEnter:
			if len(m.npcs) > 0 {
				selected := m.npcs[m.selectedNPC]
				m.npc = &selected
				m.history = nil
				m.showNPCModal = false
				if m.width > 0 && m.height > 0 {
					m.resize()
				}
				m.writeChatContent()
				m.metaViewport.SetContent(m.writeMetadata())
				m.textarea.Focus()
				m.ready = true
				return m, tea.Batch(textarea.Blink, m.refreshQuestPanel())
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if !m.showNPCModal {
					m.textarea.Focus()
					return m, textarea.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Realm?"))
	content.WriteString("\n\n")
	content.WriteString("Your quests will be waiting when you return.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderNPCModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingNPCs {
		content.WriteString(modalTitleStyle.Render("Loading NPCs..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch the locals..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load NPCs: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if len(m.npcs) == 0 {
		content.WriteString(modalTitleStyle.Render("No NPCs"))
		content.WriteString("\n\n")
		content.WriteString("The world has no NPCs yet. Seed some and restart.")
	} else {
		content.WriteString(modalTitleStyle.Render("Who do you approach?"))
		content.WriteString("\n\n")

		for i, n := range m.npcs {
			label := n.Name
			if label == "" {
				label = n.Key
			}
			if i == m.selectedNPC {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", label)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", label)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showNPCModal {
		return m.renderNPCModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws the animated bar shown while a reply is
// being generated.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
