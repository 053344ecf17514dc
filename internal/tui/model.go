package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"studyboard/internal/app"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type section int

const (
	sectionDashboard section = iota
	sectionSteps
	sectionFocus
	sectionChat
	sectionSettings
	sectionCount
)

var sectionLabels = [sectionCount]string{"Dashboard", "Steps", "Focus", "Chat", "Settings"}

type timerTickMsg struct{}
type backupTickMsg struct{}
type clearBannerMsg struct{}
type sendDoneMsg struct{ err error }

const bannerTimeout = 4 * time.Second

// Model is the bubbletea shell. It keeps no domain state of its own:
// every view renders a controller snapshot and every key dispatches an
// application command.
type Model struct {
	app   *app.Application
	theme Theme
	md    *MarkdownRenderer

	width  int
	height int
	ready  bool

	section    section
	stepCursor int

	chatInput textarea.Model
	chatVP    viewport.Model

	newStepInput textinput.Model
	addingStep   bool

	keyInput   textinput.Model
	editingKey bool

	presetInput   textinput.Model
	editingPreset bool

	notesInput   textarea.Model
	editingNotes bool

	tagsInput   textinput.Model
	editingTags bool

	quickNoteInput  textinput.Model
	addingQuickNote bool

	sending bool
	banner  string

	// backupActive tracks whether a backup tick is pending, so toggling
	// the interval at runtime never stacks a second loop.
	backupActive bool
}

func New(application *app.Application) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about the focused step. Enter sends."
	ta.CharLimit = 4000
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.Prompt = " "

	newStep := textinput.New()
	newStep.Placeholder = "New step title"
	newStep.CharLimit = 120

	keyIn := textinput.New()
	keyIn.Placeholder = "API credential"
	keyIn.EchoMode = textinput.EchoPassword
	keyIn.CharLimit = 200

	preset := textinput.New()
	preset.Placeholder = "Preset seconds"
	preset.CharLimit = 6

	notes := textarea.New()
	notes.Placeholder = "Notes for this step. Esc saves."
	notes.CharLimit = 8000
	notes.SetHeight(5)
	notes.ShowLineNumbers = false
	notes.Prompt = " "

	tags := textinput.New()
	tags.Placeholder = "Comma-separated tags"
	tags.CharLimit = 200

	quickNote := textinput.New()
	quickNote.Placeholder = "Quick note"
	quickNote.CharLimit = 200

	return &Model{
		app:          application,
		theme:        NewTheme(ThemeName(application.Config.Theme)),
		md:           NewMarkdownRenderer(76),
		width:        100,
		height:       30,
		section:      sectionDashboard,
		chatInput:    ta,
		newStepInput: newStep,
		keyInput:     keyIn,
		presetInput:  preset,
		notesInput:   notes,
		tagsInput:    tags,

		quickNoteInput: quickNote,
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.timerTick()}
	if m.app.BackupInterval() > 0 {
		m.app.SaveBackup()
		m.backupActive = true
		cmds = append(cmds, m.backupTick())
	}
	return tea.Batch(cmds...)
}

// timerTick drives the engine once per wall-clock second. The loop runs
// regardless of timer state; the engine ignores ticks while idle.
func (m *Model) timerTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{} })
}

func (m *Model) backupTick() tea.Cmd {
	return tea.Tick(m.app.BackupInterval(), func(time.Time) tea.Msg { return backupTickMsg{} })
}

func (m *Model) showBanner(text string) tea.Cmd {
	m.banner = text
	return tea.Tick(bannerTimeout, func(time.Time) tea.Msg { return clearBannerMsg{} })
}

func (m *Model) sendChat(content string) tea.Cmd {
	return func() tea.Msg {
		err := m.app.SendMessage(context.Background(), content)
		return sendDoneMsg{err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatW, chatH := m.chatSize()
		if !m.ready {
			m.chatVP = viewport.New(chatW, chatH)
			m.ready = true
		} else {
			m.chatVP.Width = chatW
			m.chatVP.Height = chatH
		}
		m.md = NewMarkdownRenderer(chatW - 2)
		m.chatInput.SetWidth(chatW)
		m.refreshChat()
		return m, nil

	case timerTickMsg:
		m.app.TickSecond()
		return m, m.timerTick()

	case backupTickMsg:
		// A zero interval must stop the loop here: rescheduling with
		// tea.Tick(0) would refire immediately.
		if m.app.BackupInterval() <= 0 {
			m.backupActive = false
			return m, nil
		}
		m.app.SaveBackup()
		return m, m.backupTick()

	case clearBannerMsg:
		m.banner = ""
		return m, nil

	case sendDoneMsg:
		m.sending = false
		m.refreshChat()
		m.chatVP.GotoBottom()
		if msg.err != nil {
			return m, m.showBanner(app.ClassifyFailure(msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text-entry modes swallow everything except enter and esc.
	if m.addingStep {
		return m.handleNewStepKey(msg)
	}
	if m.editingKey {
		return m.handleKeyEntry(msg)
	}
	if m.editingPreset {
		return m.handlePresetKey(msg)
	}
	if m.editingNotes {
		return m.handleNotesKey(msg)
	}
	if m.editingTags {
		return m.handleTagsKey(msg)
	}
	if m.addingQuickNote {
		return m.handleQuickNoteKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "tab":
		m.setSection((m.section + 1) % sectionCount)
		return m, nil
	case "shift+tab":
		m.setSection((m.section + sectionCount - 1) % sectionCount)
		return m, nil
	}

	if m.section == sectionChat {
		return m.handleChatKey(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	}

	switch m.section {
	case sectionSteps:
		return m.handleStepsKey(msg)
	case sectionFocus:
		return m.handleFocusKey(msg)
	case sectionSettings:
		return m.handleSettingsKey(msg)
	}
	return m, nil
}

// quit commits any running session and takes a final backup before the
// program exits.
func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.app.PauseTimer()
	if m.app.BackupInterval() > 0 {
		m.app.SaveBackup()
	}
	return m, tea.Quit
}

func (m *Model) setSection(s section) {
	m.section = s
	if s == sectionChat {
		m.chatInput.Focus()
		m.refreshChat()
		m.chatVP.GotoBottom()
	} else {
		m.chatInput.Blur()
	}
}

func (m *Model) handleStepsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	steps := m.app.Ctrl.State().Steps
	switch msg.String() {
	case "up", "k":
		if m.stepCursor > 0 {
			m.stepCursor--
		}
	case "down", "j":
		if m.stepCursor < len(steps)-1 {
			m.stepCursor++
		}
	case "enter":
		if m.stepCursor < len(steps) {
			m.app.SelectStep(steps[m.stepCursor].ID)
		}
	case "n":
		m.addingStep = true
		m.newStepInput.SetValue("")
		m.newStepInput.Focus()
		return m, textinput.Blink
	case "d":
		if m.stepCursor < len(steps) {
			m.app.DeleteStep(steps[m.stepCursor].ID)
			if m.stepCursor > 0 {
				m.stepCursor--
			}
		}
	}
	return m, nil
}

func (m *Model) handleNewStepKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(m.newStepInput.Value())
		m.addingStep = false
		m.newStepInput.Blur()
		if title != "" {
			m.app.AddStep(title)
			m.stepCursor = 0
		}
		return m, nil
	case "esc":
		m.addingStep = false
		m.newStepInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.newStepInput, cmd = m.newStepInput.Update(msg)
	return m, cmd
}

func (m *Model) handleFocusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.app.StartTimer()
	case "p":
		m.app.PauseTimer()
	case "r":
		m.app.ResetTimer()
	case "t":
		m.editingPreset = true
		m.presetInput.SetValue("")
		m.presetInput.Focus()
		return m, textinput.Blink
	case "e":
		current := m.app.Ctrl.State().CurrentStep()
		if current == nil {
			return m, nil
		}
		m.editingNotes = true
		m.notesInput.SetValue(current.Notes)
		m.notesInput.Focus()
		return m, textarea.Blink
	case "g":
		current := m.app.Ctrl.State().CurrentStep()
		if current == nil {
			return m, nil
		}
		m.editingTags = true
		m.tagsInput.SetValue(strings.Join(current.Tags, ", "))
		m.tagsInput.Focus()
		return m, textinput.Blink
	case "o":
		if m.app.Ctrl.State().CurrentStep() == nil {
			return m, nil
		}
		m.addingQuickNote = true
		m.quickNoteInput.SetValue("")
		m.quickNoteInput.Focus()
		return m, textinput.Blink
	case "x":
		if current := m.app.Ctrl.State().CurrentStep(); current != nil {
			notes := m.app.Ctrl.QuickNotes(current.ID)
			if len(notes) > 0 {
				m.app.Ctrl.RemoveQuickNote(current.ID, len(notes)-1)
			}
		}
	}
	return m, nil
}

// handleNotesKey saves on esc; the textarea keeps enter for newlines.
func (m *Model) handleNotesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.editingNotes = false
		m.notesInput.Blur()
		m.app.Ctrl.UpdateNotes(m.notesInput.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.notesInput, cmd = m.notesInput.Update(msg)
	return m, cmd
}

func (m *Model) handleTagsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editingTags = false
		m.tagsInput.Blur()
		var tags []string
		for _, tag := range strings.Split(m.tagsInput.Value(), ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		m.app.Ctrl.UpdateTags(tags)
		return m, nil
	case "esc":
		m.editingTags = false
		m.tagsInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.tagsInput, cmd = m.tagsInput.Update(msg)
	return m, cmd
}

func (m *Model) handleQuickNoteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.addingQuickNote = false
		m.quickNoteInput.Blur()
		note := strings.TrimSpace(m.quickNoteInput.Value())
		if note != "" {
			if current := m.app.Ctrl.State().CurrentStep(); current != nil {
				m.app.Ctrl.AddQuickNote(current.ID, note)
			}
		}
		return m, nil
	case "esc":
		m.addingQuickNote = false
		m.quickNoteInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.quickNoteInput, cmd = m.quickNoteInput.Update(msg)
	return m, cmd
}

func (m *Model) handlePresetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editingPreset = false
		m.presetInput.Blur()
		var seconds int
		if _, err := fmt.Sscanf(strings.TrimSpace(m.presetInput.Value()), "%d", &seconds); err == nil {
			m.app.SetPreset(seconds)
		}
		return m, nil
	case "esc":
		m.editingPreset = false
		m.presetInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.presetInput, cmd = m.presetInput.Update(msg)
	return m, cmd
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setSection(sectionDashboard)
		return m, nil
	case "ctrl+l":
		m.app.Ctrl.ClearMessages()
		m.refreshChat()
		return m, m.showBanner("Conversation cleared.")
	case "up":
		m.chatVP.LineUp(1)
		return m, nil
	case "down":
		m.chatVP.LineDown(1)
		return m, nil
	case "enter":
		content := strings.TrimSpace(m.chatInput.Value())
		if content == "" {
			return m, nil
		}
		if m.sending {
			return m, m.showBanner("Still sending, please wait.")
		}
		if !m.app.HasAPIKey() {
			return m, m.showBanner("No API credential configured. See Settings.")
		}
		m.chatInput.SetValue("")
		m.sending = true
		// The optimistic user turn appears on the next refresh; the
		// send resolves on its own goroutine.
		return m, m.sendChat(content)
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "a":
		m.editingKey = true
		m.keyInput.SetValue("")
		m.keyInput.Focus()
		return m, textinput.Blink
	case "P":
		m.app.SetProfile(nextProfile(app.ParseProfile(m.app.Config.PromptProfile)))
	case "+":
		m.app.SetHistoryLimit(m.app.Config.HistoryLimit + 1)
	case "-":
		m.app.SetHistoryLimit(m.app.Config.HistoryLimit - 1)
	case "T":
		if ThemeName(m.app.Config.Theme) == ThemeMidnight {
			m.app.SetTheme(string(ThemePorcelain))
		} else {
			m.app.SetTheme(string(ThemeMidnight))
		}
		m.theme = NewTheme(ThemeName(m.app.Config.Theme))
	case "b":
		m.app.SetBackupInterval(nextBackupInterval(m.app.Config.BackupIntervalMinutes))
		if m.app.BackupInterval() > 0 && !m.backupActive {
			m.backupActive = true
			return m, m.backupTick()
		}
	case "e":
		return m, m.exportFile("learning-board.json", func() ([]byte, error) { return m.app.ExportJSON() })
	case "M":
		return m, m.exportFile("learning-board.md", func() ([]byte, error) { return []byte(m.app.ExportMarkdown()), nil })
	case "c":
		return m, m.exportFile("learning-board-chat.json", func() ([]byte, error) { return m.app.ExportChat() })
	}
	return m, nil
}

func (m *Model) handleKeyEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editingKey = false
		m.keyInput.Blur()
		m.app.SetAPIKey(m.keyInput.Value())
		return m, m.showBanner("Credential saved.")
	case "esc":
		m.editingKey = false
		m.keyInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m *Model) exportFile(name string, build func() ([]byte, error)) tea.Cmd {
	data, err := build()
	if err != nil {
		return m.showBanner("Export failed: " + err.Error())
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return m.showBanner("Export failed: " + err.Error())
	}
	return m.showBanner("Exported " + name)
}

func nextProfile(p app.PromptProfile) app.PromptProfile {
	switch p {
	case app.ProfileConcise:
		return app.ProfileDetailed
	case app.ProfileDetailed:
		return app.ProfileQuiz
	default:
		return app.ProfileConcise
	}
}

// nextBackupInterval cycles through off, 1, 5, 10, 30 minutes.
func nextBackupInterval(minutes int) int {
	steps := []int{0, 1, 5, 10, 30}
	for i, v := range steps {
		if minutes <= v {
			return steps[(i+1)%len(steps)]
		}
	}
	return 0
}
