package tui

import (
	"fmt"
	"sort"
	"strings"

	"studyboard/internal/app"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) chatSize() (int, int) {
	w := m.width - 4
	h := m.height - 10
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	return w, h
}

func formatClock(seconds int) string {
	h := seconds / 3600
	mi := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, mi, s)
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewTopBar())
	b.WriteString("\n")
	if m.banner != "" {
		b.WriteString(m.theme.ErrorBanner.Render(m.banner))
		b.WriteString("\n")
	}

	switch m.section {
	case sectionDashboard:
		b.WriteString(m.viewDashboard())
	case sectionSteps:
		b.WriteString(m.viewSteps())
	case sectionFocus:
		b.WriteString(m.viewFocus())
	case sectionChat:
		b.WriteString(m.viewChat())
	case sectionSettings:
		b.WriteString(m.viewSettings())
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m *Model) viewTopBar() string {
	tabs := make([]string, 0, sectionCount)
	for i, label := range sectionLabels {
		if section(i) == m.section {
			tabs = append(tabs, m.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(label))
		}
	}
	title := m.theme.TopBarTitle.Render("studyboard")
	return m.theme.TopBar.Render(title + "  " + strings.Join(tabs, ""))
}

func (m *Model) viewFooter() string {
	hint := "tab: section"
	switch m.section {
	case sectionSteps:
		hint = "↑/↓ move · enter focus · n new · d delete · tab section · q quit"
	case sectionFocus:
		hint = "s start · p pause (commits) · r reset · t preset · e notes · g tags · o/x quick note · q quit"
	case sectionChat:
		hint = "enter send · ↑/↓ scroll · ctrl+l clear · esc back · tab section"
	case sectionSettings:
		hint = "a credential · P profile · +/- history · T theme · b backup · e/M/c export · q quit"
	default:
		hint = "tab: section · q quit"
	}
	return m.theme.Footer.Render(hint)
}

func (m *Model) viewDashboard() string {
	state := m.app.Ctrl.State()
	current := state.CurrentStep()
	currentTitle := "—"
	if current != nil {
		currentTitle = current.Title
	}

	lines := []string{
		m.theme.PaneTitle.Render("Overview"),
		"",
		fmt.Sprintf("Steps:           %d", len(state.Steps)),
		fmt.Sprintf("Focused step:    %s", currentTitle),
		fmt.Sprintf("Total time:      %s", formatClock(state.TotalTimeSeconds)),
		fmt.Sprintf("Sessions:        %d", app.SessionCount(state)),
		fmt.Sprintf("Questions asked: %d", state.QuestionsAsked),
	}

	rollup := app.TagTimeRollup(state)
	if len(rollup) > 0 {
		lines = append(lines, "", m.theme.PaneTitle.Render("Time by tag"))
		tags := make([]string, 0, len(rollup))
		for tag := range rollup {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool { return rollup[tags[i]] > rollup[tags[j]] })
		for _, tag := range tags {
			lines = append(lines, fmt.Sprintf("%-16s %s", tag, formatClock(rollup[tag])))
		}
	}

	return m.theme.Pane.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewSteps() string {
	state := m.app.Ctrl.State()
	lines := []string{m.theme.PaneTitle.Render("Learning steps"), ""}
	if len(state.Steps) == 0 {
		lines = append(lines, m.theme.Muted.Render("No steps yet. Press n to add one."))
	}
	for i, step := range state.Steps {
		cursor := "  "
		if i == m.stepCursor {
			cursor = "> "
		}
		marker := " "
		style := m.theme.StepItem
		if state.CurrentStepID != nil && *state.CurrentStepID == step.ID {
			marker = "●"
			style = m.theme.StepActive
		}
		label := fmt.Sprintf("%s%s %s  %s", cursor, marker, step.Title, m.theme.Muted.Render(formatClock(step.TimeSpentInSeconds)))
		if len(step.Tags) > 0 {
			label += "  " + m.theme.Muted.Render("["+strings.Join(step.Tags, ", ")+"]")
		}
		lines = append(lines, style.Render(label))
	}
	if m.addingStep {
		lines = append(lines, "", m.theme.InputBox.Render(m.newStepInput.View()))
	}
	return m.theme.Pane.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewFocus() string {
	state := m.app.Ctrl.State()
	current := state.CurrentStep()

	var lines []string
	if current == nil {
		lines = append(lines, m.theme.Muted.Render("No step focused. Pick one in Steps."))
	} else {
		lines = append(lines,
			m.theme.PaneTitle.Render(current.Title),
			"",
			m.theme.TimerBig.Render(formatClock(m.app.Engine.Elapsed())),
		)
		stateLabel := "paused"
		if m.app.Engine.Running() {
			stateLabel = "running"
		}
		lines = append(lines,
			m.theme.TimerState.Render(stateLabel),
			"",
			fmt.Sprintf("Committed: %s over %d sessions", formatClock(current.TimeSpentInSeconds), len(current.Sessions)),
		)
		if len(current.Tags) > 0 {
			lines = append(lines, m.theme.Muted.Render("["+strings.Join(current.Tags, ", ")+"]"))
		}
		if current.Notes != "" {
			lines = append(lines, "", m.theme.PaneTitle.Render("Notes"), current.Notes)
		}
		notes := m.app.Ctrl.QuickNotes(current.ID)
		if len(notes) > 0 {
			lines = append(lines, "", m.theme.PaneTitle.Render("Quick notes"))
			for _, note := range notes {
				lines = append(lines, "· "+note)
			}
		}
	}
	switch {
	case m.editingPreset:
		lines = append(lines, "", m.theme.InputBox.Render(m.presetInput.View()))
	case m.editingNotes:
		lines = append(lines, "", m.theme.InputBox.Render(m.notesInput.View()))
	case m.editingTags:
		lines = append(lines, "", m.theme.InputBox.Render(m.tagsInput.View()))
	case m.addingQuickNote:
		lines = append(lines, "", m.theme.InputBox.Render(m.quickNoteInput.View()))
	}
	return m.theme.Pane.Render(strings.Join(lines, "\n"))
}

func (m *Model) refreshChat() {
	if !m.ready {
		return
	}
	messages := m.app.Ctrl.Messages()
	var b strings.Builder
	for _, message := range messages {
		switch {
		case message.IsError:
			b.WriteString(m.theme.RoleErr.Render("error") + "  " + message.Content)
		case message.Role == app.RoleUser:
			b.WriteString(m.theme.RoleYou.Render("you") + "  " + message.Content)
		default:
			b.WriteString(m.theme.RoleAI.Render("assistant") + "\n" + m.md.Render(message.Content))
		}
		b.WriteString("\n\n")
	}
	m.chatVP.SetContent(b.String())
}

func (m *Model) viewChat() string {
	status := ""
	if m.sending {
		status = m.theme.Muted.Render("sending…")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Pane.Render(m.chatVP.View()),
		status,
		m.theme.InputBox.Render(m.chatInput.View()),
	)
}

func (m *Model) viewSettings() string {
	cfg := m.app.Config
	credential := "not set"
	if m.app.HasAPIKey() {
		credential = "set"
	}
	backup := "off"
	if cfg.BackupIntervalMinutes > 0 {
		backup = fmt.Sprintf("every %d min", cfg.BackupIntervalMinutes)
	}
	lines := []string{
		m.theme.PaneTitle.Render("Settings"),
		"",
		fmt.Sprintf("API credential:  %s", credential),
		fmt.Sprintf("Prompt profile:  %s", cfg.PromptProfile),
		fmt.Sprintf("History window:  %d turns", cfg.HistoryLimit),
		fmt.Sprintf("Theme:           %s", cfg.Theme),
		fmt.Sprintf("Auto-backup:     %s", backup),
	}
	if m.editingKey {
		lines = append(lines, "", m.theme.InputBox.Render(m.keyInput.View()))
	}
	return m.theme.Pane.Render(strings.Join(lines, "\n"))
}
