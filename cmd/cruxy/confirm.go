package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type confirmResult int

const (
	confirmNo confirmResult = iota
	confirmYes
	confirmTimeout
)

type tickMsg time.Time

// confirmModel is the y/n prompt shown under the plan preview, counting down
// the confirmation window.
type confirmModel struct {
	preview   string
	remaining time.Duration
	result    confirmResult
}

func (m confirmModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.result = confirmYes
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.result = confirmNo
			return m, tea.Quit
		}
	case tickMsg:
		m.remaining -= time.Second
		if m.remaining <= 0 {
			m.result = confirmTimeout
			return m, tea.Quit
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m confirmModel) View() string {
	return fmt.Sprintf("%s\n%s\n",
		m.preview,
		sectionStyle.Render(fmt.Sprintf("Apply this plan? [y/N] (expires in %ds)", int(m.remaining.Seconds()))))
}

// promptConfirm runs the interactive prompt and reports the user's decision.
func promptConfirm(preview string, window time.Duration) (confirmResult, error) {
	p := tea.NewProgram(confirmModel{preview: preview, remaining: window})
	out, err := p.Run()
	if err != nil {
		return confirmNo, err
	}
	return out.(confirmModel).result, nil
}
