package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/card-smash/internal/sound"
)

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.leave()
		return tea.Quit
	}

	switch m.phase {
	case PhaseSetup:
		return m.handleSetupKey(msg)
	case PhaseWaiting:
		return m.handleWaitingKey(msg)
	case PhasePlaying:
		return m.handlePlayingKey(msg)
	case PhaseGameOver, PhaseDisconnected:
		switch msg.String() {
		case "enter":
			m.leave()
			return m.focusInput(inputLobby)
		case "q", "esc":
			m.leave()
			return tea.Quit
		}
	}
	return nil
}

func (m *Model) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m.focusInput((m.focus + 1) % len(m.inputs))
	case tea.KeyEnter:
		if m.focus == inputLobby {
			return m.focusInput(inputName)
		}
		name := strings.TrimSpace(m.inputs[inputName].Value())
		if name == "" {
			m.err = "请输入名字"
			return nil
		}
		lobbyID := strings.TrimSpace(m.inputs[inputLobby].Value())
		return m.join(lobbyID, name)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) handleWaitingKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "s":
		if err := m.client.StartGame(); err != nil {
			m.err = err.Error()
		}
	case "q", "esc":
		m.leave()
		return m.focusInput(inputLobby)
	}
	return nil
}

func (m *Model) handlePlayingKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case " ", "space":
		if !m.state.MyTurn() {
			return nil
		}
		if err := m.client.PlayCard(); err != nil {
			m.err = err.Error()
		}
	case "enter":
		if !m.state.CanSmash() {
			return nil
		}
		m.state.Smashed = true
		m.play(sound.EffectSmash)
		if err := m.client.Smash(m.state.ReactionTime(m.now())); err != nil {
			m.err = err.Error()
		}
	case "q", "esc":
		m.leave()
		return m.focusInput(inputLobby)
	}
	return nil
}

func (m *Model) focusInput(i int) tea.Cmd {
	m.focus = i
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	cmd := m.inputs[i].Focus()
	return tea.Batch(cmd, textinput.Blink)
}
