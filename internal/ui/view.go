package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/card-smash/internal/protocol"
)

const barWidth = 20

// View 渲染界面
func (m *Model) View() string {
	var body string
	switch m.phase {
	case PhaseSetup:
		body = m.setupView()
	case PhaseConnecting:
		body = "⏳ 正在连接服务器..."
	case PhaseWaiting:
		body = m.waitingView()
	case PhasePlaying:
		body = m.playingView()
	case PhaseGameOver:
		body = m.gameOverView()
	case PhaseDisconnected:
		body = m.disconnectedView()
	}

	var sb strings.Builder
	sb.WriteString(titleStyle("🃏 Card Smash"))
	if m.lobbyID != "" {
		sb.WriteString(hintStyle.Render("  大厅 " + m.lobbyID))
	}
	sb.WriteString("\n\n")
	sb.WriteString(body)
	if m.err != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.err))
	}
	return docStyle.Render(sb.String())
}

func (m *Model) setupView() string {
	var sb strings.Builder
	sb.WriteString("大厅号\n")
	sb.WriteString(m.inputs[inputLobby].View())
	sb.WriteString("\n\n名字\n")
	sb.WriteString(m.inputs[inputName].View())
	sb.WriteString(promptStyle.Render(hintStyle.Render("tab 切换 • enter 确认 • esc 退出")))
	return sb.String()
}

func (m *Model) waitingView() string {
	var sb strings.Builder
	sb.WriteString(m.rosterView())
	sb.WriteString("\n")
	sb.WriteString(m.logView())
	sb.WriteString(promptStyle.Render(hintStyle.Render("s 开始游戏（至少 2 人）• q 离开")))
	return sb.String()
}

func (m *Model) playingView() string {
	s := m.state
	table := lipgloss.JoinVertical(lipgloss.Left,
		m.cardView(),
		fmt.Sprintf("桌面: %d 张", s.TableCount),
		m.countdownView(),
	)
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.rosterView(), "  ", table)

	var keys string
	switch {
	case s.MyTurn():
		keys = currentStyle.Render("轮到你了！space 出牌")
	case s.Turn != "":
		keys = hintStyle.Render("等待 " + s.Turn + " 出牌")
	}
	if s.CanSmash() {
		keys += hintStyle.Render("  • enter 拍桌")
	} else if s.Smashed {
		keys += hintStyle.Render("  • 已拍桌")
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, m.logView(), promptStyle.Render(keys))
}

func (m *Model) gameOverView() string {
	s := m.state
	msg := fmt.Sprintf("%s %s 获胜！", WinnerIcon, s.Winner)
	if s.Winner == s.Me {
		msg = WinnerIcon + " 你赢了！"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		currentStyle.Render(msg),
		m.logView(),
		promptStyle.Render(hintStyle.Render("enter 返回 • q 退出")),
	)
}

func (m *Model) disconnectedView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render("🔌 "+m.closeReason),
		promptStyle.Render(hintStyle.Render("enter 返回 • q 退出")),
	)
}

func (m *Model) rosterView() string {
	s := m.state
	if s == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("玩家 (%d)\n", len(s.Players)))
	for _, name := range s.Players {
		marker := "  "
		if name == s.Turn && s.Started {
			marker = TurnIcon
		}
		line := marker + " " + truncateName(name, 12)
		if name == s.Me {
			line += " " + MeIcon
		}
		if hint, ok := s.Hints[name]; ok {
			line += hintStyle.Render(" [" + hint + "]")
		}
		if name == s.Turn && s.Started {
			line = currentStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return boxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m *Model) cardView() string {
	p := m.state.LastCard
	if p == nil {
		return cardStyle.Render("  ?  ")
	}
	style := cardStyle
	if p.Card == p.CurrentMascy {
		style = matchStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		style.Render(symbol(p.Card)),
		fmt.Sprintf("目标: %s", symbol(p.CurrentMascy)),
		fmt.Sprintf("%s 剩余: %s", p.Name, hintText(p.Num)),
	)
}

func (m *Model) countdownView() string {
	if m.state.LastCard == nil || !m.timer.Running() {
		return ""
	}
	remaining := m.timer.Timeout.Seconds()
	return countdownBar(remaining, m.window.Seconds(), barWidth)
}

func (m *Model) logView() string {
	if m.state == nil || len(m.state.Log) == 0 {
		return ""
	}
	return boxStyle.Render(strings.Join(m.state.Log, "\n"))
}

func hintText(num string) string {
	if num == protocol.HiddenCount {
		return "很多"
	}
	return num
}
