package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/sound"
	"github.com/palemoky/card-smash/internal/transport"
)

// 界面阶段
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseConnecting
	PhaseWaiting
	PhasePlaying
	PhaseGameOver
	PhaseDisconnected
)

const (
	joinTimeout   = 10 * time.Second
	tickInterval  = 100 * time.Millisecond
	DefaultWindow = 2 * time.Second
)

// 输入框下标
const (
	inputLobby = iota
	inputName
)

// GameClient 界面依赖的客户端能力，*transport.Client 满足该接口
type GameClient interface {
	CreateLobby(ctx context.Context) (string, error)
	Join(ctx context.Context, lobbyID, name string) error
	Receive() (*protocol.Message, error)
	StartGame() error
	PlayCard() error
	Smash(timestamp float64) error
	Close()
	CloseStatus() (int, string)
}

// SoundPlayer 音效播放，*sound.Manager 满足该接口
type SoundPlayer interface {
	Play(e sound.Effect)
}

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg    *protocol.Message
	client GameClient
}

// JoinedMsg 成功加入大厅
type JoinedMsg struct {
	LobbyID string
	client  GameClient
}

// ConnectionErrorMsg 连接或加入失败
type ConnectionErrorMsg struct {
	Err    error
	client GameClient
}

// DisconnectedMsg 服务器关闭了连接
type DisconnectedMsg struct {
	Code   int
	Reason string
	client GameClient
}

// Model 卡牌拍桌客户端 model
type Model struct {
	newClient func() GameClient
	client    GameClient
	phase     Phase
	err       string

	inputs []textinput.Model
	focus  int

	lobbyID string
	state   *TableState

	window time.Duration
	timer  timer.Model
	now    func() time.Time
	sound  SoundPlayer

	closeReason string
	width       int
	height      int
}

// NewModel 创建连接 serverURL 的 model，window 为服务器的拍桌窗口（仅用于倒计时显示），sp 可为 nil
func NewModel(serverURL string, window time.Duration, sp SoundPlayer) *Model {
	m := newModel(func() GameClient { return transport.NewClient(serverURL) }, window)
	m.sound = sp
	return m
}

func newModel(newClient func() GameClient, window time.Duration) *Model {
	if window <= 0 {
		window = DefaultWindow
	}

	lobby := textinput.New()
	lobby.Placeholder = "大厅号（留空创建新大厅）"
	lobby.CharLimit = 16
	lobby.Width = 30
	lobby.Focus()

	name := textinput.New()
	name.Placeholder = "你的名字"
	name.CharLimit = 20
	name.Width = 30

	return &Model{
		newClient: newClient,
		phase:     PhaseSetup,
		inputs:    []textinput.Model{lobby, name},
		window:    window,
		now:       time.Now,
	}
}

// Init 初始化
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Phase 当前阶段
func (m *Model) Phase() Phase {
	return m.phase
}

// State 当前大厅状态，未加入时为 nil
func (m *Model) State() *TableState {
	return m.state
}

// Update 处理消息
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case JoinedMsg:
		if msg.client != m.client {
			return m, nil
		}
		m.lobbyID = msg.LobbyID
		m.phase = PhaseWaiting
		m.err = ""
		return m, listenForMessages(m.client)

	case ConnectionErrorMsg:
		if msg.client != m.client {
			return m, nil
		}
		m.phase = PhaseSetup
		m.err = describeError(msg.Err)
		m.client = nil
		return m, nil

	case DisconnectedMsg:
		if msg.client != m.client {
			return m, nil
		}
		m.phase = PhaseDisconnected
		m.closeReason = msg.Reason
		if m.closeReason == "" {
			m.closeReason = "连接已断开"
		}
		return m, nil

	case ServerMessage:
		if msg.client != m.client {
			return m, nil
		}
		cmd := m.handleServerMessage(msg.Msg)
		return m, tea.Batch(cmd, listenForMessages(m.client))

	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	}

	if m.phase == PhaseSetup {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleServerMessage(msg *protocol.Message) tea.Cmd {
	if m.state == nil {
		return nil
	}
	if err := m.state.Apply(msg, m.now()); err != nil {
		m.err = err.Error()
		return nil
	}
	if e, ok := sound.EffectFor(msg.Type); ok {
		m.play(e)
	}

	switch msg.Type {
	case protocol.EventGameStarted:
		m.phase = PhasePlaying
	case protocol.EventCardPlayed:
		m.timer = timer.NewWithInterval(m.window, tickInterval)
		return m.timer.Init()
	case protocol.EventPlayerWin:
		m.phase = PhaseGameOver
		return m.timer.Stop()
	}
	return nil
}

func (m *Model) play(e sound.Effect) {
	if m.sound != nil {
		m.sound.Play(e)
	}
}

// join 创建（可选）并加入大厅
func (m *Model) join(lobbyID, name string) tea.Cmd {
	c := m.newClient()
	m.client = c
	m.state = NewTableState(name)
	m.phase = PhaseConnecting
	m.err = ""

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), joinTimeout)
		defer cancel()

		if lobbyID == "" {
			id, err := c.CreateLobby(ctx)
			if err != nil {
				return ConnectionErrorMsg{Err: err, client: c}
			}
			lobbyID = id
		}
		if err := c.Join(ctx, lobbyID, name); err != nil {
			return ConnectionErrorMsg{Err: err, client: c}
		}
		return JoinedMsg{LobbyID: lobbyID, client: c}
	}
}

// leave 断开并回到设置界面
func (m *Model) leave() {
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
	m.state = nil
	m.lobbyID = ""
	m.closeReason = ""
	m.phase = PhaseSetup
}

// listenForMessages 监听服务器消息，消息带上来源客户端以丢弃旧连接的残留消息
func listenForMessages(c GameClient) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		msg, err := c.Receive()
		if err != nil {
			code, reason := c.CloseStatus()
			return DisconnectedMsg{Code: code, Reason: reason, client: c}
		}
		return ServerMessage{Msg: msg, client: c}
	}
}

func describeError(err error) string {
	var rejected *transport.RejectedError
	if errors.As(err, &rejected) {
		return "无法加入大厅: " + rejected.Reason
	}
	return "连接失败: " + err.Error()
}
