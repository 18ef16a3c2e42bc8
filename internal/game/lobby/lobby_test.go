package lobby

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/card-smash/internal/apperrors"
	"github.com/palemoky/card-smash/internal/game/card"
	"github.com/palemoky/card-smash/internal/protocol"
	"github.com/palemoky/card-smash/internal/testutil"
)

// newTestLobby 创建大厅并按顺序让 names 入座
func newTestLobby(t *testing.T, names ...string) (*Lobby, []*testutil.SimpleClient, *testutil.ManualScheduler) {
	t.Helper()

	sched := &testutil.ManualScheduler{}
	l := New("Brave-Quiet-Otter-0042", Options{
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Schedule: sched.Schedule,
	})

	clients := make([]*testutil.SimpleClient, len(names))
	for i, name := range names {
		clients[i] = testutil.NewSimpleClient(fmt.Sprintf("c%d", i))
		require.NoError(t, l.Join(clients[i], name))
	}
	return l, clients, sched
}

// setTurn 直接把大厅置于 idx 号座位出牌阶段
func setTurn(l *Lobby, idx int, target card.Card, hands ...card.Hand) {
	for i, h := range hands {
		l.players[i].Hand = h
	}
	l.phase = PhaseCard
	l.current = idx
	l.target = target
}

func resetAll(clients []*testutil.SimpleClient) {
	for _, c := range clients {
		c.Reset()
	}
}

func handSizes(l *Lobby) []int {
	sizes := make([]int, len(l.players))
	for i, p := range l.players {
		sizes[i] = p.Hand.Len()
	}
	return sizes
}

func TestJoin_RosterAndJoined(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "Alice", "Bob", "Carol")

	var roster []string
	require.True(t, clients[2].LastInfo(protocol.EventPlayerRoster, &roster))
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, roster)
	assert.Equal(t, 0, clients[2].Count(protocol.EventPlayerJoined))

	// Alice 收到 Bob、Carol 两条加入通知，名单只在自己加入时收到一次
	assert.Equal(t, []protocol.EventType{
		protocol.EventPlayerRoster,
		protocol.EventPlayerJoined,
		protocol.EventPlayerJoined,
	}, clients[0].Events())

	var joined string
	require.True(t, clients[1].LastInfo(protocol.EventPlayerJoined, &joined))
	assert.Equal(t, "Carol", joined)

	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, l.PlayerNames())
	assert.Equal(t, PhaseJoining, l.Phase())
}

func TestJoin_SameConnectionTwice(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "Alice")

	require.NoError(t, l.Join(clients[0], "Alice"))
	require.NoError(t, l.Join(clients[0], "Other"))
	assert.Equal(t, 1, l.Len())
}

func TestJoin_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("name taken", func(t *testing.T) {
		t.Parallel()
		l, _, _ := newTestLobby(t, "Alice")
		assert.Equal(t, apperrors.ErrNameTaken, l.CheckJoinable("Alice"))
		assert.Equal(t, apperrors.ErrNameTaken, l.Join(testutil.NewSimpleClient("x"), "Alice"))
		// 大小写敏感
		assert.NoError(t, l.CheckJoinable("alice"))
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		l, _, _ := newTestLobby(t)
		assert.Equal(t, apperrors.ErrInvalidName, l.CheckJoinable("  "))
		assert.Equal(t, apperrors.ErrInvalidName, l.Join(testutil.NewSimpleClient("x"), ""))
		assert.Equal(t, 0, l.Len())
	})

	t.Run("full regardless of name", func(t *testing.T) {
		t.Parallel()
		names := make([]string, DefaultMaxPlayers)
		for i := range names {
			names[i] = fmt.Sprintf("P%d", i)
		}
		l, _, _ := newTestLobby(t, names...)

		for _, name := range []string{"New", "P0", ""} {
			assert.Equal(t, apperrors.ErrLobbyFull, l.CheckJoinable(name))
			assert.Equal(t, apperrors.ErrLobbyFull, l.Join(testutil.NewSimpleClient("x"), name))
		}
		assert.Equal(t, DefaultMaxPlayers, l.Len())
	})

	t.Run("already started", func(t *testing.T) {
		t.Parallel()
		l, clients, _ := newTestLobby(t, "Alice", "Bob")
		l.Start(clients[0])
		require.True(t, l.Started())

		assert.Equal(t, apperrors.ErrLobbyStarted, l.CheckJoinable("Carol"))
		assert.Equal(t, apperrors.ErrLobbyStarted, l.Join(testutil.NewSimpleClient("x"), "Carol"))
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()
		l, _, _ := newTestLobby(t, "Alice")
		l.Close()
		assert.Equal(t, apperrors.ErrLobbyNotFound, l.CheckJoinable("Bob"))
		assert.Equal(t, apperrors.ErrLobbyNotFound, l.Join(testutil.NewSimpleClient("x"), "Bob"))
	})
}

func TestStart_RequiresTwoSeatedPlayers(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "Alice")
	l.Start(clients[0])
	assert.Equal(t, PhaseJoining, l.Phase())
	assert.Equal(t, 0, clients[0].Count(protocol.EventGameStarted))

	require.NoError(t, l.Join(testutil.NewSimpleClient("b"), "Bob"))
	l.Start(testutil.NewSimpleClient("stranger"))
	assert.Equal(t, PhaseJoining, l.Phase())
}

func TestStart_DealsAndAnnouncesTurn(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "Alice", "Bob", "Carol")
	resetAll(clients)

	l.Start(clients[1])

	assert.Equal(t, PhaseCard, l.Phase())
	assert.Equal(t, []int{12, 12, 12}, handSizes(l))
	assert.Equal(t, card.Taco, l.target)

	current := l.players[l.current].Name
	for _, c := range clients {
		assert.Equal(t, []protocol.EventType{protocol.EventGameStarted, protocol.EventPlayerTurn}, c.Events())
		var turn string
		require.True(t, c.LastInfo(protocol.EventPlayerTurn, &turn))
		assert.Equal(t, current, turn)
	}

	// 重复开局被忽略
	resetAll(clients)
	l.Start(clients[0])
	assert.Empty(t, clients[0].Events())
}

func TestPlayCard_OnlyCurrentPlayer(t *testing.T) {
	t.Parallel()

	l, clients, sched := newTestLobby(t, "Alice", "Bob", "Carol")
	hand := make(card.Hand, 12)
	for i := range hand {
		hand[i] = card.Cheese
	}
	hand[0] = card.Goat
	setTurn(l, 1, card.Cat, card.Hand{card.Taco}, hand, card.Hand{card.Pizza})
	resetAll(clients)

	l.PlayCard(clients[0])
	l.PlayCard(clients[2])
	assert.Empty(t, clients[0].Events())
	assert.Equal(t, 0, sched.Pending())

	l.PlayCard(clients[1])

	var played protocol.CardPlayedPayload
	for _, c := range clients {
		require.True(t, c.LastInfo(protocol.EventCardPlayed, &played))
	}
	assert.Equal(t, protocol.CardPlayedPayload{
		Name:         "Bob",
		Card:         int(card.Goat),
		CurrentMascy: int(card.Cat),
		Num:          protocol.HiddenCount,
	}, played)

	assert.Equal(t, PhaseSmash, l.Phase())
	assert.Equal(t, 11, l.players[1].Hand.Len())
	assert.Equal(t, []card.Card{card.Goat}, l.table)
	assert.Equal(t, []time.Duration{DefaultSmashWindow}, sched.Delays())

	// 拍桌窗口内再出牌无效
	l.PlayCard(clients[1])
	assert.Equal(t, 1, clients[0].Count(protocol.EventCardPlayed))
}

func TestPlayCard_RemainingHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size int
		want string
	}{
		{size: 1, want: "0"},
		{size: 3, want: "2"},
		{size: 4, want: "3"},
		{size: 5, want: protocol.HiddenCount},
		{size: 20, want: protocol.HiddenCount},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d cards", tt.size), func(t *testing.T) {
			t.Parallel()

			l, clients, _ := newTestLobby(t, "Alice", "Bob")
			setTurn(l, 0, card.Taco, make(card.Hand, tt.size), card.Hand{card.Cat})

			l.PlayCard(clients[0])

			var played protocol.CardPlayedPayload
			require.True(t, clients[1].LastInfo(protocol.EventCardPlayed, &played))
			assert.Equal(t, tt.want, played.Num)
		})
	}
}

func TestSmash_FirstReactionOnly(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "Alice", "Bob")
	setTurn(l, 0, card.Taco, card.Hand{card.Cat, card.Cat}, card.Hand{card.Cat})

	// 出牌阶段拍桌无效
	l.Smash(clients[1], 0.5)
	assert.False(t, l.players[1].HasReacted())

	l.PlayCard(clients[0])
	l.Smash(clients[1], 1.0)
	l.Smash(clients[1], 2.0)
	l.Smash(clients[0], -3)
	l.Smash(testutil.NewSimpleClient("stranger"), 1.0)

	assert.Equal(t, 1.0, l.players[1].SmashTime)
	assert.False(t, l.players[0].HasReacted())
}

func TestResolveRound_CorrectNonReactorsTakePile(t *testing.T) {
	t.Parallel()

	l, clients, sched := newTestLobby(t, "A", "B", "C")
	setTurn(l, 0, card.Goat,
		card.Hand{card.Goat, card.Taco},
		card.Hand{card.Cat},
		card.Hand{card.Pizza},
	)
	resetAll(clients)

	l.PlayCard(clients[0])
	l.Smash(clients[0], 1.5)
	require.True(t, sched.RunNext())

	var takers []string
	require.True(t, clients[0].LastInfo(protocol.EventCardsAwarded, &takers))
	assert.Equal(t, []string{"B", "C"}, takers)
	assert.Equal(t, []int{1, 2, 2}, handSizes(l))
	assert.Empty(t, l.table)
	assert.False(t, l.players[0].HasReacted())

	var turn string
	require.True(t, clients[2].LastInfo(protocol.EventPlayerTurn, &turn))
	assert.Equal(t, "B", turn)
	assert.Equal(t, card.Cheese, l.target)
	assert.Equal(t, PhaseCard, l.Phase())
}

func TestResolveRound_SlowestTakesPile(t *testing.T) {
	t.Parallel()

	l, clients, sched := newTestLobby(t, "A", "B", "C")
	setTurn(l, 0, card.Goat,
		card.Hand{card.Goat, card.Taco},
		card.Hand{card.Cat},
		card.Hand{card.Pizza},
	)

	l.PlayCard(clients[0])
	l.Smash(clients[0], 1.0)
	l.Smash(clients[1], 2.0)
	l.Smash(clients[2], 1.5)
	require.True(t, sched.RunNext())

	var takers []string
	require.True(t, clients[0].LastInfo(protocol.EventCardsAwarded, &takers))
	assert.Equal(t, []string{"B"}, takers)
	assert.Equal(t, []int{1, 2, 1}, handSizes(l))
}

func TestResolveRound_WrongSmash(t *testing.T) {
	t.Parallel()

	l, clients, sched := newTestLobby(t, "A", "B", "C")
	setTurn(l, 0, card.Cheese,
		card.Hand{card.Cat, card.Taco},
		card.Hand{card.Cat},
		card.Hand{card.Pizza},
	)

	l.PlayCard(clients[0])
	l.Smash(clients[0], 0.9)
	require.True(t, sched.RunNext())

	var takers []string
	require.True(t, clients[1].LastInfo(protocol.EventCardsAwarded, &takers))
	assert.Equal(t, []string{"A"}, takers)
	assert.Equal(t, []int{2, 1, 1}, handSizes(l))
	assert.Empty(t, l.table)
}

func TestResolveRound_NobodyReactsToWrongCard(t *testing.T) {
	t.Parallel()

	l, clients, sched := newTestLobby(t, "A", "B")
	setTurn(l, 0, card.Cheese, card.Hand{card.Cat}, card.Hand{card.Pizza})

	l.PlayCard(clients[0])
	require.True(t, sched.RunNext())

	// 没人收牌：牌堆保留，A 手牌空但不算获胜，轮到 B
	assert.Equal(t, 0, clients[0].Count(protocol.EventCardsAwarded))
	assert.Equal(t, 0, clients[0].Count(protocol.EventPlayerWin))
	assert.Equal(t, []card.Card{card.Cat}, l.table)

	var turn string
	require.True(t, clients[0].LastInfo(protocol.EventPlayerTurn, &turn))
	assert.Equal(t, "B", turn)
	assert.False(t, l.Finished())
}

func TestResolveRound_WinIsTerminal(t *testing.T) {
	t.Parallel()

	sched := &testutil.ManualScheduler{}
	var (
		winners []string
		seated  []string
	)
	l := New("Lucky-Odd-Yak-0007", Options{
		Rand:     rand.New(rand.NewPCG(3, 4)),
		Schedule: sched.Schedule,
		OnWin: func(lobbyID, winner string, players []string) {
			assert.Equal(t, "Lucky-Odd-Yak-0007", lobbyID)
			winners = append(winners, winner)
			seated = players
		},
	})
	a, b := testutil.NewSimpleClient("a"), testutil.NewSimpleClient("b")
	require.NoError(t, l.Join(a, "A"))
	require.NoError(t, l.Join(b, "B"))

	setTurn(l, 0, card.Goat, card.Hand{card.Goat}, card.Hand{card.Cat})
	a.Reset()
	b.Reset()

	l.PlayCard(a)
	l.Smash(a, 0.3)
	require.True(t, sched.RunNext())

	assert.Equal(t, []protocol.EventType{
		protocol.EventCardPlayed,
		protocol.EventCardsAwarded,
		protocol.EventPlayerWin,
	}, b.Events())

	var winner string
	require.True(t, b.LastInfo(protocol.EventPlayerWin, &winner))
	assert.Equal(t, "A", winner)
	assert.Equal(t, []string{"A"}, winners)
	assert.Equal(t, []string{"A", "B"}, seated)
	assert.True(t, l.Finished())
	assert.Equal(t, PhaseSmash, l.Phase())

	// 结束后的请求全部被忽略
	l.PlayCard(b)
	l.Smash(b, 1)
	l.resolveRound(l.round)
	assert.Equal(t, 1, b.Count(protocol.EventPlayerWin))
	assert.Equal(t, 0, b.Count(protocol.EventPlayerTurn))
	assert.Equal(t, 0, sched.Pending())
}

func TestResolveRound_StaleTimer(t *testing.T) {
	t.Parallel()

	t.Run("closed lobby", func(t *testing.T) {
		t.Parallel()
		l, clients, sched := newTestLobby(t, "A", "B")
		setTurn(l, 0, card.Taco, card.Hand{card.Taco, card.Cat}, card.Hand{card.Cat})

		l.PlayCard(clients[0])
		l.Close()
		clients[1].Reset()
		require.True(t, sched.RunNext())

		assert.Empty(t, clients[1].Events())
		assert.Equal(t, PhaseSmash, l.Phase())
	})

	t.Run("old round", func(t *testing.T) {
		t.Parallel()
		l, clients, _ := newTestLobby(t, "A", "B")
		setTurn(l, 0, card.Taco, card.Hand{card.Taco, card.Cat}, card.Hand{card.Cat})

		l.PlayCard(clients[0])
		clients[1].Reset()
		l.resolveRound(l.round - 1)

		assert.Empty(t, clients[1].Events())
		assert.Equal(t, []card.Card{card.Taco}, l.table)
	})
}

func TestAdvanceTurn_SkipsEmptyHands(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "A", "B", "C", "D")
	setTurn(l, 3, card.Taco, nil, nil, card.Hand{card.Cat}, nil)

	l.advanceTurn()

	assert.Equal(t, 2, l.current)
	assert.Equal(t, card.Cat, l.target)
	assert.Equal(t, 0, clients[0].Count(protocol.EventReshuffle))

	var turn string
	require.True(t, clients[0].LastInfo(protocol.EventPlayerTurn, &turn))
	assert.Equal(t, "C", turn)
}

func TestAdvanceTurn_ReshufflesWhenEveryoneIsEmpty(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "A", "B", "C")
	setTurn(l, 0, card.Pizza, nil, nil, nil)
	resetAll(clients)

	l.advanceTurn()

	assert.Equal(t, []protocol.EventType{protocol.EventReshuffle, protocol.EventPlayerTurn}, clients[1].Events())
	assert.Equal(t, []int{12, 12, 12}, handSizes(l))
	assert.Equal(t, card.Taco, l.target)
	assert.Equal(t, PhaseCard, l.Phase())
	assert.False(t, l.players[l.current].Hand.IsEmpty())
}

func TestLeave_KeepsCurrentPlayer(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "A", "B", "C")
	l.Start(clients[0])
	l.current = 2
	resetAll(clients)

	res := l.Leave(clients[1])

	assert.True(t, res.Removed)
	assert.Equal(t, "B", res.Name)
	assert.Equal(t, 2, res.Remaining)
	assert.True(t, res.Started)
	assert.Nil(t, res.Last)
	assert.Equal(t, "C", l.players[l.current].Name)
	assert.Equal(t, 0, clients[0].Count(protocol.EventPlayerTurn))

	var left string
	require.True(t, clients[0].LastInfo(protocol.EventPlayerLeft, &left))
	assert.Equal(t, "B", left)
	assert.Empty(t, clients[1].Events())

	// 重复离开无效
	assert.False(t, l.Leave(clients[1]).Removed)
}

func TestLeave_CurrentPlayerPassesTurn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current int
		next    string
	}{
		{name: "middle seat", current: 1, next: "C"},
		{name: "last seat wraps", current: 2, next: "A"},
		{name: "first seat", current: 0, next: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, clients, _ := newTestLobby(t, "A", "B", "C")
			setTurn(l, tt.current, card.Taco,
				card.Hand{card.Cat}, card.Hand{card.Cat}, card.Hand{card.Cat})
			resetAll(clients)

			l.Leave(clients[tt.current])

			assert.Equal(t, tt.next, l.players[l.current].Name)
			var turn string
			for i, c := range clients {
				if i == tt.current {
					continue
				}
				require.True(t, c.LastInfo(protocol.EventPlayerTurn, &turn))
				assert.Equal(t, tt.next, turn)
			}
		})
	}
}

func TestLeave_LastPlayerReported(t *testing.T) {
	t.Parallel()

	l, clients, _ := newTestLobby(t, "A", "B")
	res := l.Leave(clients[0])
	assert.Same(t, clients[1], res.Last)
	assert.False(t, res.Started)

	res = l.Leave(clients[1])
	assert.Equal(t, 0, res.Remaining)
	assert.Nil(t, res.Last)
}

func TestCardConservation(t *testing.T) {
	t.Parallel()

	l, clients, sched := newTestLobby(t, "A", "B", "C")
	l.Start(clients[0])

	total := func() int {
		sum := len(l.table)
		for _, p := range l.players {
			sum += p.Hand.Len()
		}
		return sum
	}
	baseline := total()
	require.Equal(t, 36, baseline)
	reshuffles := 0

	for round := 0; round < 300 && !l.Finished(); round++ {
		require.Equal(t, PhaseCard, l.Phase())
		cur := l.players[l.current]
		require.False(t, cur.Hand.IsEmpty(), "turn landed on an empty hand")

		l.PlayCard(clients[l.current])

		// 只在图案正确时全员拍桌：收牌者始终只有一人
		if l.table[len(l.table)-1] == l.target {
			for i, c := range clients {
				l.Smash(c, float64(i+1))
			}
		}
		require.True(t, sched.RunNext())

		if n := clients[0].Count(protocol.EventReshuffle); n != reshuffles {
			reshuffles = n
			baseline = total()
			continue
		}
		assert.Equal(t, baseline, total())
	}
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLobby(t, "A", "B")
	setTurn(l, 1, card.Cheese, card.Hand{card.Cat}, card.Hand{card.Taco, card.Goat})
	l.table = []card.Card{card.Pizza}

	data := l.Snapshot()
	assert.Equal(t, "Brave-Quiet-Otter-0042", data.ID)
	assert.Equal(t, int(PhaseCard), data.Phase)
	assert.Equal(t, 1, data.TableSize)
	assert.Equal(t, 1, data.CurrentPlayer)
	assert.Equal(t, int(card.Cheese), data.Target)
	require.Len(t, data.Players, 2)
	assert.Equal(t, "B", data.Players[1].Name)
	assert.Equal(t, 2, data.Players[1].Cards)
}

func TestLeave_StartThresholdDoesNotStallGame(t *testing.T) {
	t.Parallel()

	sched := &testutil.ManualScheduler{}
	l := New("Brave-Quiet-Otter-0043", Options{
		MinPlayers: 3,
		Rand:       rand.New(rand.NewPCG(1, 2)),
		Schedule:   sched.Schedule,
	})
	clients := make([]*testutil.SimpleClient, 3)
	for i, name := range []string{"A", "B", "C"} {
		clients[i] = testutil.NewSimpleClient(name)
		require.NoError(t, l.Join(clients[i], name))
	}
	l.Start(clients[0])
	require.True(t, l.Started())

	l.mu.Lock()
	setTurn(l, 0, card.Taco, card.Hand{card.Cat}, card.Hand{card.Goat}, card.Hand{card.Cheese})
	l.mu.Unlock()
	resetAll(clients)

	// 出牌者离开后剩两人，低于开局门槛但游戏继续
	l.Leave(clients[0])

	var turn string
	require.True(t, clients[1].LastInfo(protocol.EventPlayerTurn, &turn))
	assert.Equal(t, "B", turn)
	assert.Equal(t, PhaseCard, l.Phase())
}

func TestCloseIfEmpty(t *testing.T) {
	t.Parallel()

	empty, _, _ := newTestLobby(t)
	require.True(t, empty.closeIfEmpty())
	assert.False(t, empty.closeIfEmpty(), "already closed")
	assert.Equal(t, apperrors.ErrLobbyNotFound, empty.Join(testutil.NewSimpleClient("x"), "X"))
	assert.Equal(t, 0, empty.Len())

	seated, _, _ := newTestLobby(t, "A")
	assert.False(t, seated.closeIfEmpty())
	assert.NoError(t, seated.Join(testutil.NewSimpleClient("y"), "B"))
}
