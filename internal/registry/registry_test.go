package registry

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokey/internal/game"
	"github.com/lox/pokey/internal/gameid"
)

// recorder collects published events per client
type recorder struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newRecorder() *recorder {
	return &recorder{events: make(map[string][]Event)}
}

func (r *recorder) Publish(clientID string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[clientID] = append(r.events[clientID], event)
}

func (r *recorder) take(clientID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events[clientID]
	delete(r.events, clientID)
	return events
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[string][]Event)
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.EventType()
	}
	return out
}

func lastState(t *testing.T, events []Event) game.Snapshot {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if ev, ok := events[i].(StateEvent); ok {
			return ev.Snapshot
		}
	}
	t.Fatal("no state event published")
	return game.Snapshot{}
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *recorder) {
	t.Helper()
	rec := newRecorder()
	reg := New(rec, testLogger(), append([]Option{WithSeed(42)}, opts...)...)
	t.Cleanup(reg.Close)
	return reg, rec
}

func seatPtr(i int) *int { return &i }

// countingReader tracks how many random bytes the id generator consumed
type countingReader struct {
	mu sync.Mutex
	n  int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range p {
		p[i] = byte(c.n + i)
	}
	c.n += len(p)
	return len(p), nil
}

func TestTableIDsComeFromGenerator(t *testing.T) {
	src := &countingReader{}
	reg, _ := newTestRegistry(t, WithIDGenerator(gameid.NewGenerator(src)))

	table := reg.CreateTable("Main")
	require.NoError(t, gameid.Validate(table.TableID))
	assert.Positive(t, src.n)
}

func TestCreateAndListTables(t *testing.T) {
	reg, _ := newTestRegistry(t)

	a := reg.CreateTable("Main")
	b := reg.CreateTable("")
	assert.Equal(t, "Main", a.Name)
	assert.Equal(t, "Table "+b.TableID[:8], b.Name)
	assert.Equal(t, game.DefaultMaxSeats, a.MaxSeats)
	assert.Equal(t, game.PhaseIdle, a.Phase)

	c, err := reg.CreateTableWithConfig(game.Config{Name: "Heads up", MaxSeats: 2, SmallBlind: 50, BigBlind: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, c.MaxSeats)

	_, err = reg.CreateTableWithConfig(game.Config{MaxSeats: 11})
	assert.Error(t, err)

	list := reg.ListTables()
	require.Len(t, list, 3)
	assert.Equal(t, []string{a.TableID, b.TableID, c.TableID},
		[]string{list[0].TableID, list[1].TableID, list[2].TableID})
}

func TestJoin(t *testing.T) {
	reg, rec := newTestRegistry(t)
	table := reg.CreateTable("Main")

	_, err := reg.Join("a", "missing", "Alice", nil)
	assert.ErrorIs(t, err, ErrTableNotFound)

	snap, err := reg.Join("a", table.TableID, "Alice", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, *snap.MySeatIndex)
	assert.Equal(t, "Alice", *snap.Seats[0].PlayerName)

	snap, err = reg.Join("b", table.TableID, "", seatPtr(3))
	require.NoError(t, err)
	assert.Equal(t, 3, *snap.MySeatIndex)
	assert.Equal(t, DefaultPlayerName, *snap.Seats[3].PlayerName)

	_, err = reg.Join("c", table.TableID, "Carol", seatPtr(3))
	assert.ErrorIs(t, err, game.ErrSeatTaken)
	_, err = reg.Join("c", table.TableID, "Carol", seatPtr(6))
	assert.ErrorIs(t, err, game.ErrNoSeatAvailable)
	_, ok := reg.TableOf("c")
	assert.False(t, ok)

	assert.Equal(t, []EventType{EventTableState, EventTableState}, types(rec.take("a")))
	assert.Equal(t, []EventType{EventTableState}, types(rec.take("b")))
	assert.Empty(t, rec.take("c"), "failures are only returned to the caller")

	assert.Equal(t, 2, reg.ListTables()[0].PlayerCount)
}

func TestJoinFullTable(t *testing.T) {
	reg, _ := newTestRegistry(t)
	table, err := reg.CreateTableWithConfig(game.Config{MaxSeats: 2})
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		_, err := reg.Join(id, table.TableID, id, nil)
		require.NoError(t, err)
	}
	_, err = reg.Join("c", table.TableID, "c", nil)
	assert.ErrorIs(t, err, game.ErrNoSeatAvailable)
}

func TestJoinAnotherTableMovesClient(t *testing.T) {
	reg, rec := newTestRegistry(t)
	first := reg.CreateTable("First")
	second := reg.CreateTable("Second")

	_, err := reg.Join("a", first.TableID, "Alice", nil)
	require.NoError(t, err)
	_, err = reg.Join("b", first.TableID, "Bob", nil)
	require.NoError(t, err)
	rec.reset()

	_, err = reg.Join("a", second.TableID, "Alice", nil)
	require.NoError(t, err)

	tableID, _ := reg.TableOf("a")
	assert.Equal(t, second.TableID, tableID)
	events := rec.take("a")
	require.Equal(t, []EventType{EventTableState, EventTableLeft}, types(events))
	assert.Equal(t, second.TableID, events[0].(StateEvent).Snapshot.TableID)
	assert.Equal(t, first.TableID, events[1].(LeftEvent).TableID)
	assert.Nil(t, lastState(t, rec.take("b")).Seats[0].PlayerName)

	list := reg.ListTables()
	assert.Equal(t, 1, list[0].PlayerCount)
	assert.Equal(t, 1, list[1].PlayerCount)
}

func TestFailedJoinKeepsCurrentSeat(t *testing.T) {
	reg, rec := newTestRegistry(t)
	first := reg.CreateTable("First")
	second := reg.CreateTable("Second")

	for _, id := range []string{"a", "b"} {
		_, err := reg.Join(id, first.TableID, id, nil)
		require.NoError(t, err)
	}
	_, err := reg.Join("c", second.TableID, "c", seatPtr(0))
	require.NoError(t, err)
	require.NoError(t, reg.StartHand("a"))
	before, err := reg.ViewFor("a")
	require.NoError(t, err)
	rec.reset()

	_, err = reg.Join("a", second.TableID, "a", seatPtr(0))
	assert.ErrorIs(t, err, game.ErrSeatTaken)

	tableID, ok := reg.TableOf("a")
	require.True(t, ok)
	assert.Equal(t, first.TableID, tableID)
	after, err := reg.ViewFor("a")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, rec.take("a"))
	assert.Empty(t, rec.take("b"))
}

func TestJoinSameTableTwice(t *testing.T) {
	reg, _ := newTestRegistry(t)
	table := reg.CreateTable("Main")

	_, err := reg.Join("a", table.TableID, "Alice", nil)
	require.NoError(t, err)
	snap, err := reg.Join("a", table.TableID, "Alice", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, *snap.MySeatIndex)

	snap, err = reg.Join("a", table.TableID, "Alice", seatPtr(2))
	require.NoError(t, err)
	assert.Equal(t, 2, *snap.MySeatIndex)
	assert.Equal(t, 1, reg.ListTables()[0].PlayerCount)
}

func TestSit(t *testing.T) {
	reg, rec := newTestRegistry(t)
	table := reg.CreateTable("Main")

	_, err := reg.Sit("a", 1)
	assert.ErrorIs(t, err, game.ErrNotSeated)

	_, err = reg.Join("a", table.TableID, "Alice", nil)
	require.NoError(t, err)
	_, err = reg.Join("b", table.TableID, "Bob", nil)
	require.NoError(t, err)
	rec.reset()

	snap, err := reg.Sit("a", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, *snap.MySeatIndex)
	assert.Equal(t, "Alice", *lastState(t, rec.take("b")).Seats[4].PlayerName)

	_, err = reg.Sit("a", 1)
	assert.ErrorIs(t, err, game.ErrSeatTaken)
}

func TestLeave(t *testing.T) {
	reg, rec := newTestRegistry(t)
	table := reg.CreateTable("Main")

	require.NoError(t, reg.Leave("nobody"), "leaving without a seat is a no-op")

	_, err := reg.Join("a", table.TableID, "Alice", nil)
	require.NoError(t, err)
	rec.reset()

	require.NoError(t, reg.Leave("a"))
	require.NoError(t, reg.Leave("a"))
	assert.Equal(t, []EventType{EventTableLeft}, types(rec.take("a")))
	_, ok := reg.TableOf("a")
	assert.False(t, ok)
	assert.Zero(t, reg.ListTables()[0].PlayerCount)

	_, err = reg.ViewFor("a")
	assert.ErrorIs(t, err, game.ErrNotSeated)
}

func TestHandFlowPublishesPrivateViews(t *testing.T) {
	reg, rec := newTestRegistry(t)
	table := reg.CreateTable("Main")
	for _, id := range []string{"a", "b"} {
		_, err := reg.Join(id, table.TableID, id, nil)
		require.NoError(t, err)
	}
	rec.reset()

	require.NoError(t, reg.StartHand("a"))
	for seat, id := range []string{"a", "b"} {
		events := rec.take(id)
		require.Equal(t, []EventType{EventHandStarted}, types(events))
		snap := lastState(t, events)
		assert.Equal(t, seat, *snap.MySeatIndex)
		assert.Len(t, snap.MyHoleCards, 2)
		assert.Equal(t, 30, snap.Pot)
		for _, s := range snap.Seats {
			assert.Nil(t, s.HoleCards)
		}
	}

	err := reg.Act("b", game.Call, 0)
	assert.ErrorIs(t, err, game.ErrIllegalAction)
	assert.Empty(t, rec.take("a"))

	require.NoError(t, reg.Act("a", game.Call, 0))
	snap := lastState(t, rec.take("b"))
	assert.Equal(t, 40, snap.Pot)
	assert.Equal(t, &game.LastAction{Seat: 0, Action: game.Call, Amount: 10}, snap.LastAction)

	require.NoError(t, reg.Act("b", game.Check, 0))
	snap, err = reg.ViewFor("a")
	require.NoError(t, err)
	assert.Equal(t, game.PhaseFlop, snap.Phase)
	assert.Len(t, snap.CommunityCards, 3)

	require.NoError(t, reg.Act("b", game.Raise, 100))
	rec.reset()
	require.NoError(t, reg.Act("a", game.Fold, 0))

	for _, id := range []string{"a", "b"} {
		events := rec.take(id)
		require.Equal(t, []EventType{EventStateUpdate, EventShowdown}, types(events))
		sd := events[1].(ShowdownEvent).Showdown
		assert.True(t, sd.Uncontested)
		assert.Equal(t, 1, sd.Winners[0].Seat)
		assert.Equal(t, 140, sd.Winners[0].Amount)
	}
}

func TestCommandsRequireSeat(t *testing.T) {
	reg, _ := newTestRegistry(t)
	reg.CreateTable("Main")

	assert.ErrorIs(t, reg.StartHand("x"), game.ErrNotSeated)
	assert.ErrorIs(t, reg.Act("x", game.Fold, 0), game.ErrNotSeated)
	_, err := reg.ViewFor("x")
	assert.ErrorIs(t, err, game.ErrNotSeated)
}

func TestStartHandNeedsTwoPlayers(t *testing.T) {
	reg, rec := newTestRegistry(t)
	table := reg.CreateTable("Main")
	_, err := reg.Join("a", table.TableID, "Alice", nil)
	require.NoError(t, err)
	rec.reset()

	assert.ErrorIs(t, reg.StartHand("a"), game.ErrInvalidState)
	assert.Empty(t, rec.take("a"))
}

func TestDisconnectMidHandFolds(t *testing.T) {
	reg, rec := newTestRegistry(t)
	table := reg.CreateTable("Main")
	for _, id := range []string{"a", "b", "c"} {
		_, err := reg.Join(id, table.TableID, id, nil)
		require.NoError(t, err)
	}
	require.NoError(t, reg.StartHand("a"))
	rec.reset()

	reg.Disconnect("a")
	snap := lastState(t, rec.take("b"))
	assert.Equal(t, game.PhasePreflop, snap.Phase)
	assert.Nil(t, snap.Seats[0].PlayerName)
	assert.Equal(t, 1, *snap.TurnSeat)
	assert.Equal(t, 30, snap.Pot)
	rec.reset()

	reg.Disconnect("b")
	events := rec.take("c")
	require.Equal(t, []EventType{EventStateUpdate, EventShowdown}, types(events))
	assert.Equal(t, game.DefaultStartingStack+10, lastState(t, events).Seats[2].Stack)
}

func TestTableView(t *testing.T) {
	reg, _ := newTestRegistry(t)
	table := reg.CreateTable("Main")
	for _, id := range []string{"a", "b"} {
		_, err := reg.Join(id, table.TableID, id, nil)
		require.NoError(t, err)
	}
	require.NoError(t, reg.StartHand("a"))

	snap, err := reg.TableView(table.TableID)
	require.NoError(t, err)
	assert.Nil(t, snap.MySeatIndex)
	assert.Nil(t, snap.MyHoleCards)

	_, err = reg.TableView("nope")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestSeededRegistriesDealTheSameCards(t *testing.T) {
	deal := func() game.Snapshot {
		reg, _ := newTestRegistry(t)
		table := reg.CreateTable("Main")
		for _, id := range []string{"a", "b"} {
			_, err := reg.Join(id, table.TableID, id, nil)
			require.NoError(t, err)
		}
		require.NoError(t, reg.StartHand("a"))
		snap, err := reg.ViewFor("a")
		require.NoError(t, err)
		return snap
	}
	assert.Equal(t, deal().MyHoleCards, deal().MyHoleCards)
}

func TestTurnTimeoutFoldsPlayer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	reg, rec := newTestRegistry(t, WithClock(clock), WithTurnTimeout(30*time.Second))
	table := reg.CreateTable("Main")
	for _, id := range []string{"a", "b"} {
		_, err := reg.Join(id, table.TableID, id, nil)
		require.NoError(t, err)
	}
	require.NoError(t, reg.StartHand("a"))
	rec.reset()

	clock.Advance(29 * time.Second).MustWait(ctx)
	assert.Empty(t, rec.take("a"))

	clock.Advance(time.Second).MustWait(ctx)
	events := rec.take("b")
	require.Equal(t, []EventType{EventPlayerTimeout, EventStateUpdate, EventShowdown}, types(events))
	assert.Equal(t, TimeoutEvent{TableID: table.TableID, Seat: 0, Name: "a"}, events[0])

	snap := lastState(t, events)
	assert.Equal(t, game.PhaseIdle, snap.Phase)
	assert.Equal(t, game.DefaultStartingStack+10, snap.Seats[1].Stack)
}

func TestTurnTimerFollowsTheTurn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	reg, rec := newTestRegistry(t, WithClock(clock), WithTurnTimeout(30*time.Second))
	table := reg.CreateTable("Main")
	for _, id := range []string{"a", "b", "c"} {
		_, err := reg.Join(id, table.TableID, id, nil)
		require.NoError(t, err)
	}
	require.NoError(t, reg.StartHand("a"))

	clock.Advance(10 * time.Second).MustWait(ctx)
	require.NoError(t, reg.Act("a", game.Call, 0))
	rec.reset()

	// seat 0's timer would have fired here
	clock.Advance(20 * time.Second).MustWait(ctx)
	assert.Empty(t, rec.take("a"))

	// an unrelated leave keeps seat 1's clock running
	require.NoError(t, reg.Leave("c"))
	rec.reset()

	clock.Advance(10 * time.Second).MustWait(ctx)
	events := rec.take("a")
	require.NotEmpty(t, events)
	assert.Equal(t, TimeoutEvent{TableID: table.TableID, Seat: 1, Name: "b"}, events[0])
}

func TestConcurrentTablesPlayIndependently(t *testing.T) {
	reg, _ := newTestRegistry(t)

	var g errgroup.Group
	for n := 0; n < 8; n++ {
		g.Go(func() error {
			table := reg.CreateTable(fmt.Sprintf("Table %d", n))
			players := []string{fmt.Sprintf("%d-a", n), fmt.Sprintf("%d-b", n)}
			for _, id := range players {
				if _, err := reg.Join(id, table.TableID, id, nil); err != nil {
					return err
				}
			}
			for hand := 0; hand < 20; hand++ {
				if err := reg.StartHand(players[0]); err != nil {
					return err
				}
				snap, err := reg.ViewFor(players[0])
				if err != nil {
					return err
				}
				turn := players[*snap.TurnSeat]
				if err := reg.Act(turn, game.Fold, 0); err != nil {
					return err
				}
			}
			snap, err := reg.TableView(table.TableID)
			if err != nil {
				return err
			}
			if total := snap.Seats[0].Stack + snap.Seats[1].Stack; total != 2*game.DefaultStartingStack {
				return fmt.Errorf("table %d has %d chips", n, total)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, reg.ListTables(), 8)
}
