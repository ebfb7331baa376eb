package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robmorgan/stagehand/cuelist"
	"github.com/robmorgan/stagehand/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

type recordingSaver struct {
	saves int
	err   error
}

func (s *recordingSaver) Save(show *cuelist.Show) error {
	s.saves++
	return s.err
}

func newTestLoop(t *testing.T, show *cuelist.Show) (*Loop, *testingclock.FakeClock, *recordingSaver) {
	t.Helper()

	fc := testingclock.NewFakeClock(time.Date(2024, 1, 1, 19, 30, 0, 0, time.UTC))
	saver := &recordingSaver{}
	l := New(show, Options{
		Clock:        fc,
		Interval:     25 * time.Millisecond,
		Patch:        fixture.Patch{{Name: "CC", Address: 0}, {Name: "FC", Address: 1}},
		Store:        saver,
		FadeDuration: 100 * time.Millisecond,
	})
	return l, fc, saver
}

func drainSlot(l *Loop) bool {
	select {
	case <-l.Slot().C():
		return true
	default:
		return false
	}
}

func TestStepOffersFrameOnlyOnChange(t *testing.T) {
	t.Parallel()

	l, fc, _ := newTestLoop(t, cuelist.NewShow())

	l.Step()
	require.True(t, drainSlot(l))

	fc.Step(25 * time.Millisecond)
	l.Step()
	require.False(t, drainSlot(l))

	l.Submit(Refresh())
	l.Step()
	require.True(t, drainSlot(l))
	assert.Equal(t, 2, l.Status().FramesSent)
}

func TestCommandsDriveTheShow(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLoop(t, cuelist.NewShow())
	l.Step()
	drainSlot(l)

	l.Submit(Toggle("CC", cuelist.NoPage))
	l.Step()
	frame := <-l.Slot().C()
	assert.Equal(t, byte(255), frame.Channels()[0])

	l.Submit(Advance())
	l.Submit(Toggle("FC", cuelist.NoPage))
	l.Submit(Toggle("FC", cuelist.NoPage))
	l.Step()

	status := l.Status()
	assert.Equal(t, cuelist.PageID("1"), status.Current)
	assert.Equal(t, cuelist.PageID("2"), status.Next)
	frame = <-l.Slot().C()
	assert.Equal(t, byte(0), frame.Channels()[0])
	assert.Equal(t, byte(191), frame.Channels()[1])
	assert.Equal(t, frame, status.Frame)
}

func TestStatusCarriesPreviews(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLoop(t, cuelist.NewShow())
	l.Submit(Toggle("CC", cuelist.InterruptPage))
	l.Step()

	status := l.Status()
	assert.Equal(t, cuelist.Lights{"CC": 100}, status.Interrupt)
	assert.Empty(t, status.Preview)
	assert.Equal(t, cuelist.PageID("1"), status.Next)

	l.Submit(Interrupt())
	l.Step()
	status = l.Status()
	assert.Equal(t, cuelist.PageID("i0"), status.Current)
	assert.Empty(t, status.Interrupt)
	assert.Equal(t, 100.0, status.Levels.Get("CC"))
}

func TestCountdownAdvancesWithClock(t *testing.T) {
	t.Parallel()

	l, fc, _ := newTestLoop(t, cuelist.NewShow())
	l.Step()
	drainSlot(l)

	l.Submit(Countdown(100*time.Millisecond, cuelist.NoPage))
	l.Step()
	drainSlot(l)

	fc.Step(60 * time.Millisecond)
	l.Step()
	require.Equal(t, cuelist.StartPage, l.Status().Current)
	require.False(t, drainSlot(l))

	fc.Step(60 * time.Millisecond)
	l.Step()
	require.Equal(t, cuelist.PageID("1"), l.Status().Current)
	require.True(t, drainSlot(l))
}

func TestFadeCrossfadesThenAdvances(t *testing.T) {
	t.Parallel()

	show := cuelist.NewShow()
	show.Current().Lights.Set("CC", 100)
	l, fc, _ := newTestLoop(t, show)
	l.Step()

	l.Submit(Fade(0))
	l.Step()
	require.True(t, l.Status().Fading)

	fc.Step(50 * time.Millisecond)
	l.Step()
	status := l.Status()
	require.True(t, status.Fading)
	assert.InDelta(t, 0.5, status.FadeFraction, 1e-9)
	assert.InDelta(t, 50.0, status.Levels.Get("CC"), 1e-9)
	assert.Equal(t, byte(127), status.Frame.Channels()[0])

	fc.Step(50 * time.Millisecond)
	l.Step()
	status = l.Status()
	require.False(t, status.Fading)
	assert.Equal(t, cuelist.PageID("1"), status.Current)
	assert.Equal(t, 0.0, status.Levels.Get("CC"))
}

func TestNavigationCancelsFade(t *testing.T) {
	t.Parallel()

	l, fc, _ := newTestLoop(t, cuelist.NewShow())
	l.Step()

	l.Submit(Fade(time.Second))
	l.Step()
	fc.Step(100 * time.Millisecond)
	l.Submit(Blackout())
	l.Step()

	status := l.Status()
	require.False(t, status.Fading)
	require.Equal(t, cuelist.BlackoutPage, status.Current)
}

func TestSaveAndFailedCommands(t *testing.T) {
	t.Parallel()

	l, _, saver := newTestLoop(t, cuelist.NewShow())
	l.Submit(Save())
	l.Step()
	require.Equal(t, 1, saver.saves)
	require.NoError(t, l.Status().Err)

	saver.err = errors.New("disk full")
	l.Submit(Save())
	l.Step()
	require.Error(t, l.Status().Err)

	l.Submit(Delete())
	l.Step()
	require.ErrorIs(t, l.Status().Err, cuelist.ErrReservedPage)

	l.Submit(SetNext("missing"))
	l.Step()
	require.ErrorIs(t, l.Status().Err, cuelist.ErrPageNotFound)
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()

	fc := testingclock.NewFakeClock(time.Now())
	statuses := make(chan Status, 16)
	l := New(cuelist.NewShow(), Options{
		Clock:    fc,
		Interval: 10 * time.Millisecond,
		OnStatus: func(s Status) {
			select {
			case statuses <- s:
			default:
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = l.Run(ctx)
	}()

	first := <-statuses
	assert.Equal(t, cuelist.StartPage, first.Current)

	l.Submit(Advance())
	require.Eventually(t, func() bool {
		fc.Step(10 * time.Millisecond)
		select {
		case s := <-statuses:
			return s.Current == "1"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()
	require.ErrorIs(t, runErr, context.Canceled)
}

func TestPreviewDepthWalksTheChain(t *testing.T) {
	t.Parallel()

	show := cuelist.NewShow()
	show.Advance()
	show.Advance()
	show.Current().Lights.Set("FC", 75)
	show.Advance()
	show.Retreat()
	show.Retreat()
	show.Retreat()
	l, _, _ := newTestLoop(t, show)

	l.Step()
	status := l.Status()
	require.Equal(t, cuelist.PageID("1"), status.PreviewID)
	require.Equal(t, 0, status.PreviewDepth)

	l.Submit(AdjustPreview(1))
	l.Step()
	status = l.Status()
	require.Equal(t, cuelist.PageID("2"), status.PreviewID)
	assert.Equal(t, cuelist.Lights{"FC": 75}, status.Preview)
	assert.Equal(t, cuelist.PageID("1"), status.Next)

	l.Submit(AdjustPreview(10))
	l.Step()
	require.Equal(t, cuelist.PageID("4"), l.Status().PreviewID)

	l.Submit(AdjustPreview(-12))
	l.Submit(SetNext("2"))
	l.Step()
	status = l.Status()
	require.Equal(t, -1, status.PreviewDepth)
	require.Equal(t, cuelist.PageID("2"), status.Next)
	// one step back from the rerouted next cue is still its own previous page
	require.Equal(t, cuelist.PageID("1"), status.PreviewID)

	l.Submit(Advance())
	l.Step()
	status = l.Status()
	require.Equal(t, cuelist.PageID("2"), status.Current)
	require.Equal(t, 0, status.PreviewDepth)
	require.Equal(t, cuelist.PageID("3"), status.PreviewID)
}

func TestNoteAndCountdownCommands(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLoop(t, cuelist.NewShow())
	l.Submit(Note("house to half"))
	l.Submit(Countdown(2*time.Second, cuelist.BlackoutPage))
	l.Step()

	status := l.Status()
	require.NoError(t, status.Err)
	assert.Equal(t, "house to half", status.Note)
	assert.Equal(t, 2*time.Second, status.Countdown)
}
