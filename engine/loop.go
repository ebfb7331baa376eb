package engine

import (
	"context"
	"time"

	"github.com/fogleman/ease"
	"github.com/robmorgan/stagehand/cuelist"
	"github.com/robmorgan/stagehand/dmx"
	"github.com/robmorgan/stagehand/effect"
	"github.com/robmorgan/stagehand/fixture"
	"github.com/robmorgan/stagehand/logger"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const commandBacklog = 64

// Saver persists the show.
type Saver interface {
	Save(show *cuelist.Show) error
}

// Status is a snapshot of the console published after every loop iteration.
type Status struct {
	Current   cuelist.PageID
	Next      cuelist.PageID
	Note      string
	Countdown time.Duration

	// Levels is what is on stage, including any running fade.
	Levels cuelist.Levels

	// PreviewID is the page PreviewDepth steps on from the next cue; Preview
	// holds its lights and Interrupt those of the interrupt page.
	PreviewID    cuelist.PageID
	PreviewDepth int
	Preview      cuelist.Lights
	Interrupt    cuelist.Lights

	Fading       bool
	FadeFraction float64

	Frame      dmx.Frame
	FramesSent int

	// Err is the error of the last failed command, if any.
	Err error
}

// Options configure a Loop.
type Options struct {
	Clock    clock.WithTicker
	Interval time.Duration
	Patch    fixture.Patch
	Slot     *fixture.FrameSlot
	Store    Saver

	FadeCurve    ease.Function
	FadeDuration time.Duration

	// OnStatus receives a snapshot after every iteration.
	OnStatus func(Status)
}

// Loop is the single owner of the show. Other goroutines talk to it only
// through Submit, and read its state only through Status snapshots.
type Loop struct {
	show     *cuelist.Show
	store    Saver
	patch    fixture.Patch
	slot     *fixture.FrameSlot
	clock    clock.WithTicker
	interval time.Duration
	onStatus func(Status)

	commands chan Command

	fadeCurve    ease.Function
	fadeDuration time.Duration
	fade         *effect.Crossfade

	previewDepth int

	last       time.Time
	started    bool
	framesSent int
	lastErr    error
	status     Status
}

// New creates a loop that owns show.
func New(show *cuelist.Show, opts Options) *Loop {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = 25 * time.Millisecond
	}
	if opts.Slot == nil {
		opts.Slot = fixture.NewFrameSlot()
	}
	if opts.Patch == nil {
		opts.Patch = fixture.DefaultPatch()
	}
	if opts.FadeCurve == nil {
		opts.FadeCurve = ease.Linear
	}
	return &Loop{
		show:         show,
		store:        opts.Store,
		patch:        opts.Patch,
		slot:         opts.Slot,
		clock:        opts.Clock,
		interval:     opts.Interval,
		onStatus:     opts.OnStatus,
		commands:     make(chan Command, commandBacklog),
		fadeCurve:    opts.FadeCurve,
		fadeDuration: opts.FadeDuration,
	}
}

// Submit queues cmd for the next iteration. It blocks only when the backlog is full.
func (l *Loop) Submit(cmd Command) {
	l.commands <- cmd
}

// Slot returns the slot frames are offered to.
func (l *Loop) Slot() *fixture.FrameSlot {
	return l.slot
}

// Status returns the snapshot of the last iteration. It must only be called from
// the goroutine running the loop; other goroutines use OnStatus.
func (l *Loop) Status() Status {
	return l.status
}

// Run steps the loop on every tick until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	log := logger.GetProjectLogger()
	log.WithFields(logrus.Fields{"interval": l.interval}).Info("control loop started")

	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	l.Step()
	for {
		select {
		case <-ctx.Done():
			log.Info("control loop shutdown")
			return ctx.Err()
		case <-ticker.C():
			l.Step()
		}
	}
}

// Step runs one iteration: apply queued commands, run the countdown, advance any
// fade, and offer a frame when the output changed.
func (l *Loop) Step() {
	changed := l.drain()

	now := l.clock.Now()
	elapsed := time.Duration(0)
	if l.started {
		elapsed = now.Sub(l.last)
	} else {
		l.started = true
		changed = true
	}
	l.last = now

	if l.show.Tick(elapsed) {
		l.fade = nil
		changed = true
	}

	fraction := 0.0
	if l.fade != nil {
		var done bool
		fraction, done = l.fade.Update(elapsed)
		changed = true
		if done {
			l.fade = nil
			fraction = 0
			l.show.Advance()
		}
	}

	levels := l.show.ResolveLights(fraction)
	frame := l.patch.EncodeFrame(levels.Percent())
	if changed {
		l.slot.Offer(frame)
		l.framesSent++
	}
	l.publish(levels, frame, fraction)
}

func (l *Loop) drain() bool {
	changed := false
	for {
		select {
		case cmd := <-l.commands:
			l.apply(cmd)
			changed = true
		default:
			return changed
		}
	}
}

func (l *Loop) apply(cmd Command) {
	log := logger.GetProjectLogger()
	if cmd.navigates {
		l.previewDepth = 0
		if l.fade != nil {
			log.Debug("fade cancelled")
			l.fade = nil
		}
	}
	if err := cmd.apply(l); err != nil {
		log.WithFields(logrus.Fields{"command": cmd.Name, "page": l.show.CurrentID(), "error": err}).Warn("command failed")
		l.lastErr = err
		return
	}
	l.lastErr = nil
	log.WithFields(logrus.Fields{"command": cmd.Name, "page": l.show.CurrentID()}).Debug("command applied")
}

func (l *Loop) startFade(d time.Duration) {
	if d <= 0 {
		d = l.fadeDuration
	}
	l.fade = effect.NewCrossfade(l.fadeCurve, d)
	log := logger.GetProjectLogger()
	log.WithFields(logrus.Fields{"from": l.show.CurrentID(), "to": l.show.Current().Links.Next, "duration": d}).Info("fade started")
}

func (l *Loop) publish(levels cuelist.Levels, frame dmx.Frame, fraction float64) {
	preview := l.show.PreviewNext()
	cur := l.show.Current()
	previewID := cur.Links.Next
	if l.previewDepth != 0 {
		previewID = l.show.Walk(previewID, l.previewDepth)
		preview = l.show.Preview(previewID)
	}
	l.status = Status{
		Current:      cur.ID,
		Next:         cur.Links.Next,
		Note:         cur.Note,
		Countdown:    cur.Countdown,
		Levels:       levels,
		PreviewID:    previewID,
		PreviewDepth: l.previewDepth,
		Preview:      preview,
		Interrupt:    l.show.Preview(cuelist.InterruptPage),
		Fading:       l.fade != nil,
		FadeFraction: fraction,
		Frame:        frame,
		FramesSent:   l.framesSent,
		Err:          l.lastErr,
	}
	if l.onStatus != nil {
		l.onStatus(l.status)
	}
}
