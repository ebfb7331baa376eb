package effect

import (
	"fmt"
	"time"

	"github.com/fogleman/ease"
	"github.com/robmorgan/stagehand/utils"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var curves = map[string]ease.Function{
	"linear":     ease.Linear,
	"inquad":     ease.InQuad,
	"outquad":    ease.OutQuad,
	"inoutquad":  ease.InOutQuad,
	"incubic":    ease.InCubic,
	"outcubic":   ease.OutCubic,
	"inoutcubic": ease.InOutCubic,
	"inquart":    ease.InQuart,
	"outquart":   ease.OutQuart,
	"inoutquart": ease.InOutQuart,
	"insine":     ease.InSine,
	"outsine":    ease.OutSine,
	"inoutsine":  ease.InOutSine,
}

// Curve looks up an easing curve by name.
func Curve(name string) (ease.Function, error) {
	fn, ok := curves[name]
	if !ok {
		return nil, fmt.Errorf("unknown fade curve %q, want one of %v", name, CurveNames())
	}
	return fn, nil
}

// CurveNames lists the known curve names.
func CurveNames() []string {
	names := maps.Keys(curves)
	slices.Sort(names)
	return names
}

// Crossfade tracks the progress of a timed fade from one cue to the next.
type Crossfade struct {
	// The easing function to use
	EasingFunc ease.Function

	Duration time.Duration

	// Total running time
	elapsed time.Duration
}

// NewCrossfade creates a fade lasting duration.
func NewCrossfade(easingFunc ease.Function, duration time.Duration) *Crossfade {
	if easingFunc == nil {
		easingFunc = ease.Linear
	}
	return &Crossfade{
		EasingFunc: easingFunc,
		Duration:   duration,
	}
}

// Update moves the fade forward by deltaTime and returns the eased fraction in
// [0,1] along with whether the fade has finished.
func (c *Crossfade) Update(deltaTime time.Duration) (float64, bool) {
	c.elapsed += deltaTime
	if c.Duration <= 0 || c.elapsed >= c.Duration {
		c.elapsed = c.Duration
		return 1, true
	}
	progress := float64(c.elapsed) / float64(c.Duration)
	return utils.Clamp(c.EasingFunc(progress), 0, 1), false
}

// Fraction returns the eased fraction without moving the fade.
func (c *Crossfade) Fraction() float64 {
	if c.Duration <= 0 || c.elapsed >= c.Duration {
		return 1
	}
	return utils.Clamp(c.EasingFunc(float64(c.elapsed)/float64(c.Duration)), 0, 1)
}
