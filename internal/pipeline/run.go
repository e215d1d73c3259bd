package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/depthmesh/internal/scene"
	"github.com/Faultbox/depthmesh/internal/sensor"
)

// ErrNotToggleable is returned when scene events target a scene without
// toggleable parts.
var ErrNotToggleable = errors.New("scene parts cannot be toggled")

// Event shows or hides a scene part before the given step is captured.
type Event struct {
	Step    int
	Part    string
	Visible bool
}

// Summary describes a finished run.
type Summary struct {
	Steps          int
	WorldPoints    int
	WorldTriangles int
	// Added holds the triangles appended by each step.
	Added []int
}

// Run steps through poses in order, applying events for each step first.
// ctx is only checked between steps. target may be nil when there are no
// events.
func (p *Pipeline) Run(ctx context.Context, poses []sensor.Pose, target scene.Toggleable, events []Event) (Summary, error) {
	var sum Summary
	if len(events) > 0 && target == nil {
		return sum, ErrNotToggleable
	}
	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Step < sorted[j].Step })

	for i, pose := range poses {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("run stopped before step %d: %w", i, err)
		}
		for len(sorted) > 0 && sorted[0].Step <= i {
			ev := sorted[0]
			sorted = sorted[1:]
			if err := target.SetPartVisible(ev.Part, ev.Visible); err != nil {
				return sum, fmt.Errorf("event for step %d: %w", ev.Step, err)
			}
			p.log.Info("scene changed",
				zap.Int("step", i),
				zap.String("part", ev.Part),
				zap.Bool("visible", ev.Visible))
		}

		res, err := p.Step(pose)
		if err != nil {
			return sum, fmt.Errorf("step %d: %w", i, err)
		}
		sum.Steps++
		sum.Added = append(sum.Added, res.TrianglesAdded())
		sum.WorldPoints = res.WorldPoints
		sum.WorldTriangles = res.WorldTriangles
	}
	return sum, nil
}
