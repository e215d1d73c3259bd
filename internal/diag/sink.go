// Package diag records per-step diagnostics of a reconstruction run.
package diag

import (
	"go.uber.org/multierr"

	"github.com/Faultbox/depthmesh/internal/pipeline"
	"github.com/Faultbox/depthmesh/pkg/worldmesh"
)

// Sink is a pipeline sink that owns resources released by Close.
type Sink interface {
	pipeline.Sink
	Close() error
}

type multiSink []Sink

// Multi fans every record out to all sinks. Errors from the sinks are
// combined; one failing sink does not stop the others.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Record(res *pipeline.StepResult, world worldmesh.Snapshot) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Record(res, world))
	}
	return err
}

func (m multiSink) Close() error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Close())
	}
	return err
}
