package backend

import "time"

// Stage describes a phase of the script backend pipeline.
type Stage string

const (
	// StageOrder selects and orders emittable declarations.
	StageOrder Stage = "order"
	// StageRename runs the identifier transform.
	StageRename Stage = "rename"
	// StageAssemble emits declarations and the export wrapper.
	StageAssemble Stage = "assemble"
	// StagePackage merges the script into the distribution template.
	StagePackage Stage = "package"
	// StageWrite writes the final artifact.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the unit is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is currently running.
	StatusWorking Status = "working"
	// StatusDone indicates the stage finished.
	StatusDone Status = "done"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports progress for one compilation unit (or for the overall
// pipeline when Unit is empty).
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emitEvent(sink ProgressSink, unit string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Unit: unit, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
