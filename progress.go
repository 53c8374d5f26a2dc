// SPDX-License-Identifier: EPL-2.0

package pcmwav

// Stage names a pipeline step.
type Stage string

const (
	StageDecode    Stage = "decode"
	StageInterpret Stage = "interpret"
	StageRender    Stage = "render"
	StageEncode    Stage = "encode"
	StageIssue     Stage = "issue"
)

// Status of a stage as reported through a ProgressFunc.
type Status string

const (
	StatusStarted Status = "started"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Event is one progress notification. Err is set only when Status is StatusFailed.
type Event struct {
	Stage  Stage
	Status Status
	Err    error
}

// ProgressFunc receives events synchronously on the calling goroutine.
// It must not block for long.
type ProgressFunc func(Event)

func (f ProgressFunc) emit(stage Stage, status Status, err error) {
	if f == nil {
		return
	}
	f(Event{Stage: stage, Status: status, Err: err})
}
