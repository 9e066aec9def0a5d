package build

import (
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Observer receives callbacks around stage execution and build lifecycle.
type Observer interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(_ StageName)                                    {}
func (NoopObserver) OnStageComplete(_ StageName, _ time.Duration, _ StageResult) {}
func (NoopObserver) OnBuildComplete(_ *Report)                                   {}

// RecorderObserver adapts metrics.Recorder into an Observer.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(_ StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, _ StageResult) {
	if r.Recorder != nil {
		r.Recorder.ObserveStageDuration(string(stage), d)
	}
}

func (r RecorderObserver) OnBuildComplete(report *Report) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveBuildDuration(report.Duration())
	r.Recorder.AddPagesRendered("content", report.ContentPages)
	r.Recorder.AddPagesRendered("template", report.TemplatePages)
	r.Recorder.AddFilesCopied(report.FilesCopied)
	for phase, n := range report.Hooks {
		r.Recorder.AddPluginHooks(phase, n)
	}
	switch report.Outcome {
	case OutcomeSuccess:
		r.Recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	case OutcomeCanceled:
		r.Recorder.IncBuildOutcome(metrics.OutcomeCanceled)
	default:
		r.Recorder.IncBuildOutcome(metrics.OutcomeFailed)
	}
}
