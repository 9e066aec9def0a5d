package build

import (
	"context"
	"errors"
	"time"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// runStages executes stages in order, recording timing and stopping on the first
// error. Cancellation is checked before every stage.
func runStages(ctx context.Context, st *State, stages []StageDef) error {
	for _, def := range stages {
		stageCtx := observability.WithStage(ctx, string(def.Name))

		select {
		case <-ctx.Done():
			st.Report.RecordStageResult(def.Name, StageResultCanceled, st.recorder)
			st.observer.OnStageComplete(def.Name, 0, StageResultCanceled)
			return &StageError{Kind: StageErrorCanceled, Stage: def.Name, Err: canceled(ctx.Err())}
		default:
		}

		st.observer.OnStageStart(def.Name)
		t0 := time.Now()
		err := def.Fn(stageCtx, st)
		dur := time.Since(t0)
		st.Report.StageDurations[string(def.Name)] = dur

		if err != nil {
			kind, res := StageErrorFatal, StageResultFatal
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				kind, res = StageErrorCanceled, StageResultCanceled
				err = canceled(err)
			}
			st.Report.RecordStageResult(def.Name, res, st.recorder)
			st.observer.OnStageComplete(def.Name, dur, res)
			st.logger.DebugContext(stageCtx, "Stage failed", logfields.Error(err))
			return &StageError{Kind: kind, Stage: def.Name, Err: err}
		}

		st.Report.RecordStageResult(def.Name, StageResultSuccess, st.recorder)
		st.observer.OnStageComplete(def.Name, dur, StageResultSuccess)
		st.logger.DebugContext(stageCtx, "Stage complete", logfields.DurationMS(float64(dur.Microseconds())/1000))
	}
	return nil
}

// canceled classifies a context error so the CLI maps it to the cancel exit code.
func canceled(err error) error {
	if ferrors.IsClassified(err) {
		return err
	}
	return ferrors.WrapError(err, ferrors.CategoryCanceled, "build canceled").Build()
}
