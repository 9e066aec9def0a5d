package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// Outcome is the final state of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures what a build did.
type Report struct {
	SchemaVersion  int                       `json:"schema_version"`
	BuildID        string                    `json:"build_id"`
	Version        string                    `json:"version"`
	Source         string                    `json:"source"`
	Destination    string                    `json:"destination"`
	Revision       string                    `json:"revision,omitempty"`
	Branch         string                    `json:"branch,omitempty"`
	Start          time.Time                 `json:"start"`
	End            time.Time                 `json:"end"`
	StageDurations map[string]time.Duration  `json:"stage_durations"`
	StageResults   map[StageName]StageResult `json:"stage_results"`
	Templates      int                       `json:"templates"`
	ContentPages   int                       `json:"content_pages"`
	TemplatePages  int                       `json:"template_pages"`
	FilesCopied    int                       `json:"files_copied"`
	FilesSkipped   int                       `json:"files_skipped"`
	Exclusions     int                       `json:"exclusions"`
	Plugins        int                       `json:"plugins"`
	// Hooks counts plugin hook invocations per phase.
	Hooks   map[string]int `json:"hooks"`
	Outcome Outcome        `json:"outcome"`
	// FailedStage is set when a stage aborted the build.
	FailedStage StageName `json:"failed_stage,omitempty"`
	Error       string    `json:"error,omitempty"`
}

func newReport(buildID string, cfg *config.BuildConfig) *Report {
	return &Report{
		SchemaVersion:  1,
		BuildID:        buildID,
		Version:        version.Version,
		Source:         cfg.SourcePath,
		Destination:    cfg.DestinationPath,
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
		StageResults:   make(map[StageName]StageResult),
		Hooks:          make(map[string]int),
	}
}

// PagesRendered is the number of HTML files written by render stages.
func (r *Report) PagesRendered() int { return r.ContentPages + r.TemplatePages }

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// RecordStageResult stores the stage result and forwards it to recorder.
func (r *Report) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	r.StageResults[stage] = res
	if recorder == nil {
		return
	}
	switch res {
	case StageResultSuccess:
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultFatal:
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	}
}

// finish stamps the end time and derives the outcome from err.
func (r *Report) finish(err error) {
	r.End = time.Now()
	if err == nil {
		r.Outcome = OutcomeSuccess
		return
	}
	r.Error = err.Error()
	r.Outcome = OutcomeFailed
	var se *StageError
	if errors.As(err, &se) {
		r.FailedStage = se.Stage
		if se.Kind == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
		}
	}
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("build=%s templates=%d pages=%d copied=%d excluded=%d plugins=%d duration=%s outcome=%s",
		r.BuildID, r.Templates, r.PagesRendered(), r.FilesCopied, r.Exclusions, r.Plugins,
		r.Duration().Truncate(time.Millisecond), r.Outcome)
}

// Persist writes the report as JSON to path, replacing it atomically.
func (r *Report) Persist(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
