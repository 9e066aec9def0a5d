package build

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/deps"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/revision"
)

// RendererFactory creates the renderer for one build.
type RendererFactory func(cfg *config.BuildConfig, buildID string, logger *slog.Logger) render.Renderer

// Builder runs builds for one configuration.
type Builder struct {
	cfg         *config.BuildConfig
	loader      *plugin.Loader
	newRenderer RendererFactory
	logger      *slog.Logger
	recorder    metrics.Recorder
	observer    Observer
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithRecorder sets the metrics recorder. Unless WithObserver is also given, stage
// and build metrics flow to it through a RecorderObserver.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = recorder }
}

// WithObserver replaces the default observer.
func WithObserver(o Observer) Option {
	return func(b *Builder) { b.observer = o }
}

// WithLoader sets the plugin loader. Loaders cache plugin instances, so sharing
// one across builds keeps plugin state between them.
func WithLoader(loader *plugin.Loader) Option {
	return func(b *Builder) { b.loader = loader }
}

// WithRenderer uses r for every build instead of a TemplateRenderer.
func WithRenderer(r render.Renderer) Option {
	return func(b *Builder) {
		b.newRenderer = func(*config.BuildConfig, string, *slog.Logger) render.Renderer { return r }
	}
}

// WithRendererFactory sets how the renderer of each build is created.
func WithRendererFactory(f RendererFactory) Option {
	return func(b *Builder) { b.newRenderer = f }
}

func defaultRenderer(cfg *config.BuildConfig, buildID string, logger *slog.Logger) render.Renderer {
	return render.NewTemplateRenderer(cfg, buildID, logger)
}

// New creates a Builder for cfg, which must already be resolved and validated.
func New(cfg *config.BuildConfig, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, newRenderer: defaultRenderer}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.recorder == nil {
		b.recorder = metrics.NoopRecorder{}
	}
	if b.observer == nil {
		b.observer = RecorderObserver{Recorder: b.recorder}
	}
	if b.loader == nil {
		b.loader = plugin.NewLoader(plugin.DefaultRegistry())
	}
	return b
}

// Pipeline returns the stages a build of this configuration runs.
func (b *Builder) Pipeline() []StageDef {
	return NewPipeline().
		Add(StageDiscover, stageDiscover).
		Add(StageResolvePlugins, stageResolvePlugins).
		Add(StageResetDestination, stageResetDestination).
		Add(StageBeforeBuild, stageBeforeBuild).
		AddIf(b.cfg.HasContentTemplate(), StageRenderContent, stageRenderContent).
		Add(StageRenderTemplates, stageRenderTemplates).
		Add(StageComputeExclusions, stageComputeExclusions).
		Add(StageCopyAssets, stageCopyAssets).
		Add(StageAfterBuild, stageAfterBuild).
		Build()
}

// Build runs one full build. The report is returned even when the build fails.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	if b.cfg == nil {
		return nil, ferrors.ConfigError("build configuration required").Build()
	}

	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)

	st := &State{
		Config:   b.cfg,
		BuildID:  buildID,
		Tracker:  deps.NewTracker(),
		Report:   newReport(buildID, b.cfg),
		renderer: b.newRenderer(b.cfg, buildID, b.logger),
		loader:   b.loader,
		logger:   b.logger,
		recorder: b.recorder,
		observer: b.observer,
	}

	b.stampRevision(ctx, st.Report)

	b.logger.InfoContext(ctx, "Build started",
		logfields.Source(b.cfg.SourcePath),
		logfields.Destination(b.cfg.DestinationPath))

	err := runStages(ctx, st, b.Pipeline())
	st.Report.finish(err)
	b.observer.OnBuildComplete(st.Report)

	if err != nil {
		return st.Report, err
	}
	b.logger.InfoContext(ctx, "Build finished",
		logfields.Count(st.Report.PagesRendered()),
		logfields.DurationMS(float64(st.Report.Duration().Microseconds())/1000),
		logfields.Result(string(st.Report.Outcome)))
	return st.Report, nil
}

// stampRevision records the source commit when the source tree is under git.
func (b *Builder) stampRevision(ctx context.Context, report *Report) {
	rev, err := revision.Describe(b.cfg.SourcePath)
	if err != nil {
		if !errors.Is(err, revision.ErrNotRepository) {
			b.logger.DebugContext(ctx, "Source revision unavailable", logfields.Error(err))
		}
		return
	}
	report.Revision = rev.Commit
	report.Branch = rev.Branch
}
