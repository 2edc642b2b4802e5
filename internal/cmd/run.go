// Package cmd provides CLI command implementations.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/build"
	"github.com/stagehand/cli/internal/bundle"
	"github.com/stagehand/cli/internal/config"
	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/output"
	"github.com/stagehand/cli/internal/pipeline"
	"github.com/stagehand/cli/internal/project"
	"github.com/stagehand/cli/internal/release"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var tf TriggerFlags
	var (
		dirFlag          string
		platformsFlag    []string
		concurrencyFlag  int
		dryRunFlag       bool
		bundleDirFlag    string
		keepBundlesFlag  bool
		usePyprojectFlag bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole release pipeline locally",
		Long: `Run the whole release pipeline: the validation gates, then every
platform and channel build in parallel, then one merge per channel.

A failed build skips only the jobs that depended on it; sibling builds
keep running. Builds share the project working tree, so build jobs are
executed one at a time even when the worker pool is wider.

Examples:
  # Stage a candidate end to end
  stagehand run --tag pyiceberg-0.8.0rc2

  # Narrow the platform matrix and keep the per-platform bundles
  stagehand run --tag pyiceberg-0.8.0rc2 --platforms ubuntu-22.04 --keep-bundles

  # Walk the graph without running any commands
  stagehand run --tag pyiceberg-0.8.0rc2 --dry-run

  # Machine-readable run report
  stagehand run --tag pyiceberg-0.8.0rc2 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args, &tf, runOptions{
				dir:          dirFlag,
				platforms:    platformsFlag,
				concurrency:  concurrencyFlag,
				dryRun:       dryRunFlag,
				bundleDir:    bundleDirFlag,
				keepBundles:  keepBundlesFlag,
				usePyproject: usePyprojectFlag,
			})
		},
	}

	tf.AddTo(cmd)
	cmd.Flags().StringVar(&dirFlag, "dir", ".", "Project directory")
	cmd.Flags().StringSliceVar(&platformsFlag, "platforms", nil, "Narrow the platform matrix to these labels")
	cmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "Worker pool size (0: one worker per platform)")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Walk the job graph without running any commands")
	cmd.Flags().StringVar(&bundleDirFlag, "bundle-dir", "", "Bundle store root (env: STAGEHAND_BUNDLE_DIR)")
	cmd.Flags().BoolVar(&keepBundlesFlag, "keep-bundles", false, "Keep the per-platform bundles after merging")
	cmd.Flags().BoolVar(&usePyprojectFlag, "use-pyproject", false, "Read the declared version from pyproject.toml instead of poetry")

	return cmd
}

// runOptions carries the run command's flag values.
type runOptions struct {
	dir          string
	platforms    []string
	concurrency  int
	dryRun       bool
	bundleDir    string
	keepBundles  bool
	usePyproject bool
}

func runPipeline(_ *cobra.Command, _ []string, tf *TriggerFlags, opts runOptions) error {
	format := outputFormatOr("")
	if format != "" && format != output.FormatJSON {
		return serrors.NewValidationError(
			"unsupported output format",
			"output",
			format.String(),
			"The run report supports json output only",
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rel, err := loadProjectRelease(opts.dir)
	if err != nil {
		return err
	}
	rel, err = narrowPlatforms(rel, opts.platforms)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPlan(rel)
	if err != nil {
		return err
	}

	workers := opts.concurrency
	if workers == 0 {
		workers = GetGlobalConfig().Config.Concurrency
	}
	if workers == 0 {
		workers = len(rel.Platforms)
	}

	runID := uuid.NewString()

	var handler pipeline.Handler
	rh := &runHandler{
		release:      rel,
		trigger:      tf,
		dir:          opts.dir,
		store:        resolveStore(opts.dir, opts.bundleDir, rel),
		runID:        runID,
		keepBundles:  opts.keepBundles,
		usePyproject: opts.usePyproject,
		poetry:       GetGlobalConfig().Config.Poetry,
	}
	handler = rh
	if opts.dryRun {
		output.Info("dry run: walking the job graph without running commands")
		handler = pipeline.NopHandler{}
	}

	exec := pipeline.NewExecutor(p, handler, workers, pipeline.WithRunID(runID))
	result, err := exec.Run(ctx)
	if err != nil {
		return err
	}

	report := buildRunReport(rel, rh, p, result)
	if err := output.WriteRunReport(report, output.ReportOptions{
		JSON:   format == output.FormatJSON,
		Writer: os.Stdout,
	}); err != nil {
		return err
	}

	if result.Failed {
		var firstErr error
		failed := 0
		for _, id := range result.Order {
			oc, ok := result.Outcomes[id]
			if !ok || oc.Err == nil {
				continue
			}
			failed++
			if firstErr == nil {
				firstErr = oc.Err
			}
		}
		return &serrors.ExitError{
			Code:    serrors.ExitCodeFromError(firstErr),
			Err:     fmt.Errorf("%d job(s) failed", failed),
			Printed: true,
		}
	}

	return nil
}

// buildRunReport assembles the run report in plan order.
func buildRunReport(rel *config.Release, rh *runHandler, p *pipeline.Plan, result *pipeline.Result) *output.RunReport {
	report := &output.RunReport{
		RunID:   result.RunID,
		Project: rel.Project,
	}

	if cand, ok := rh.candidate(); ok {
		report.Candidate = cand.Qualified()
		report.Version = cand.Version.String()
		report.RC = cand.RC
	}

	for _, job := range p.Jobs() {
		jr := output.JobReport{
			ID:     job.ID,
			Status: string(result.Final[job.ID]),
		}
		if oc, ok := result.Outcomes[job.ID]; ok {
			jr.Duration = oc.Duration.Round(timeRound).String()
			if oc.Err != nil {
				jr.Error = oc.Err.Error()
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", job.ID, oc.Err))
			}
		}
		report.Jobs = append(report.Jobs, jr)
	}

	for _, m := range rh.manifests() {
		report.Bundles = append(report.Bundles, output.BundleReport{
			Name:    m.Name,
			Channel: m.Channel,
			Files:   m.FileNames(),
		})
	}

	return report
}

// runHandler executes pipeline jobs for a local run. The validate job
// resolves the candidate once; every later job reads it under the lock.
type runHandler struct {
	release      *config.Release
	trigger      *TriggerFlags
	dir          string
	store        *bundle.Store
	runID        string
	keepBundles  bool
	usePyproject bool
	poetry       string

	// buildMu serializes build jobs: they share one working tree and one
	// dist directory, so they must not interleave even when the executor
	// runs wider.
	buildMu sync.Mutex

	mu       sync.Mutex
	cand     release.Candidate
	resolved bool
	bundles  []*bundle.Manifest
}

// HandleJob implements pipeline.Handler.
func (h *runHandler) HandleJob(ctx context.Context, job pipeline.Job) error {
	switch job.Kind {
	case pipeline.KindValidate:
		return h.validate()
	case pipeline.KindVerify:
		return h.verify(ctx)
	case pipeline.KindBuild:
		return h.build(ctx, job)
	case pipeline.KindMerge:
		return h.merge(job)
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

// candidate returns the resolved candidate, if the validate job has run.
func (h *runHandler) candidate() (release.Candidate, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cand, h.resolved
}

// manifests returns the bundles recorded so far.
func (h *runHandler) manifests() []*bundle.Manifest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*bundle.Manifest(nil), h.bundles...)
}

func (h *runHandler) recordBundle(m *bundle.Manifest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bundles = append(h.bundles, m)
}

// mustCandidate returns the candidate; jobs downstream of validate call
// this, so a missing candidate is a scheduling bug.
func (h *runHandler) mustCandidate() (release.Candidate, error) {
	cand, ok := h.candidate()
	if !ok {
		return release.Candidate{}, fmt.Errorf("candidate not resolved before dependent job")
	}
	return cand, nil
}

func (h *runHandler) validate() error {
	_, cand, err := h.trigger.Resolve(h.release.Project)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.cand = cand
	h.resolved = true
	h.mu.Unlock()

	output.Info("release candidate validated",
		"candidate", cand.Qualified(),
		"version", cand.Version.String(),
		"rc", cand.RC,
	)
	return nil
}

func (h *runHandler) verify(ctx context.Context) error {
	cand, err := h.mustCandidate()
	if err != nil {
		return err
	}

	var src project.VersionSource
	if h.usePyproject {
		src = project.NewPyProjectSource(h.dir)
	} else {
		src = project.ResolveSource(h.dir, h.poetry)
	}

	if err := project.Check(ctx, src, cand); err != nil {
		return err
	}

	output.Info("project version consistent",
		"source", src.Name(),
		"version", cand.Version.String(),
	)
	return nil
}

func (h *runHandler) build(ctx context.Context, job pipeline.Job) error {
	cand, err := h.mustCandidate()
	if err != nil {
		return err
	}

	h.buildMu.Lock()
	defer h.buildMu.Unlock()

	builder := build.NewBuilder(h.release, h.dir, nil)
	report, err := builder.Build(ctx, job.Channel, job.Platform, cand)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(report.Artifacts))
	for _, a := range report.Artifacts {
		paths = append(paths, a.Path)
	}

	m, err := h.store.Upload(bundle.Manifest{
		Name:     release.PlatformBundleName(job.Channel, job.Platform),
		Channel:  job.Channel.String(),
		Version:  cand.Version.String(),
		RC:       cand.RC,
		Platform: job.Platform,
		RunID:    h.runID,
	}, paths)
	if err != nil {
		return err
	}

	h.recordBundle(m)
	return nil
}

func (h *runHandler) merge(job pipeline.Job) error {
	cand, err := h.mustCandidate()
	if err != nil {
		return err
	}

	sources := make([]string, 0, len(h.release.Platforms))
	for _, platform := range h.release.Platforms {
		sources = append(sources, release.PlatformBundleName(job.Channel, platform))
	}

	m, err := h.store.Merge(job.Channel, cand, sources, bundle.MergeOptions{
		Keep:  h.keepBundles,
		RunID: h.runID,
	})
	if err != nil {
		return err
	}

	h.recordBundle(m)
	return nil
}
