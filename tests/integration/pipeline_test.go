package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand/cli/internal/build"
	"github.com/stagehand/cli/internal/bundle"
	"github.com/stagehand/cli/internal/config"
	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/pipeline"
	"github.com/stagehand/cli/internal/project"
	"github.com/stagehand/cli/internal/release"
	"github.com/stagehand/cli/internal/trigger"
)

// releaseHandler runs pipeline jobs against the real builder and store. It
// is the seam the run command wires up, reduced to what the graph needs.
type releaseHandler struct {
	rel   *config.Release
	dir   string
	store *bundle.Store
	tag   string
	runID string

	// Builds share one working tree, so they must not interleave.
	buildMu sync.Mutex

	cand release.Candidate
}

func (h *releaseHandler) HandleJob(ctx context.Context, job pipeline.Job) error {
	switch job.Kind {
	case pipeline.KindValidate:
		trig, err := trigger.FromInputs(h.tag, "", "")
		if err != nil {
			return err
		}
		cand, err := trig.Resolve(h.rel.Project)
		if err != nil {
			return err
		}
		h.cand = cand
		return nil

	case pipeline.KindVerify:
		return project.Check(ctx, project.NewPyProjectSource(h.dir), h.cand)

	case pipeline.KindBuild:
		h.buildMu.Lock()
		defer h.buildMu.Unlock()

		report, err := build.NewBuilder(h.rel, h.dir, nil).Build(ctx, job.Channel, job.Platform, h.cand)
		if err != nil {
			return err
		}
		paths := make([]string, 0, len(report.Artifacts))
		for _, a := range report.Artifacts {
			paths = append(paths, a.Path)
		}
		_, err = h.store.Upload(bundle.Manifest{
			Name:     release.PlatformBundleName(job.Channel, job.Platform),
			Channel:  job.Channel.String(),
			Version:  h.cand.Version.String(),
			RC:       h.cand.RC,
			Platform: job.Platform,
			RunID:    h.runID,
		}, paths)
		return err

	case pipeline.KindMerge:
		sources := make([]string, 0, len(h.rel.Platforms))
		for _, platform := range h.rel.Platforms {
			sources = append(sources, release.PlatformBundleName(job.Channel, platform))
		}
		_, err := h.store.Merge(job.Channel, h.cand, sources, bundle.MergeOptions{RunID: h.runID})
		return err

	default:
		return errors.New("unexpected job kind " + string(job.Kind))
	}
}

func TestPipeline_FullGraph(t *testing.T) {
	dir := writeProject(t, []string{"alpha", "beta"},
		"touch dist/demo-0.8.0-{platform}.whl dist/demo-0.8.0.tar.gz",
		"true {artifact}",
	)
	rel := loadProject(t, dir)
	store := bundle.NewStore(filepath.Join(dir, "bundles"))

	p, err := pipeline.NewPlan(rel)
	require.NoError(t, err)
	require.Equal(t, 8, p.Len())

	h := &releaseHandler{rel: rel, dir: dir, store: store, tag: "demo-0.8.0rc2", runID: "int-run"}
	exec := pipeline.NewExecutor(p, h, 4, pipeline.WithRunID("int-run"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := exec.Run(ctx)
	require.NoError(t, err)

	assert.False(t, result.Failed)
	assert.Equal(t, "int-run", result.RunID)
	assert.Len(t, result.Order, p.Len())
	for id, state := range result.Final {
		assert.Equal(t, pipeline.StateSucceeded, state, "job %s", id)
	}

	// Each channel ends with one merged bundle holding every platform's
	// wheel plus the single source archive; the per-platform bundles are
	// gone.
	cand := testCandidate(t)
	for _, ch := range release.Channels() {
		m, err := store.Get(release.MergedBundleName(ch, cand))
		require.NoError(t, err)

		assert.Equal(t, "int-run", m.RunID)
		assert.Equal(t, []string{
			"demo-0.8.0-alpha.whl",
			"demo-0.8.0-beta.whl",
			"demo-0.8.0.tar.gz",
		}, m.FileNames())
		assert.NoError(t, store.VerifyFiles(m))

		for _, platform := range rel.Platforms {
			assert.False(t, store.Exists(release.PlatformBundleName(ch, platform)))
		}
	}
}

func TestPipeline_FailedBuildSkipsOnlyItsMerge(t *testing.T) {
	// Smoke tests pass only where the platform's ok marker exists, so both
	// beta builds fail while the alpha builds keep running.
	dir := writeProject(t, []string{"alpha", "beta"},
		"touch dist/demo-0.8.0-{platform}.whl dist/demo-0.8.0.tar.gz",
		"test -e .ok-{platform}",
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ok-alpha"), nil, 0o644))

	rel := loadProject(t, dir)
	store := bundle.NewStore(filepath.Join(dir, "bundles"))

	p, err := pipeline.NewPlan(rel)
	require.NoError(t, err)

	h := &releaseHandler{rel: rel, dir: dir, store: store, tag: "demo-0.8.0rc2", runID: "int-run"}
	exec := pipeline.NewExecutor(p, h, 4)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := exec.Run(ctx)
	require.NoError(t, err)
	assert.True(t, result.Failed)

	for _, ch := range release.Channels() {
		assert.Equal(t, pipeline.StateSucceeded, result.Final[pipeline.BuildJobID(ch, "alpha")])
		assert.Equal(t, pipeline.StateFailed, result.Final[pipeline.BuildJobID(ch, "beta")])
		assert.Equal(t, pipeline.StateSkipped, result.Final[pipeline.MergeJobID(ch)])

		outcome := result.Outcomes[pipeline.BuildJobID(ch, "beta")]
		assert.True(t, errors.Is(outcome.Err, serrors.ErrBuild))

		// The surviving platform's bundle was uploaded; the failed one and
		// the merged bundle were not.
		assert.True(t, store.Exists(release.PlatformBundleName(ch, "alpha")))
		assert.False(t, store.Exists(release.PlatformBundleName(ch, "beta")))
		assert.False(t, store.Exists(release.MergedBundleName(ch, testCandidate(t))))
	}
}
