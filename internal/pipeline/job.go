// Package pipeline models a release run as a DAG of jobs: the two
// validation gates, one build per channel and platform, and one merge per
// channel. The planner materializes the graph, the executor runs it with
// bounded parallelism, and a failure skips exactly the jobs that depended
// on the failed one.
package pipeline

import (
	"fmt"

	"github.com/stagehand/cli/internal/release"
)

// JobKind classifies a job in the run graph.
type JobKind string

const (
	// KindValidate resolves the trigger into a release candidate.
	KindValidate JobKind = "validate"

	// KindVerify gates the run on the project's declared version.
	KindVerify JobKind = "verify"

	// KindBuild produces and smoke-tests artifacts for one platform and
	// channel.
	KindBuild JobKind = "build"

	// KindMerge combines a channel's per-platform bundles into one.
	KindMerge JobKind = "merge"
)

// IDs of the two gate jobs.
const (
	ValidateJobID = "validate"
	VerifyJobID   = "verify"
)

// BuildJobID returns the job ID for one platform build.
func BuildJobID(ch release.Channel, platform string) string {
	return fmt.Sprintf("build/%s/%s", ch, platform)
}

// MergeJobID returns the job ID for one channel merge.
func MergeJobID(ch release.Channel) string {
	return fmt.Sprintf("merge/%s", ch)
}

// Job is one node of the run graph.
type Job struct {
	// ID is the unique job identifier, e.g. "build/pypi/macos-14".
	ID string

	// Kind is the job classification.
	Kind JobKind

	// Channel is set for build and merge jobs.
	Channel release.Channel

	// Platform is set for build jobs.
	Platform string

	// Needs lists the IDs of jobs that must succeed before this one runs.
	Needs []string
}
