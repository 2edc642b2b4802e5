// Package trigger resolves which of the two release triggers started a run.
// The trigger is an external fact supplied by the invoking system; it is
// decided once at entry and resolved into a single validated candidate that
// every later stage consumes.
package trigger

import (
	"fmt"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/release"
)

// Kind identifies a trigger variant.
type Kind string

const (
	// KindTagPush is the automatic trigger from a pushed release tag.
	KindTagPush Kind = "tag-push"

	// KindManualDispatch is the operator trigger with explicit inputs.
	KindManualDispatch Kind = "manual-dispatch"
)

// Trigger is one of the two ways a release run starts.
type Trigger interface {
	// Kind identifies the variant.
	Kind() Kind

	// Resolve validates the trigger's inputs into the run's candidate.
	Resolve(project string) (release.Candidate, error)

	// Describe returns a short human-readable description for logs.
	Describe() string
}

// TagPush is the trigger for an automatic tag-push run.
type TagPush struct {
	Tag string
}

// Kind identifies the variant.
func (t TagPush) Kind() Kind {
	return KindTagPush
}

// Resolve parses the pushed tag into the run's candidate.
func (t TagPush) Resolve(project string) (release.Candidate, error) {
	return release.ParseTag(t.Tag, project)
}

// Describe returns a short human-readable description for logs.
func (t TagPush) Describe() string {
	return fmt.Sprintf("tag push %s", t.Tag)
}

// ManualDispatch is the trigger for an operator-run with explicit inputs.
type ManualDispatch struct {
	Version string
	RC      string
}

// Kind identifies the variant.
func (m ManualDispatch) Kind() Kind {
	return KindManualDispatch
}

// Resolve validates the explicit inputs into the run's candidate.
func (m ManualDispatch) Resolve(project string) (release.Candidate, error) {
	return release.NewCandidate(m.Version, m.RC)
}

// Describe returns a short human-readable description for logs.
func (m ManualDispatch) Describe() string {
	return fmt.Sprintf("manual dispatch %src%s", m.Version, m.RC)
}

// FromInputs selects the trigger from mutually exclusive command inputs.
// Exactly one of tag or the (version, rc) pair must be supplied.
func FromInputs(tag, version, rc string) (Trigger, error) {
	tagSet := tag != ""
	manualSet := version != "" || rc != ""

	switch {
	case tagSet && manualSet:
		return nil, serrors.NewValidationError(
			"a tag and explicit version inputs are mutually exclusive",
			"tag",
			tag,
			"Pass either --tag or --release-version with --rc, not both",
		)
	case tagSet:
		return TagPush{Tag: tag}, nil
	case version != "" && rc != "":
		return ManualDispatch{Version: version, RC: rc}, nil
	case manualSet:
		missing := "rc"
		if version == "" {
			missing = "release-version"
		}
		return nil, serrors.NewValidationError(
			"explicit inputs need both a version and an rc",
			missing,
			"",
			"Pass --release-version and --rc together",
		)
	default:
		return nil, serrors.NewValidationError(
			"no release trigger supplied",
			"tag",
			"",
			"Pass --tag for a tag-push run or --release-version with --rc for a manual run",
		)
	}
}
