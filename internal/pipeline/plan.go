package pipeline

import (
	"fmt"

	"github.com/stagehand/cli/internal/config"
)

// Plan is the immutable job graph for one run. Jobs are held in
// topological order: every job appears after all of its needs.
type Plan struct {
	jobs       []Job
	byID       map[string]int
	dependents map[string][]string
}

// NewPlan materializes the job DAG for a release: validate, then verify,
// then one build per channel and platform, then one merge per channel
// waiting on all of that channel's builds. The two channels are mutually
// unordered; within a channel the platform builds share no edges.
func NewPlan(rel *config.Release) (*Plan, error) {
	channels := rel.ChannelList()

	jobs := make([]Job, 0, 2+len(channels)*(len(rel.Platforms)+1))
	jobs = append(jobs, Job{ID: ValidateJobID, Kind: KindValidate})
	jobs = append(jobs, Job{ID: VerifyJobID, Kind: KindVerify, Needs: []string{ValidateJobID}})

	gates := []string{ValidateJobID, VerifyJobID}

	for _, ch := range channels {
		builds := make([]string, 0, len(rel.Platforms))
		for _, platform := range rel.Platforms {
			id := BuildJobID(ch, platform)
			jobs = append(jobs, Job{
				ID:       id,
				Kind:     KindBuild,
				Channel:  ch,
				Platform: platform,
				Needs:    append([]string(nil), gates...),
			})
			builds = append(builds, id)
		}
		jobs = append(jobs, Job{
			ID:      MergeJobID(ch),
			Kind:    KindMerge,
			Channel: ch,
			Needs:   builds,
		})
	}

	return assemble(jobs)
}

// assemble indexes the jobs and checks the graph shape.
func assemble(jobs []Job) (*Plan, error) {
	p := &Plan{
		jobs:       jobs,
		byID:       make(map[string]int, len(jobs)),
		dependents: make(map[string][]string),
	}

	for i, job := range jobs {
		if _, dup := p.byID[job.ID]; dup {
			return nil, fmt.Errorf("duplicate job %q in plan", job.ID)
		}
		p.byID[job.ID] = i
	}

	// Needs must point backwards; the plan order doubles as a
	// topological order.
	for i, job := range jobs {
		for _, need := range job.Needs {
			idx, ok := p.byID[need]
			if !ok {
				return nil, fmt.Errorf("job %q needs unknown job %q", job.ID, need)
			}
			if idx >= i {
				return nil, fmt.Errorf("job %q needs %q which does not precede it", job.ID, need)
			}
			p.dependents[need] = append(p.dependents[need], job.ID)
		}
	}

	return p, nil
}

// Jobs returns the jobs in topological order. The slice is shared; callers
// must not modify it.
func (p *Plan) Jobs() []Job {
	return p.jobs
}

// Job returns the job with the given ID.
func (p *Plan) Job(id string) (Job, bool) {
	idx, ok := p.byID[id]
	if !ok {
		return Job{}, false
	}
	return p.jobs[idx], true
}

// Len returns the number of jobs in the plan.
func (p *Plan) Len() int {
	return len(p.jobs)
}
