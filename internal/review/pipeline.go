package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/repolens/internal/github"
)

// DefaultConcurrency bounds how many files are reviewed at once.
const DefaultConcurrency = 4

// Stage is a step of a pipeline run.
type Stage string

const (
	StageFetchingTree   Stage = "FETCHING_TREE"
	StageSelectingFiles Stage = "SELECTING_FILES"
	StageReviewingFiles Stage = "REVIEWING_FILES"
	StageDone           Stage = "DONE"
)

// StageError reports the stage at which a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("review pipeline failed in %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// TreeFetcher lists the files of a repository.
type TreeFetcher interface {
	FetchTree(ctx context.Context, repo github.Repo) ([]github.TreeEntry, error)
}

// FileSelector picks the paths worth reviewing.
type FileSelector interface {
	Select(ctx context.Context, paths []string) (map[string]struct{}, error)
}

// FileReviewer reviews a single file.
type FileReviewer interface {
	Review(ctx context.Context, contentURL, path string) (FileReview, error)
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Tree     TreeFetcher
	Selector FileSelector
	Reviewer FileReviewer
	// Concurrency is the number of files reviewed in parallel; zero means
	// DefaultConcurrency and 1 reviews sequentially.
	Concurrency int
	Logger      logrus.FieldLogger
}

// Pipeline reviews a whole repository: it fetches the tree, lets the model
// select files, reviews each selected file and collects the results.
// A Pipeline holds no per-run state and may be used concurrently.
type Pipeline struct {
	tree        TreeFetcher
	selector    FileSelector
	reviewer    FileReviewer
	concurrency int
	logger      logrus.FieldLogger
}

// New creates a Pipeline.
func New(deps Deps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{
		tree:        deps.Tree,
		selector:    deps.Selector,
		reviewer:    deps.Reviewer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run reviews repo. Only tree and selection failures are returned; a file
// that cannot be reviewed is logged and left out of the batch.
//
// A tree without any blob yields an empty success batch without calling the
// selector, so such a run makes no model calls at all.
func (p *Pipeline) Run(ctx context.Context, repo github.Repo) (*Batch, error) {
	batch, _, err := p.RunWithStats(ctx, repo)
	return batch, err
}

// RunWithStats is Run that also reports how many reviews were attempted.
func (p *Pipeline) RunWithStats(ctx context.Context, repo github.Repo) (*Batch, Stats, error) {
	log := p.logger.WithField("repo", repo.String())
	start := time.Now()

	log.WithField("stage", StageFetchingTree).Debug("pipeline stage")
	entries, err := p.tree.FetchTree(ctx, repo)
	if err != nil {
		return nil, Stats{}, &StageError{Stage: StageFetchingTree, Err: err}
	}

	paths := make([]string, 0, len(entries))
	blobs := 0
	for _, e := range entries {
		paths = append(paths, e.Path)
		if e.Kind == github.KindBlob {
			blobs++
		}
	}
	if blobs == 0 {
		log.Info("repository has no files to review")
		return &Batch{Status: StatusSuccess, Data: []FileReview{}}, Stats{}, nil
	}

	log.WithFields(logrus.Fields{"stage": StageSelectingFiles, "entries": len(entries)}).Debug("pipeline stage")
	selected, err := p.selector.Select(ctx, paths)
	if err != nil {
		return nil, Stats{}, &StageError{Stage: StageSelectingFiles, Err: err}
	}

	// Listing order defines the order of the batch.
	targets := make([]github.TreeEntry, 0, len(selected))
	for _, e := range entries {
		if e.Kind != github.KindBlob {
			continue
		}
		if _, ok := selected[e.Path]; ok {
			targets = append(targets, e)
		}
	}

	log.WithFields(logrus.Fields{"stage": StageReviewingFiles, "files": len(targets)}).Debug("pipeline stage")
	data, stats := p.reviewAll(ctx, log, targets)

	log.WithFields(logrus.Fields{
		"stage":     StageDone,
		"attempted": stats.Attempted,
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
		"duration":  time.Since(start).Round(time.Millisecond),
	}).Info("repository review finished")

	return &Batch{Status: StatusSuccess, Data: data}, stats, nil
}

type outcome struct {
	review FileReview
	err    error
}

func (p *Pipeline) reviewAll(ctx context.Context, log logrus.FieldLogger, targets []github.TreeEntry) ([]FileReview, Stats) {
	results := make([]outcome, len(targets))

	// Tasks never return an error so one failure cannot cancel the others.
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, e := range targets {
		g.Go(func() error {
			review, err := p.reviewer.Review(ctx, e.ContentURL, e.Path)
			results[i] = outcome{review: review, err: err}
			return nil
		})
	}
	_ = g.Wait()

	stats := Stats{Attempted: len(targets)}
	data := make([]FileReview, 0, len(targets))
	for i, res := range results {
		if res.err != nil {
			stats.Failed++
			entry := log.WithField("path", targets[i].Path).WithError(res.err)
			if errors.Is(res.err, ErrFileRedacted) {
				entry.Info("skipping file")
			} else {
				entry.Warn("file review failed, skipping")
			}
			continue
		}
		stats.Succeeded++
		data = append(data, res.review)
	}
	return data, stats
}
