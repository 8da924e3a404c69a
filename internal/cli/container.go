package cli

import (
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/dshills/repolens/internal/config"
	"github.com/dshills/repolens/internal/github"
	"github.com/dshills/repolens/internal/providers"
	"github.com/dshills/repolens/internal/review"
	"github.com/dshills/repolens/internal/server"
)

// modelSetupError marks a provider that could not be constructed, which is
// almost always a missing API key.
type modelSetupError struct {
	err error
}

func (e *modelSetupError) Error() string { return "configuring model provider: " + e.err.Error() }

func (e *modelSetupError) Unwrap() error { return e.err }

// RegisterProviders registers every collaborator of the review pipeline and
// the HTTP server with the DIG container. The effective configuration must
// be provided separately.
func RegisterProviders(container *dig.Container) error {
	constructors := []any{
		newAppLogger,
		newGitHubClient,
		newModelClient,
		newRules,
		newSelector,
		newReviewer,
		newPipeline,
		newServer,
	}
	for _, c := range constructors {
		if err := container.Provide(c); err != nil {
			return err
		}
	}
	return nil
}

// newContainer returns a container holding cfg and all registered providers.
func newContainer(cfg config.Config) (*dig.Container, error) {
	container := dig.New()
	if err := container.Provide(func() config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := RegisterProviders(container); err != nil {
		return nil, err
	}
	return container, nil
}

// invoke resolves fn's arguments from a fresh container built for cfg.
// Constructor failures are unwrapped from dig's error chain.
func invoke(cfg config.Config, fn any) error {
	container, err := newContainer(cfg)
	if err != nil {
		return err
	}
	if err := container.Invoke(fn); err != nil {
		return dig.RootCause(err)
	}
	return nil
}

func newAppLogger(cfg config.Config) *logrus.Logger {
	return newLogger(cfg.Log, os.Stderr)
}

func newGitHubClient(cfg config.Config, logger *logrus.Logger) (*github.Client, error) {
	return github.NewClient(github.Options{
		Token:                cfg.GitHub.Token,
		APIURL:               cfg.GitHub.APIURL,
		GraphQLURL:           cfg.GitHub.GraphQLURL,
		Branch:               cfg.GitHub.Branch,
		ResolveDefaultBranch: cfg.GitHub.ResolveDefaultBranch,
		WaitOnRateLimit:      cfg.GitHub.WaitOnRateLimit,
		Logger:               logger,
	})
}

func newModelClient(cfg config.Config) (providers.Client, error) {
	client, err := providers.New(providers.Options{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		MaxTokens:  cfg.LLM.MaxTokens,
		MaxRetries: cfg.LLM.MaxRetries,
		Timeout:    time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, &modelSetupError{err: err}
	}
	return client, nil
}

func newRules(cfg config.Config) (*review.Rules, error) {
	return review.LoadRules(cfg.Review.RulesFile)
}

func newSelector(model providers.Client, logger *logrus.Logger) *review.Selector {
	return review.NewSelector(model, logger.WithField("provider", model.Name()))
}

func newReviewer(cfg config.Config, gh *github.Client, model providers.Client, rules *review.Rules, logger *logrus.Logger) *review.Reviewer {
	return review.NewReviewer(gh, model, review.ReviewerOptions{
		MaxFileBytes:  cfg.Review.MaxFileBytes,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		RedactPaths:   cfg.Privacy.RedactPaths,
		Rules:         rules,
	}, logger.WithField("provider", model.Name()))
}

func newPipeline(cfg config.Config, gh *github.Client, selector *review.Selector, reviewer *review.Reviewer, logger *logrus.Logger) *review.Pipeline {
	return review.New(review.Deps{
		Tree:        gh,
		Selector:    selector,
		Reviewer:    reviewer,
		Concurrency: cfg.Review.Concurrency,
		Logger:      logger,
	})
}

func newServer(pipeline *review.Pipeline, gh *github.Client, logger *logrus.Logger) *server.Server {
	return server.New(pipeline, gh, logger)
}

// exitCodeFor classifies a failure that stopped a command.
func exitCodeFor(err error) int {
	var setup *modelSetupError
	if errors.As(err, &setup) || providers.IsAuthError(err) {
		return ExitAuthError
	}
	return ExitRuntimeError
}
