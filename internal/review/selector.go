package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dshills/repolens/internal/extract"
)

// Model sends one prompt to an LLM and returns its raw answer.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Selector asks the model which repository paths are worth reviewing.
type Selector struct {
	model  Model
	logger logrus.FieldLogger
}

// NewSelector creates a Selector.
func NewSelector(model Model, logger logrus.FieldLogger) *Selector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Selector{model: model, logger: logger}
}

// Select returns the subset of paths the model chose. Paths are not checked
// against the input; callers intersect with the tree. Model errors are
// returned unchanged.
func (s *Selector) Select(ctx context.Context, paths []string) (map[string]struct{}, error) {
	answer, err := s.model.Complete(ctx, BuildSelectionPrompt(paths))
	if err != nil {
		return nil, err
	}

	payload, ok := extract.JSON(answer)
	if !ok {
		return nil, &SelectionError{Raw: truncateRaw(answer), Err: errNoJSON}
	}
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &SelectionError{Raw: truncateRaw(answer), Err: errors.New("expected a JSON array of paths")}
	}

	var chosen []string
	if err := json.Unmarshal(trimmed, &chosen); err != nil {
		return nil, &SelectionError{Raw: truncateRaw(answer), Err: fmt.Errorf("expected a JSON array of paths: %w", err)}
	}

	selected := make(map[string]struct{}, len(chosen))
	for _, p := range chosen {
		selected[p] = struct{}{}
	}
	s.logger.WithFields(logrus.Fields{"offered": len(paths), "selected": len(selected)}).Debug("model selected files")
	return selected, nil
}
