package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/repolens/internal/review"
)

// JSONWriter outputs the batch exactly as the HTTP API returns it.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *Report) error {
	batch := report.Batch
	if batch == nil {
		batch = &review.Batch{Status: review.StatusSuccess}
	}
	if batch.Data == nil {
		b := *batch
		b.Data = []review.FileReview{}
		batch = &b
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
