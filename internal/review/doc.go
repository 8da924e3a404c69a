// Package review runs LLM code reviews over a GitHub repository.
//
// A Pipeline fetches the repository tree, asks the model to pick the files
// worth reviewing (Selector), then reviews each picked file (Reviewer) with
// bounded concurrency. Only tree and selection failures abort a run. A file
// that cannot be fetched or whose review cannot be parsed is logged and
// dropped from the batch, which keeps the repository listing order.
//
// Model answers are validated before they are returned: severities are
// normalised to low, medium or high, ratings must lie in [0, 10], and
// responses that do not fit the review schema are rejected.
//
// Rules packs (rules.go) add focus areas and required checks to every
// review prompt and can force the severity of issues of a given type.
package review
