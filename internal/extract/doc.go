// Package extract pulls a JSON payload out of free-form model output.
//
// Models wrap structured answers in markdown fences, surround them with
// prose, or return bare JSON. JSON handles all three and reports a miss
// with a false return instead of an error: an unparseable answer is an
// expected outcome, not a fault.
package extract
