// Package runner executes hitassert check files.
//
// For each check the runner resolves variables, loads the source
// collection, wraps it in a subject reporting to a per-check collector and
// dispatches the expectation. Checks run sequentially or on a bounded
// worker pool; results keep file order either way.
package runner
