// Package staging manages per-run scratch arenas under paths.work_dir and
// removes arenas abandoned by crashed runs.
package staging
