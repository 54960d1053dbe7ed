// Package main hosts the bilingual CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the pipeline
// from it, and renders results: `run` produces a transcript, `history`
// reads the SQLite run log, `deps` checks external tools, and `config`
// scaffolds or validates the TOML file. Behavior lives in the internal
// packages; commands here only parse flags and print.
package main
