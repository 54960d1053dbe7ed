// Package preflight provides readiness checks for the directories and
// remote services a run depends on.
//
// Directory checks always run. Network checks (the translation backend and
// the remote transcription API) only run when requested, since they send a
// real request to the provider. The CLI "bilingual deps" command prints the
// results next to the tool inventory.
package preflight
