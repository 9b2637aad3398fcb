// Package cli implements the command-line interface for boxscore-sync.
//
// The cli package provides the Cobra-based root command. It loads configuration
// from the environment and flags, installs the JSON logger, runs the sync
// pipeline under a cancellable context, and reports the merged table or a run
// summary as text or JSON on stdout.
package cli
