// Package main hosts the backupd CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into daemon
// lifecycle control, watch-list edits, destination migration, restores, log
// tailing, and cycle-history queries. It centralizes configuration resolution
// and structured logging setup so subcommands can focus on user experience
// instead of wiring.
package main
