// Package config defines the backupd configuration document and the
// self-healing store that loads, validates, and persists it.
package config
