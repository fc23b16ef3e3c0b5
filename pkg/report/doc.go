// Package report writes and reads the JSON results file of a backup run.
package report
