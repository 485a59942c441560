package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// terminal reports whether stdout is a terminal; formatting is disabled
// for pipes and redirects
func terminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// boldMsg returns the string formatted as bold using pterm
func boldMsg(s string) string {
	if !terminal() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// successMsg returns the string formatted as a success line
func successMsg(s string) string {
	if !terminal() {
		return s
	}
	return pterm.Success.Sprint(s)
}

// errorMsg returns the string formatted as an error line
func errorMsg(s string) string {
	if !terminal() {
		return s
	}
	return pterm.Error.Sprint(s)
}
