// Package output renders smokespec runs for the terminal.
//
// The console formatter prints one line per check, the reasons behind any
// failure, a summary line and, on success, the final confirmation message.
// Colors come from fatih/color and can be switched off.
package output
