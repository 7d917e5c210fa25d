// Package viz renders sweep results in the terminal: lipgloss styles, a
// bubbletea progress view fed by the scheduler, and asciigraph curves.
package viz
