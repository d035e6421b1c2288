// Package ui renders sonoffctl output for terminals.
//
// Commands print through a Printer. When output is not a terminal, or --plain
// is given, a Printer writes key=value lines and "Error: <msg>" lines that are
// easy to parse from scripts. On a terminal it renders Lip Gloss boxes:
//
//   - Status: device fields, with switch states coloured and brightness drawn
//     as a gauge using the Bubbles progress bar
//   - Success: outcome of a command that changed device state
//   - Failure: the error with troubleshooting tips
//
// Confirm runs a small Bubble Tea program asking a yes/no question. It is used
// before commands that can take a device off the network.
//
// # Logging Integration
//
// Logging is controlled via SONOFF_LOG_LEVEL or --debug. When neither is set,
// zap logging is silent so only the curated output is shown.
package ui
