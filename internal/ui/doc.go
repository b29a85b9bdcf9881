// Package ui provides terminal UI components for the opensprinkler-cfg CLI.
//
// Most commands follow a "run once and exit" pattern: a Header, the
// command output, and a Result box. Results for write operations come from
// NewCommandResult, which turns the controller's return code into a success
// or failure box; NewErrorResult adds troubleshooting tips for transport
// errors and rejected commands.
//
// The watch command is the one interactive view. WatchModel is a Bubble Tea
// model that polls /jc and /js on a tea.Tick and renders the station table:
//
//	fetch := ui.ClientFetcher(client, pw, stations)
//	if err := ui.RunWatch(ctx, "Garden", fetch, 5*time.Second); err != nil {
//	    return err
//	}
//
// # Plain Output
//
// Printer renders boxes only when stdout is a terminal. Piped output gets
// plain text so scripts can grep it.
//
// # Logging Integration
//
// zap logging is silent unless OPENSPRINKLER_LOG_LEVEL is set, so curated
// UI output is not interleaved with log lines.
package ui
