// Package cli provides the interactive CloudKeeper shell.
//
// It wires configuration, the remote store (embedded backend or REST
// gateway), the upload orchestrator and the search controller into a
// read-eval-print loop. A gocron scheduler probes backend liveness and
// refreshes the usage report in the background.
//
// Commands:
//   - dashboard: usage per category and the most recent files
//   - ls <section> [sort]: browse documents, images, media or others
//   - search <text>: incremental name search; an empty text clears it
//   - open <n>: open the n-th listed file, jumping to its section for search hits
//   - upload <paths...>: upload local files concurrently
//   - tasks / cancel <id>: inspect and cancel uploads
//   - status: connection, session and quota
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
