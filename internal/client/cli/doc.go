// Package cli provides the interactive GhostTips command-line client.
//
// The user signs in by pasting an access token (read without echo), after
// which the REPL offers commands to deposit and withdraw, manage tip jars,
// send tips and reveal their own encrypted balances. A background watcher
// pings the server and switches the prompt between online and offline.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
