// Package config loads settings for the GhostTips CLI.
//
// Sources are applied in order, later ones winning:
//
//  1. Defaults (LoadDefaults).
//  2. Environment: GHOSTTIPS_SERVER and GHOSTTIPS_TOKEN.
//  3. A JSON file given with -c or -config.
//  4. Command-line flags -a (server address), -i (online check interval in
//     seconds) and -token.
//
// The access token is never written to the JSON file by the CLI; it is
// accepted there only so that scripted setups can provide it.
package config
