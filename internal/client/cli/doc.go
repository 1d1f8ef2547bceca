// Package cli provides the interactive foodduck account client.
//
// It talks to the account HTTP API and keeps the current session (email and
// token pair) in memory. An expired access token is reissued once with the
// refresh token before the command is retried.
//
// Commands:
//   - signup, login, forgot, verify (anonymous)
//   - me, passwd, profile, logout, signout (logged in)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
