package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	VerifyEmail(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	Me(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	UploadProfile(ctx context.Context) error
	Logout(ctx context.Context) error
	SignOut(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF, "exit" or "quit". Command prompts share reader, so the loop must
// not buffer ahead of them.
//
//	Not logged in: help, signup, login, verify, forgot, exit
//	Logged in:     help, me, passwd, profile, verify, logout, signout, exit
//
// Handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("duck (%s)> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, passwd, profile, verify, logout, signout, exit")
			} else {
				printlnFn("Available commands: signup, login, verify, forgot, exit")
			}

		case "signup":
			_ = a.SignUp(ctx)

		case "login":
			_ = a.Login(ctx)

		case "verify":
			_ = a.VerifyEmail(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "me":
			_ = a.Me(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "profile":
			_ = a.UploadProfile(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "signout":
			_ = a.SignOut(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
