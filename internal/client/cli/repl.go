package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/ghosttips/internal/client/client"
	"github.com/dmitrijs2005/ghosttips/internal/common"
)

// runREPL reads commands line by line and dispatches them until "exit",
// "quit" or end of input. Command errors are printed and never end the
// loop.
func runREPL(ctx context.Context, a *App) {
	for {
		fmt.Fprintf(a.out, "ghosttips %s> ", a.getStatus())

		line, err := a.reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			fmt.Fprintln(a.out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]

		switch name {
		case "help":
			a.printHelp()
		case "login":
			a.printError(a.Login(ctx))
		case "logout":
			a.printError(a.Logout(ctx))
		case "whoami":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, a.account)
			} else {
				fmt.Fprintln(a.out, "Not signed in")
			}
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			a.printError(a.exec(ctx, name, args))
		}
	}
}

func (a *App) exec(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	if cmd.auth && !a.isLoggedIn() {
		return fmt.Errorf("%s requires login", name)
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	return cmd.run(a, ctx, args)
}

func (a *App) printHelp() {
	names := make([]string, 0, len(commands))
	for name, cmd := range commands {
		if !cmd.auth || a.isLoggedIn() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	fmt.Fprintln(a.out, "Available commands:")
	for _, name := range names {
		fmt.Fprintf(a.out, "  %-30s %s\n", commands[name].usage, commands[name].help)
	}
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "  %-30s %s\n", "logout", "forget the access token")
	} else {
		fmt.Fprintf(a.out, "  %-30s %s\n", "login", "sign in with an access token")
	}
	fmt.Fprintf(a.out, "  %-30s %s\n", "exit", "leave the program")
}

// printError reports err in user terms. A nil err prints nothing.
func (a *App) printError(err error) {
	var msg string
	switch {
	case err == nil:
		return
	case errors.Is(err, client.ErrUnavailable):
		msg = "server is unavailable, try again later"
	case errors.Is(err, client.ErrUnauthorized):
		msg = "access token rejected, please login again"
	case errors.Is(err, common.ErrorUnauthorized):
		msg = "that belongs to someone else"
	case errors.Is(err, common.ErrorNotFound):
		msg = "not found"
	default:
		msg = err.Error()
	}
	fmt.Fprintf(a.out, "Error: %s\n", msg)
}
