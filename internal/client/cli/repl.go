package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/carbuyer/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	guard(route services.Route) bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Onboard(ctx context.Context) error

	Threads(ctx context.Context) error
	NewThread(ctx context.Context) error
	Select(ctx context.Context, ref string) error
	Messages(ctx context.Context) error
	Edit(ctx context.Context) error
	Toggle(ctx context.Context, ref string) error
	Consolidate(ctx context.Context) error
	Cancel(ctx context.Context) error
	Archive(ctx context.Context, ref string) error
	Offers(ctx context.Context) error

	Inbox(ctx context.Context) error
	Open(ctx context.Context, ref string) error
	Assign(ctx context.Context, ref string) error

	Settings(ctx context.Context) error
	Gmail(ctx context.Context, action string) error
	SMS(ctx context.Context) error
}

const helpText = `Available commands:
  register | login | logout | whoami
  onboard                       set your target vehicle
  threads                       list seller threads
  new                           create a thread
  select <#|id>                 open a thread and its messages
  messages                      show messages of the open thread
  offers                        show tracked offers of the open thread
  edit | toggle <#|id> | consolidate | cancel
                                merge threads
  archive <#|id>                archive a thread
  inbox | open <#|id> | assign <#|id>
                                assign inbox emails to threads
  sms                           reply to the seller by text
  settings | gmail [status|connect|disconnect]
  exit`

// runREPL reads commands line by line and dispatches them to a. Each
// command first passes the route guard of its route: while the session is
// loading only "Loading..." is printed, and a redirect replaces the command.
// Handlers print their own errors, so the loop never stops on one. It
// returns on EOF or "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("carbuyer %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], strings.Join(parts[1:], " ")

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "register":
			if a.guard(services.RouteLogin) {
				_ = a.Register(ctx)
			}
		case "login":
			if a.guard(services.RouteLogin) {
				_ = a.Login(ctx)
			}
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.Whoami(ctx)

		case "onboard":
			if a.guard(services.RouteOnboarding) {
				_ = a.Onboard(ctx)
			}

		case "threads", "new", "select", "messages", "edit", "toggle", "consolidate",
			"cancel", "archive", "offers", "inbox", "open", "assign", "sms":
			if !a.guard(services.RouteDashboard) {
				continue
			}
			_ = dispatchDashboard(ctx, a, cmd, arg)

		case "settings", "gmail":
			if !a.guard(services.RouteSettings) {
				continue
			}
			if cmd == "settings" {
				_ = a.Settings(ctx)
			} else {
				_ = a.Gmail(ctx, arg)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func dispatchDashboard(ctx context.Context, a execIface, cmd, arg string) error {
	needsArg := func(run func(context.Context, string) error) error {
		if arg == "" {
			printlnFn(fmt.Sprintf("Usage: %s <#|id>", cmd))
			return nil
		}
		return run(ctx, arg)
	}

	switch cmd {
	case "threads":
		return a.Threads(ctx)
	case "new":
		return a.NewThread(ctx)
	case "select":
		return needsArg(a.Select)
	case "messages":
		return a.Messages(ctx)
	case "edit":
		return a.Edit(ctx)
	case "toggle":
		return needsArg(a.Toggle)
	case "consolidate":
		return a.Consolidate(ctx)
	case "cancel":
		return a.Cancel(ctx)
	case "archive":
		return needsArg(a.Archive)
	case "offers":
		return a.Offers(ctx)
	case "inbox":
		return a.Inbox(ctx)
	case "open":
		return needsArg(a.Open)
	case "assign":
		return needsArg(a.Assign)
	case "sms":
		return a.SMS(ctx)
	}
	return nil
}
