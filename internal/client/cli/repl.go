package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, admin bool) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Dashboard(ctx context.Context) error
	SubAdmins(ctx context.Context) error
	AddSubAdmin(ctx context.Context) error
	Grant(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: login [admin], list <resource>, show <resource> <id>, add review|contact|visit, status, exit"
	helpLoggedIn  = "Available commands: (l)ist, show, add, edit, delete, dashboard, subadmins, addsubadmin, grant, deleteuser, whoami, status, logout, exit\n" +
		"Resources: properties, reviews, blogs, contacts, visits"
)

// runREPL starts a simple read–eval–print loop for the brokerdesk CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	help                              show available commands
//	login [admin]                     authenticate
//	logout                            end the session
//	whoami                            show the current account and grants
//	status                            backend reachability and local records
//	list <resource> [page= limit= q= key=value]
//	show <resource> <id>
//	add <resource>
//	edit <resource> <id>
//	delete <resource> <id>
//	dashboard                         record counts per resource
//	subadmins | addsubadmin           owner account management
//	grant <id> perm=true|false ...    change sub-admin permissions
//	deleteuser <id>
//	exit | quit                       leave the program
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("bd %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "login":
			cmdErr = a.Login(ctx, len(args) > 0 && args[0] == "admin")

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "add":
			cmdErr = a.Add(ctx, args)

		case "edit":
			cmdErr = a.Edit(ctx, args)

		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)

		case "dashboard":
			cmdErr = a.Dashboard(ctx)

		case "subadmins":
			cmdErr = a.SubAdmins(ctx)

		case "addsubadmin":
			cmdErr = a.AddSubAdmin(ctx)

		case "grant":
			cmdErr = a.Grant(ctx, args)

		case "deleteuser":
			cmdErr = a.DeleteUser(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describeError(cmdErr))
		}
		if err != nil {
			return
		}
	}
}
