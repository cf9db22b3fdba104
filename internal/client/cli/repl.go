package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"unicode"
)

const helpText = `Available commands:
  dashboard              usage per category and recent files
  ls <section> [sort]    browse documents|images|media|others; sort is <createdAt|name|size>-<asc|desc>
  search <text>          search file names; 'search' alone clears the search
  open <n>               open the n-th file of the last listing
  rename <n> <name>      rename the n-th file; the extension is kept when omitted
  delete <n>             delete the n-th file
  download <n> [dir]     save the n-th file into dir (default: current directory)
  upload <paths...>      upload local files
  tasks                  show uploads in progress
  cancel <id>            cancel an upload (an id prefix is enough)
  status                 connection, session and quota
  exit | quit            leave the program`

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Dashboard(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Search(ctx context.Context, text string) error
	Open(ctx context.Context, arg string) error
	Rename(ctx context.Context, arg, name string) error
	Delete(ctx context.Context, arg string) error
	Download(ctx context.Context, arg, dir string) error
	Upload(ctx context.Context, paths []string) error
	Tasks(ctx context.Context) error
	Cancel(ctx context.Context, id string) error
	Status(ctx context.Context) error
}

// runREPL reads commands line by line from in and dispatches them to a.
// The loop exits on EOF, on "exit"/"quit" or when ctx is done.
//
// Errors returned by command handlers are printed and otherwise ignored;
// one failing command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in io.Reader, out *output) {
	scanner := bufio.NewScanner(in)

	for {
		if ctx.Err() != nil {
			return
		}
		out.Printf("ck %s> ", statusFn())
		if !scanner.Scan() {
			out.Println()
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			out.Println(helpText)
		case "dashboard", "d":
			err = a.Dashboard(ctx)
		case "ls", "l", "list":
			err = a.List(ctx, args)
		case "search", "s":
			err = a.Search(ctx, restAfter(line, 1))
		case "open", "o":
			if len(args) != 1 {
				out.Println("Usage: open <n>")
				continue
			}
			err = a.Open(ctx, args[0])
		case "rename", "mv":
			name := restAfter(line, 2)
			if len(args) < 2 || name == "" {
				out.Println("Usage: rename <n> <name>")
				continue
			}
			err = a.Rename(ctx, args[0], name)
		case "delete", "rm":
			if len(args) != 1 {
				out.Println("Usage: delete <n>")
				continue
			}
			err = a.Delete(ctx, args[0])
		case "download", "get":
			if len(args) < 1 || len(args) > 2 {
				out.Println("Usage: download <n> [dir]")
				continue
			}
			dir := "."
			if len(args) == 2 {
				dir = args[1]
			}
			err = a.Download(ctx, args[0], dir)
		case "upload", "u":
			if len(args) == 0 {
				out.Println("Usage: upload <paths...>")
				continue
			}
			err = a.Upload(ctx, args)
		case "tasks", "t":
			err = a.Tasks(ctx)
		case "cancel":
			if len(args) != 1 {
				out.Println("Usage: cancel <id>")
				continue
			}
			err = a.Cancel(ctx, args[0])
		case "status":
			err = a.Status(ctx)
		case "exit", "quit", "q":
			out.Println("Bye!")
			return
		default:
			out.Println("Unknown command:", cmd)
		}

		if err != nil {
			out.Failf("Error: %v\n", err)
		}
	}
}

// restAfter returns line without its first n fields, trimmed.
func restAfter(line string, n int) string {
	s := strings.TrimSpace(line)
	for i := 0; i < n; i++ {
		j := strings.IndexFunc(s, unicode.IsSpace)
		if j < 0 {
			return ""
		}
		s = strings.TrimSpace(s[j:])
	}
	return s
}
