package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const replHelp = `Lines are learned, then answered with a new sentence.
Commands:
  :stats                      show chain statistics
  :save [file]                save to the database, or to a snapshot file (.json or .json.xz)
  :load [file]                load from the database, or from a snapshot file
  :selector <name> [temp]     weighted, highest, lowest, naive or temperature
  :prune <n>                  drop edges seen n times or fewer
  :help                       show this help
  :quit                       exit`

// REPL is the interactive prompt loop.
type REPL struct {
	session *Session
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a prompt loop reading lines from in and answering on out.
func NewREPL(session *Session, in io.Reader, out io.Writer) *REPL {
	return &REPL{session: session, in: in, out: out}
}

// Run reads lines until EOF, :quit or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	r.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ":") {
			quit := r.command(ctx, line)
			if quit {
				return nil
			}
		} else {
			r.session.Parse(line)
			r.reply(r.produce(line))
		}
		r.prompt()
	}
	return scanner.Err()
}

func (r *REPL) prompt() {
	_, _ = fmt.Fprint(r.out, "> ")
}

func (r *REPL) reply(text string) {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", text)
}

func (r *REPL) replyError(err error) {
	r.reply(fmt.Sprintf("{ ERROR: %v }", err))
}

// produce composes an answer to line, rendering failures inline.
func (r *REPL) produce(line string) string {
	out, err := r.session.Compose(line, 0)
	if err != nil {
		return fmt.Sprintf("{ ERROR: %v }", err)
	}
	return out
}

// command runs a :command and reports whether the loop should stop.
func (r *REPL) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case ":quit", ":q", ":exit":
		return true

	case ":help":
		r.reply(replHelp)

	case ":stats":
		st := r.session.Stats()
		r.reply(fmt.Sprintf("textlets: %d, edges: %d, seeds: %d, total hits: %d, starting words: %d, selector: %s",
			st.Textlets, st.Edges, st.Seeds, st.TotalHits, st.StartingWords, r.session.SelectorName()))

	case ":save":
		var err error
		if len(args) > 0 {
			err = r.session.SaveSnapshot(args[0])
		} else {
			err = r.session.Save(ctx)
		}
		if err != nil {
			r.replyError(err)
			return false
		}
		r.reply("saved")

	case ":load":
		var err error
		if len(args) > 0 {
			err = r.session.LoadSnapshot(args[0])
		} else {
			err = r.session.Load(ctx)
		}
		if err != nil {
			r.replyError(err)
			return false
		}
		r.reply("loaded")

	case ":selector":
		if len(args) == 0 {
			r.reply(r.session.SelectorName())
			return false
		}
		temperature := r.session.Temperature()
		if len(args) > 1 {
			t, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				r.replyError(fmt.Errorf("invalid temperature %q", args[1]))
				return false
			}
			temperature = t
		}
		if err := r.session.SetSelector(args[0], temperature); err != nil {
			r.replyError(err)
			return false
		}
		r.reply("selector: " + args[0])

	case ":prune":
		if len(args) != 1 {
			r.replyError(fmt.Errorf("usage: :prune <n>"))
			return false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			r.replyError(fmt.Errorf("invalid hit count %q", args[0]))
			return false
		}
		r.reply(fmt.Sprintf("removed %d edges", r.session.Prune(n)))

	default:
		r.replyError(fmt.Errorf("unknown command %s, try :help", name))
	}
	return false
}
