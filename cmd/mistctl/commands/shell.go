package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/mist/internal/bridge"
)

const historyFile = ".mistctl_history"

func init() {
	rootCmd.AddCommand(shellCmd)
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session against one helper",
	Long: `Start the helper and read operations from the terminal until EOF or
:quit. Each line is an operation name followed by its arguments; double
quotes group words into one argument.

Shell commands:
  :poll      print queued callbacks
  :state     print the helper state, session and uptime
  :error     print the last error message
  :restart   stop and start the helper
  :metrics   print bridge metrics
  :help      list operations
  :quit      exit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withBridge(cmd, func(ctx context.Context, b *bridge.Bridge, p *printer) error {
			return runShell(ctx, b, p, cmd.OutOrStdout())
		})
	},
}

func runShell(ctx context.Context, b *bridge.Bridge, p *printer, out io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeLine)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("mist> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			quit, err := shellCommand(ctx, b, p, out, line)
			if err != nil {
				p.failure(err)
			}
			if quit {
				return nil
			}
			continue
		}

		fields, err := splitArgs(line)
		if err != nil {
			p.failure(err)
			continue
		}
		value, err := runOperation(ctx, b, fields[0], fields[1:])
		if err != nil {
			p.failure(err)
			continue
		}
		p.reply(fields[0], value)
	}
}

func shellCommand(ctx context.Context, b *bridge.Bridge, p *printer, out io.Writer, line string) (quit bool, err error) {
	switch strings.ToLower(line) {
	case ":quit", ":q", ":exit":
		return true, nil
	case ":poll":
		events, err := b.Poll(ctx)
		p.events(events)
		return false, err
	case ":state":
		fmt.Fprintln(out, stateLine(b, time.Now()))
	case ":error":
		fmt.Fprintln(out, b.LastError())
	case ":restart":
		if err := b.Deinit(ctx); err != nil {
			p.failure(err)
		}
		return false, b.Init(ctx)
	case ":metrics":
		return false, b.Metrics().WriteText(out)
	case ":help":
		for _, name := range operationNames() {
			fmt.Fprintf(out, "%-45s %s\n", name, operations[name].usage)
		}
	default:
		return false, errors.Newf("unknown command %q, type :help", line)
	}
	return false, nil
}

func completeLine(line string) []string {
	if strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, name := range operationNames() {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	for _, c := range []string{":poll", ":state", ":error", ":restart", ":metrics", ":help", ":quit"} {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// stateLine describes the helper state and, while one runs, its session and
// uptime.
func stateLine(b *bridge.Bridge, now time.Time) string {
	state := b.State().String()
	sess := b.Session()
	if sess == "" {
		return state
	}
	started, err := sess.Started()
	if err != nil {
		return fmt.Sprintf("%s session=%s", state, sess)
	}
	return fmt.Sprintf("%s session=%s uptime=%s", state, sess, now.Sub(started).Truncate(time.Millisecond))
}

// splitArgs splits on whitespace, keeping double quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				args = append(args, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if pending {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}
