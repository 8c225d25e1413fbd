// Package cli implements the surf command line: checking a program,
// dumping its token stream and inspecting its import graph.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	urfave "github.com/urfave/cli/v3"

	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/token"
)

// DefaultEntry is checked when no file is given.
const DefaultEntry = config.MainFuncName + config.SourceFileExt

// errReported means the failure was already rendered to the user.
var errReported = errors.New("reported")

type app struct {
	stdout io.Writer
	stderr io.Writer
	report *Reporter
}

// Run executes the command line in args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, color bool) int {
	a := &app{stdout: stdout, stderr: stderr, report: NewReporter(stderr, color)}
	err := a.command().Run(ctx, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
		return 1
	}
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) {
		a.report.Error(de)
	} else {
		fmt.Fprintf(stderr, "Error: %s\n", err)
	}
	return 1
}

func (a *app) command() *urfave.Command {
	configFlag := &urfave.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to " + config.ProjectFileName + " (default: search upward from the entry file)",
	}

	return &urfave.Command{
		Name:      "surf",
		Usage:     "Front end for the Surf programming language",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log every stage of the build",
			},
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			level := slog.LevelWarn
			if cmd.Bool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},
		Commands: []*urfave.Command{
			{
				Name:      "check",
				Aliases:   []string{"c"},
				Usage:     "Checks a program and writes its model when configured",
				ArgsUsage: "[file]",
				Flags: []urfave.Flag{
					configFlag,
					&urfave.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write the validated program model to this file",
					},
					&urfave.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "check again whenever a source, header or manifest changes",
					},
					&urfave.StringSliceFlag{
						Name:  "exclude",
						Usage: "glob of directory or file names ignored by --watch",
					},
					&urfave.DurationFlag{
						Name:  "debounce",
						Value: 300 * time.Millisecond,
						Usage: "quiet period before --watch re-runs the check",
					},
				},
				Action: a.checkAction,
			},
			{
				Name:      "tokens",
				Aliases:   []string{"t"},
				Usage:     "Prints the token stream after import splicing",
				ArgsUsage: "[file]",
				Flags:     []urfave.Flag{configFlag},
				Action:    a.tokensAction,
			},
			{
				Name:      "imports",
				Aliases:   []string{"i"},
				Usage:     "Lists every file a program reaches through its imports",
				ArgsUsage: "[file]",
				Flags: []urfave.Flag{
					configFlag,
					&urfave.StringFlag{
						Name:  "why",
						Usage: "print the import chain from the entry file to this file",
					},
				},
				Action: a.importsAction,
			},
		},
	}
}

func entryArg(cmd *urfave.Command) string {
	if cmd.Args().Len() > 0 {
		return cmd.Args().First()
	}
	return DefaultEntry
}

func (a *app) checkAction(ctx context.Context, cmd *urfave.Command) error {
	entry := entryArg(cmd)
	opts := Options{ConfigPath: cmd.String("config"), Output: cmd.String("output")}

	ok := a.check(entry, opts)
	if !cmd.Bool("watch") {
		if !ok {
			return errReported
		}
		return nil
	}
	return a.watch(ctx, entry, opts, cmd.StringSlice("exclude"), cmd.Duration("debounce"))
}

// check runs one full build and reports its outcome.
func (a *app) check(entry string, opts Options) bool {
	d, err := NewDriver(entry, opts)
	if err != nil {
		a.report.Error(diagnostics.As(err))
		return false
	}
	defer d.Close()

	ctx := d.Check(entry)
	for _, w := range ctx.Warnings {
		a.report.Warning(w)
	}
	if ctx.Failed() {
		for _, e := range ctx.Errors {
			a.report.Error(e)
		}
		return false
	}

	sources := 0
	for _, f := range ctx.Files {
		if config.HasSourceExt(f) {
			sources++
		}
	}
	a.report.Info(fmt.Sprintf("%s: %d functions in %d source files, no errors",
		token.DisplayPath(entry), len(ctx.Program.Functions), sources))
	return true
}

func (a *app) watch(ctx context.Context, entry string, opts Options, excludes []string, debounce time.Duration) error {
	root, err := filepath.Abs(filepath.Dir(entry))
	if err != nil {
		return err
	}
	patterns := config.DefaultHeaderPatterns
	if d, err := NewDriver(entry, opts); err == nil {
		patterns = d.Config.HeaderPatterns
		_ = d.Close()
	}

	w, err := NewWatcher(debounce, append(append([]string(nil), DefaultWatchExcludes...), excludes...), patterns,
		func(paths []string) {
			slog.Info("change detected", "files", len(paths), "first", paths[0])
			a.check(entry, opts)
		})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{root}); err != nil {
		return err
	}
	a.report.Info("watching " + token.DisplayPath(root) + " for changes")
	<-ctx.Done()
	return nil
}

func (a *app) tokensAction(_ context.Context, cmd *urfave.Command) error {
	entry := entryArg(cmd)
	d, err := NewDriver(entry, Options{ConfigPath: cmd.String("config")})
	if err != nil {
		return err
	}
	defer d.Close()

	tokens, err := d.Tokens(entry)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Fprintf(a.stdout, "%-28s %-18s %q\n", tok.Trace(), tok.Type, tok.Lexeme)
	}
	return nil
}

func (a *app) importsAction(_ context.Context, cmd *urfave.Command) error {
	entry := entryArg(cmd)
	d, err := NewDriver(entry, Options{ConfigPath: cmd.String("config")})
	if err != nil {
		return err
	}
	defer d.Close()

	graph, ctx := d.Imports(entry)
	if ctx.Failed() {
		for _, e := range ctx.Errors {
			a.report.Error(e)
		}
		return errReported
	}

	if why := cmd.String("why"); why != "" {
		target, err := filepath.Abs(why)
		if err != nil {
			return err
		}
		chain, ok := graph.ImportChain(graph.Entry, target)
		if !ok {
			return fmt.Errorf("%s is not imported by %s", why, token.DisplayPath(graph.Entry))
		}
		for _, line := range diagnostics.ChainTrace(chain) {
			fmt.Fprintln(a.stdout, line)
		}
		return nil
	}

	for _, f := range graph.Files {
		kind := "source"
		if _, ok := graph.Headers[f]; ok {
			kind = "header"
		}
		fmt.Fprintf(a.stdout, "%-7s %s\n", kind, token.DisplayPath(f))
		for _, dep := range graph.Edges[f] {
			fmt.Fprintf(a.stdout, "        -> %s\n", token.DisplayPath(dep))
		}
	}
	return nil
}
