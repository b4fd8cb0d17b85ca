// Command fintrack is the terminal front end of the personal finance
// ledger.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"golang.org/x/term"

	"fintrack/internal/app"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func main() {
	cli.LoadEnvFile()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fintrack", flag.ContinueOnError)
	fs.SetOutput(stderr)

	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	fs.StringVar(&e.user, "user", os.Getenv("FINTRACK_USER"), "username to act as (default $FINTRACK_USER)")
	fs.BoolVar(&e.plain, "plain", false, "print raw markdown instead of rendering it")

	commander := subcommands.NewCommander(fs, "fintrack")
	commander.Output = stdout
	commander.Error = stderr
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander, e)

	if err := fs.Parse(args); err != nil {
		return int(subcommands.ExitUsageError)
	}
	defer e.close()
	return int(commander.Execute(ctx))
}

// errUsage marks bad command-line input.
var errUsage = errors.New("usage")

func usageErr(format string, a ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, a...))
}

// env is the state shared by every subcommand of one invocation. The app
// is opened on first use so that help and usage errors touch nothing.
type env struct {
	user  string
	plain bool

	stdin          io.Reader
	stdout, stderr io.Writer
	reader         *bufio.Reader

	app    *app.App
	logger *log.Logger
}

func (e *env) open(ctx context.Context) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	e.logger = cli.SetupLogger(cfg, e.stderr)

	a, err := app.Open(ctx, cfg, e.logger, app.Options{})
	if err != nil {
		return nil, err
	}
	e.app = a
	cli.RunStartupBackup(ctx, e.logger, cfg, a.Backups)
	return a, nil
}

func (e *env) close() {
	if e.app == nil {
		return
	}
	if err := e.app.Close(); err != nil {
		e.logger.ErrorContext(context.Background(), "Failed to close app", log.FieldError, err)
	}
}

// session verifies the acting user. The password comes from
// FINTRACK_PASSWORD or a prompt.
func (e *env) session(ctx context.Context) (*app.App, core.Session, error) {
	a, sess, _, err := e.login(ctx)
	return a, sess, err
}

// adminSession is session restricted to administrators.
func (e *env) adminSession(ctx context.Context) (*app.App, core.Session, error) {
	a, sess, err := e.session(ctx)
	if err != nil {
		return nil, core.Session{}, err
	}
	if !sess.IsAdmin {
		return nil, core.Session{}, fmt.Errorf("%w: administrator required", core.ErrInvalidCredentials)
	}
	return a, sess, nil
}

func (e *env) login(ctx context.Context) (*app.App, core.Session, string, error) {
	a, err := e.open(ctx)
	if err != nil {
		return nil, core.Session{}, "", err
	}
	if strings.TrimSpace(e.user) == "" {
		return nil, core.Session{}, "", usageErr("no user: pass -user or set FINTRACK_USER")
	}
	password, err := e.secret("FINTRACK_PASSWORD", "Password: ")
	if err != nil {
		return nil, core.Session{}, "", err
	}
	sess, err := a.Users.VerifyUser(ctx, e.user, password)
	if err != nil {
		return nil, core.Session{}, "", err
	}
	return a, sess, password, nil
}

// secret reads a password from the named environment variable, falling
// back to a terminal prompt or one line of stdin.
func (e *env) secret(envVar, prompt string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	fmt.Fprint(e.stderr, prompt)
	defer fmt.Fprintln(e.stderr)

	if f, ok := e.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// non-terminal input, e.g. pipes and tests
	if e.reader == nil {
		e.reader = bufio.NewReader(e.stdin)
	}
	line, err := e.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// printMarkdown renders md for the terminal unless -plain was given or
// rendering fails.
func (e *env) printMarkdown(md string) {
	if !e.plain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(e.stdout, out)
				return
			}
		}
	}
	fmt.Fprint(e.stdout, md)
}

func (e *env) printf(format string, a ...any) {
	fmt.Fprintf(e.stdout, format, a...)
}

// exit reports err and maps it to an exit status.
func (e *env) exit(err error) subcommands.ExitStatus {
	if err == nil {
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(e.stderr, "Error: %v\n", err)
	if errors.Is(err, errUsage) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// command adapts a plain function to subcommands.Command.
type command struct {
	name, synopsis, usage string
	flags                 func(*flag.FlagSet)
	run                   func(ctx context.Context, e *env, f *flag.FlagSet) error
	e                     *env
}

func (c *command) Name() string     { return c.name }
func (c *command) Synopsis() string { return c.synopsis }
func (c *command) Usage() string    { return c.usage }

func (c *command) SetFlags(f *flag.FlagSet) {
	if c.flags != nil {
		c.flags(f)
	}
}

// Execute tags the invocation with a request id so every log record of
// one command can be correlated.
func (c *command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = log.WithRequestID(ctx, uuid.NewString())
	start := time.Now()
	err := c.run(ctx, c.e, f)
	if c.e.logger != nil {
		c.e.logger.DebugContext(ctx, "Command finished",
			log.FieldCommand, c.name,
			log.FieldDurationMs, time.Since(start).Milliseconds(),
			log.FieldError, err)
	}
	return c.e.exit(err)
}

func register(c *subcommands.Commander, e *env) {
	groups := []struct {
		name string
		cmds []*command
	}{
		{"setup", setupCommands()},
		{"ledger", ledgerCommands()},
		{"reports", reportCommands()},
		{"debts", debtCommands()},
	}
	for _, g := range groups {
		for _, cmd := range g.cmds {
			cmd.e = e
			c.Register(cmd, g.name)
		}
	}
}
