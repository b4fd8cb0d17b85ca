package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/report"
	"fintrack/internal/worker"
)

func setupCommands() []*command {
	var (
		adminFlag   bool
		currency    string
		requestID   int64
		eventsGrace time.Duration
	)

	return []*command{
		{
			name:     "init",
			synopsis: "create or migrate the database",
			usage:    "fintrack init\n\n  Applies migrations, creates the configured admin and takes the startup backup.\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, err := e.open(ctx)
				if err != nil {
					return err
				}
				e.printf("Database ready at %s\n", a.Store.Path())
				return nil
			},
		},
		{
			name:     "useradd",
			synopsis: "create a user account",
			usage:    "fintrack useradd [-currency <code>] [-admin] <username>\n\n  The password comes from $FINTRACK_NEW_PASSWORD or a prompt.\n  -admin requires an administrator session.\n",
			flags: func(f *flag.FlagSet) {
				f.StringVar(&currency, "currency", "", "display currency, default $DEFAULT_CURRENCY")
				f.BoolVar(&adminFlag, "admin", false, "grant administrator rights")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<username>")
				if err != nil {
					return err
				}
				a, err := e.open(ctx)
				if err != nil {
					return err
				}
				if adminFlag {
					if _, _, err := e.adminSession(ctx); err != nil {
						return err
					}
				}
				password, err := e.secret("FINTRACK_NEW_PASSWORD", "New password: ")
				if err != nil {
					return err
				}
				u, err := a.Users.CreateUser(ctx, rest[0], password, adminFlag, currency)
				if err != nil {
					return err
				}
				e.printf("User %s created successfully with ID %d\n", u.Username, u.ID)
				return nil
			},
		},
		{
			name:     "passwd",
			synopsis: "change your password",
			usage:    "fintrack passwd\n\n  The new password comes from $FINTRACK_NEW_PASSWORD or a prompt.\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, sess, old, err := e.login(ctx)
				if err != nil {
					return err
				}
				password, err := e.secret("FINTRACK_NEW_PASSWORD", "New password: ")
				if err != nil {
					return err
				}
				if err := a.Users.UpdatePassword(ctx, sess, old, password); err != nil {
					return err
				}
				e.printf("Password updated\n")
				return nil
			},
		},
		{
			name:     "currency",
			synopsis: "set your display currency",
			usage:    "fintrack currency <code>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<code>")
				if err != nil {
					return err
				}
				a, sess, err := e.session(ctx)
				if err != nil {
					return err
				}
				sess, err = a.Users.UpdateCurrency(ctx, sess, rest[0])
				if err != nil {
					return err
				}
				e.printf("Currency set to %s\n", sess.Currency)
				return nil
			},
		},
		{
			name:     "reset-request",
			synopsis: "ask an administrator to reset a password",
			usage:    "fintrack reset-request <username>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<username>")
				if err != nil {
					return err
				}
				a, err := e.open(ctx)
				if err != nil {
					return err
				}
				req, err := a.Users.RequestPasswordReset(ctx, rest[0])
				if err != nil {
					return err
				}
				e.printf("Reset request %d filed for %s\n", req.ID, req.Username)
				return nil
			},
		},
		{
			name:     "users",
			synopsis: "list users and pending password resets (admin)",
			usage:    "fintrack users\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, sess, err := e.adminSession(ctx)
				if err != nil {
					return err
				}
				users, err := a.Users.ListUsers(ctx, sess)
				if err != nil {
					return err
				}
				pending, err := a.Users.PendingPasswordRequests(ctx, sess)
				if err != nil {
					return err
				}
				e.printMarkdown(report.UsersMarkdown(users, pending))
				return nil
			},
		},
		{
			name:     "reset-password",
			synopsis: "set another user's password (admin)",
			usage:    "fintrack reset-password -request <id>\nfintrack reset-password <user-id>\n\n  The new password comes from $FINTRACK_NEW_PASSWORD or a prompt.\n",
			flags: func(f *flag.FlagSet) {
				f.Int64Var(&requestID, "request", 0, "resolve this pending reset request")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				var userID int64
				if requestID == 0 {
					rest, err := args(f, 1, "<user-id> or -request <id>")
					if err != nil {
						return err
					}
					if userID, err = parseID(rest[0]); err != nil {
						return err
					}
				}
				a, sess, err := e.adminSession(ctx)
				if err != nil {
					return err
				}
				password, err := e.secret("FINTRACK_NEW_PASSWORD", "New password: ")
				if err != nil {
					return err
				}
				if requestID != 0 {
					err = a.Users.ResolvePasswordRequest(ctx, sess, requestID, password)
				} else {
					err = a.Users.ResetPassword(ctx, sess, userID, password)
				}
				if err != nil {
					return err
				}
				e.printf("Password reset\n")
				return nil
			},
		},
		{
			name:     "userdel",
			synopsis: "delete a user and all their data (admin)",
			usage:    "fintrack userdel <user-id>\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				rest, err := args(f, 1, "<user-id>")
				if err != nil {
					return err
				}
				id, err := parseID(rest[0])
				if err != nil {
					return err
				}
				a, sess, err := e.adminSession(ctx)
				if err != nil {
					return err
				}
				if err := a.Users.DeleteUser(ctx, sess, id); err != nil {
					return err
				}
				e.printf("Deleted user %d\n", id)
				return nil
			},
		},
		{
			name:     "backup",
			synopsis: "verify the database and take a backup",
			usage:    "fintrack backup\n",
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, err := e.open(ctx)
				if err != nil {
					return err
				}
				st := a.Backups.Perform(ctx)
				if !st.OK {
					return errors.New(st.Message)
				}
				e.printf("%s: %s\n", st.Message, st.File)
				for _, old := range st.Removed {
					e.printf("Removed %s\n", old)
				}
				return nil
			},
		},
		{
			name:     "events",
			synopsis: "follow ledger events from the message broker (admin)",
			usage:    "fintrack events\n\n  Prints every ledger event until interrupted. Requires AMQP_URL.\n",
			flags: func(f *flag.FlagSet) {
				f.DurationVar(&eventsGrace, "grace", 5*time.Second, "shutdown timeout")
			},
			run: func(ctx context.Context, e *env, f *flag.FlagSet) error {
				a, _, err := e.adminSession(ctx)
				if err != nil {
					return err
				}
				if a.Events == nil {
					return fmt.Errorf("no message broker: set AMQP_URL")
				}
				return followEvents(ctx, e, a.Events, worker.NewEventWorker(a.Store, e.stdout), eventsGrace)
			},
		},
	}
}

type eventSource interface {
	ConsumeEvents(ctx context.Context, handler func(*amqp.LedgerEvent) error) error
}

// followEvents consumes until a signal arrives or the source fails, then
// prints per-kind totals.
func followEvents(ctx context.Context, e *env, src eventSource, w *worker.EventWorker, grace time.Duration) error {
	parent, stop := context.WithCancel(ctx)
	defer stop()
	runCtx, done := cli.GracefulShutdown(parent, e.logger, grace, nil)

	err := src.ConsumeEvents(runCtx, func(ev *amqp.LedgerEvent) error {
		return w.HandleEvent(runCtx, ev)
	})
	stop()
	<-done

	var parts []string
	for _, s := range w.Stats() {
		parts = append(parts, fmt.Sprintf("%s=%d", s.Kind, s.Count))
	}
	if len(parts) > 0 {
		e.printf("Handled: %s\n", strings.Join(parts, " "))
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
