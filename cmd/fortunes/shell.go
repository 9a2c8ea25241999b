package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fortunes/fortunes-web/internal/analysis"
	"github.com/fortunes/fortunes-web/internal/bootstrap"
	apperrors "github.com/fortunes/fortunes-web/internal/errors"
)

type commandFn func(ctx context.Context, args []string) error

type command struct {
	name        string
	usage       string
	description string
	run         commandFn
}

var errQuit = errors.New("quit")

// shell is the interactive loop. It reads one command per line.
type shell struct {
	tab *bootstrap.Tab
	in  *bufio.Reader
	out io.Writer
	// secret reads a hidden value; nil falls back to a plain line.
	secret   func(prompt string) (string, error)
	commands map[string]command
}

func newShell(tab *bootstrap.Tab, in *bufio.Reader, out io.Writer) *shell {
	s := &shell{tab: tab, in: in, out: out}
	s.commands = map[string]command{}
	for _, c := range []command{
		{name: "help", description: "list commands", run: s.cmdHelp},
		{name: "whoami", description: "show the logged-in user", run: s.cmdWhoami},
		{name: "go", usage: "<path>", description: "navigate to a page", run: s.cmdGo},
		{name: "login", usage: "[username]", description: "log in", run: s.cmdLogin},
		{name: "logout", description: "log out", run: s.cmdLogout},
		{name: "signup", description: "create an account", run: s.cmdSignup},
		{name: "confirm", usage: "<token>", description: "confirm an email address", run: s.cmdConfirm},
		{name: "profile", usage: "[edit]", description: "show or edit the profile", run: s.cmdProfile},
		{name: "password", description: "change the password", run: s.cmdPassword},
		{name: "analyze", description: "run a new analysis", run: s.cmdAnalyze},
		{name: "history", description: "list past analyses", run: s.cmdHistory},
		{name: "show", usage: "<id>", description: "show one analysis", run: s.cmdShow},
		{name: "delete", usage: "<id>", description: "delete one analysis", run: s.cmdDelete},
		{name: "quit", description: "exit", run: func(context.Context, []string) error { return errQuit }},
	} {
		s.commands[c.name] = c
	}
	s.commands["exit"] = s.commands["quit"]

	tab.Engine.OnPhase(func(p analysis.Phase) {
		if p == analysis.PhaseSubmitting || p == analysis.PhasePolling {
			s.printf("... %s\n", p)
		}
	})
	return s
}

func (s *shell) run(ctx context.Context) error {
	s.tab.Start(ctx)
	s.cmdWhoami(ctx, nil) //nolint:errcheck // never fails

	for {
		line, err := s.prompt(fmt.Sprintf("%s> ", s.tab.Router.CurrentPath()))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, ok := s.commands[fields[0]]
		if !ok {
			s.printf("unknown command %q, try \"help\"\n", fields[0])
			continue
		}
		if err := cmd.run(ctx, fields[1:]); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.printf("%s\n", apperrors.UserMessage(err))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// prompt prints p and reads one trimmed line.
func (s *shell) prompt(p string) (string, error) {
	s.printf("%s", p)
	line, err := s.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *shell) promptSecret(p string) (string, error) {
	if s.secret != nil {
		return s.secret(p)
	}
	return s.prompt(p)
}

// confirm implements core.ConfirmFunc on the terminal.
func (s *shell) confirm(_ context.Context, question string) bool {
	answer, err := s.prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// enter navigates to a guarded page and reports whether it was reached.
func (s *shell) enter(ctx context.Context, page string) bool {
	if loc := s.tab.Router.Go(ctx, page); loc != page {
		s.printf("login required (now at %s)\n", loc)
		return false
	}
	return true
}

func (s *shell) printFieldErrors(errs map[string]string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.printf("  %s: %s\n", k, errs[k])
	}
}
