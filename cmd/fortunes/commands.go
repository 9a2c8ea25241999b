package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fortunes/fortunes-web/internal/analysis"
	"github.com/fortunes/fortunes-web/internal/auth"
	"github.com/fortunes/fortunes-web/internal/domain/account"
	domain "github.com/fortunes/fortunes-web/internal/domain/analysis"
	apperrors "github.com/fortunes/fortunes-web/internal/errors"
	"github.com/fortunes/fortunes-web/internal/util"
)

func (s *shell) cmdHelp(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name, c := range s.commands {
		if name == c.name {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		c := s.commands[name]
		fmt.Fprintf(tw, "  %s %s\t%s\n", c.name, c.usage, c.description)
	}
	return tw.Flush()
}

func (s *shell) cmdWhoami(context.Context, []string) error {
	u := s.tab.Session.User()
	if u == nil {
		s.printf("not logged in\n")
		return nil
	}
	verified := "unverified"
	if u.EmailVerified {
		verified = "verified"
	}
	s.printf("logged in as %s <%s> (%s)\n", u.Username, u.Email, verified)
	return nil
}

func (s *shell) cmdGo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return apperrors.Validation("usage: go <path>")
	}
	s.printf("now at %s\n", s.tab.Router.Go(ctx, args[0]))
	return nil
}

func (s *shell) cmdLogin(ctx context.Context, args []string) error {
	username := ""
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = s.prompt("username: "); err != nil {
			return err
		}
	}
	password, err := s.promptSecret("password: ")
	if err != nil {
		return err
	}

	next, err := s.tab.Auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	s.printf("logged in, now at %s\n", s.tab.Router.Go(ctx, next))
	return nil
}

func (s *shell) cmdLogout(ctx context.Context, _ []string) error {
	s.tab.Session.Logout(ctx)
	s.printf("logged out\n")
	return nil
}

func (s *shell) cmdSignup(ctx context.Context, _ []string) error {
	var in account.SignupInput
	var err error
	if in.Username, err = s.prompt("username: "); err != nil {
		return err
	}
	if filtered := account.FilterUsername(in.Username); filtered != in.Username {
		s.printf("  username may only contain half-width characters, using %q\n", filtered)
		in.Username = filtered
	}
	if in.Email, err = s.prompt("email: "); err != nil {
		return err
	}
	if in.DisplayName, err = s.prompt("display name (optional): "); err != nil {
		return err
	}
	if in.Password, err = s.promptSecret("password: "); err != nil {
		return err
	}

	fieldErrs, err := s.tab.Auth.Signup(ctx, in)
	s.printFieldErrors(fieldErrs)
	if err != nil {
		return err
	}
	s.printf("%s\n", auth.MsgSignedUp)
	return nil
}

func (s *shell) cmdConfirm(ctx context.Context, args []string) error {
	token := ""
	if len(args) > 0 {
		token = args[0]
	}
	if err := s.tab.Auth.ConfirmEmail(ctx, token); err != nil {
		return err
	}
	s.printf("%s\n", auth.MsgEmailConfirmed)
	s.tab.Router.Go(ctx, "/")
	return nil
}

func (s *shell) cmdProfile(ctx context.Context, args []string) error {
	if !s.enter(ctx, "/profile") {
		return nil
	}
	if _, err := s.tab.Session.Refresh(ctx); err != nil {
		return err
	}
	if err := s.cmdWhoami(ctx, nil); err != nil || len(args) == 0 || args[0] != "edit" {
		return err
	}

	cur := s.tab.Session.User()
	in := account.ProfileInput{Username: cur.Username, Email: cur.Email}
	if v, err := s.prompt(fmt.Sprintf("username [%s]: ", in.Username)); err != nil {
		return err
	} else if v != "" {
		in.Username = v
	}
	if v, err := s.prompt(fmt.Sprintf("email [%s]: ", in.Email)); err != nil {
		return err
	} else if v != "" {
		in.Email = v
	}

	fieldErrs, err := s.tab.Auth.UpdateProfile(ctx, in)
	s.printFieldErrors(fieldErrs)
	if err != nil {
		return err
	}
	s.printf("%s\n", auth.MsgProfileSaved)
	return nil
}

func (s *shell) cmdPassword(ctx context.Context, _ []string) error {
	if !s.enter(ctx, "/settings") {
		return nil
	}
	var in account.PasswordChange
	var err error
	if in.Current, err = s.promptSecret("current password: "); err != nil {
		return err
	}
	if in.New, err = s.promptSecret("new password: "); err != nil {
		return err
	}
	if in.Confirm, err = s.promptSecret("new password (again): "); err != nil {
		return err
	}
	if err := s.tab.Auth.ChangePassword(ctx, in); err != nil {
		return err
	}
	s.printf("%s\n", auth.MsgPasswordSaved)
	return nil
}

var analysisPrompts = []struct{ field, label string }{
	{analysis.FieldNameSei, "family name"},
	{analysis.FieldNameMei, "given name"},
	{analysis.FieldBirthDate, "birth date (YYYY-MM-DD)"},
	{analysis.FieldBirthHour, "birth hour (0-23)"},
}

func (s *shell) cmdAnalyze(ctx context.Context, _ []string) error {
	if !s.enter(ctx, "/analysis") {
		return nil
	}
	form := analysis.NewForm(time.Now)
	for _, p := range analysisPrompts {
		v, err := s.prompt(p.label + ": ")
		if err != nil {
			return err
		}
		if msg := form.Set(p.field, v); msg != "" {
			s.printf("  %s\n", msg)
		}
	}

	out := s.tab.Engine.Submit(ctx, form)
	switch out.Kind {
	case analysis.OutcomeSuccess:
		s.printDisplay(out.Display)
		s.printf("(finished in %s after %d checks)\n", util.FormatElapsed(out.Elapsed), out.Attempts)
	case analysis.OutcomeInvalid:
		s.printFieldErrors(out.FieldErrors)
	case analysis.OutcomeBusy:
		s.printf("%s\n", out.Message)
	}
	// Failure kinds were already reported through the notifier.
	return nil
}

func (s *shell) cmdHistory(ctx context.Context, _ []string) error {
	if !s.enter(ctx, "/analysis") {
		return nil
	}
	records, err := s.tab.History.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.printf("no analyses yet\n")
		return nil
	}
	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBIRTH\tCREATED")
	for _, r := range records {
		d := r.Display()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.ID, d.Title, d.Birth, r.CreatedAt)
	}
	return tw.Flush()
}

func (s *shell) cmdShow(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if !s.enter(ctx, "/analysis") {
		return nil
	}
	records := s.tab.History.Records()
	if len(records) == 0 {
		if records, err = s.tab.History.Refresh(ctx); err != nil {
			return err
		}
	}
	rec, ok := domain.FindRecord(records, id)
	if !ok {
		return apperrors.NotFoundf("analysis #%d not found", id)
	}
	d := rec.Display()
	s.printDisplay(&d)
	return nil
}

func (s *shell) cmdDelete(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if !s.enter(ctx, "/analysis") {
		return nil
	}
	sent, err := s.tab.History.Delete(ctx, id, s.confirm)
	if err != nil {
		return err
	}
	if sent {
		s.printf("deleted #%d\n", id)
	}
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, apperrors.Validation("an analysis id is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation(fmt.Sprintf("%q is not an analysis id", args[0]))
	}
	return id, nil
}

func (s *shell) printDisplay(d *domain.Display) {
	if d == nil {
		return
	}
	s.printf("#%d %s  (%s)\n\n", d.ID, d.Title, d.Birth)
	if d.Summary != "" {
		s.printf("%s\n\n", d.Summary)
	}
	if d.Detail != "" {
		s.printf("%s\n\n", d.Detail)
	}
	printSection(s, "name", d.ResultName)
	printSection(s, "birth", d.ResultBirth)
}

func printSection(s *shell, title string, m map[string]any) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.printf("[%s]\n", title)
	for _, k := range keys {
		s.printf("  %s: %v\n", k, m[k])
	}
}
