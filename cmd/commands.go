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
	"syscall"
	"text/tabwriter"

	"golang.org/x/crypto/ssh/terminal"

	"gitlab.com/codearena.net/internal/core/services/catalog"
	"gitlab.com/codearena.net/internal/core/services/workspace"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/handlers/status"
	"gitlab.com/codearena.net/internal/schedulerengine"
	"gitlab.com/codearena.net/internal/static/errs"
)

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword() (string, error) {
	fd := int(syscall.Stdin)
	if !terminal.IsTerminal(fd) {
		return prompt("")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := terminal.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func valueOrPrompt(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return prompt(label)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	_ = fs.Parse(args)

	var creds domain.LoginCredentials
	var err error
	if creds.Email, err = valueOrPrompt(*email, "Email: "); err != nil {
		return err
	}
	if creds.Password, err = promptPassword(); err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func runSignup(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	role := fs.String("role", "", "user or admin")
	_ = fs.Parse(args)

	creds := domain.SignupCredentials{Role: *role}
	var err error
	if creds.Name, err = valueOrPrompt(*name, "Name: "); err != nil {
		return err
	}
	if creds.Email, err = valueOrPrompt(*email, "Email: "); err != nil {
		return err
	}
	if creds.Password, err = promptPassword(); err != nil {
		return err
	}

	user, err := a.auth.Signup(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome %s, you are logged in\n", user.Name)
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	if err := a.auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func runMe(ctx context.Context, a *app, _ []string) error {
	user, err := a.restore(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\nid:   %s\n", user.Name, user.Email, user.ID)
	if user.Role != "" {
		fmt.Fprintf(a.out, "role: %s\n", user.Role)
	}
	return nil
}

func runProblems(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("problems", flag.ExitOnError)
	search := fs.String("search", "", "match title or description")
	difficulty := fs.String("difficulty", catalog.DifficultyAll, "easy, medium, hard or all")
	_ = fs.Parse(args)

	if _, err := a.restore(ctx); err != nil {
		return err
	}
	problems, err := a.catalog.List(ctx, *search, *difficulty)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		fmt.Fprintln(a.out, "No problems found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tTESTS")
	for _, p := range problems {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Title, p.Difficulty, len(p.TestCases))
	}
	return w.Flush()
}

func runProblem(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("problem", flag.ExitOnError)
	lang := fs.String("lang", string(domain.LanguageJava), "language of the starter code")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: codearena problem [-lang L] <problem-id>")
	}
	language, ok := domain.ParseLanguage(*lang)
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedLang, *lang)
	}

	if _, err := a.restore(ctx); err != nil {
		return err
	}
	p, err := a.catalog.Get(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s  [%s]\n\n%s\n", p.Title, p.Difficulty, p.Description)
	for i, tc := range p.ExampleTestCases(catalog.ExampleCount) {
		fmt.Fprintf(a.out, "\nExample %d\n  input:  %s\n  output: %s\n", i+1, tc.Input, tc.Output)
	}
	if code := catalog.StarterCode(p, language); code != "" {
		fmt.Fprintf(a.out, "\nStarter code (%s):\n%s\n", language, code)
	}
	return nil
}

func runSubmit(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	problemID := fs.String("problem", "", "problem id")
	file := fs.String("file", "", "source file, - for stdin")
	lang := fs.String("lang", string(domain.LanguageJava), "JAVA, PYTHON or CPP")
	watch := fs.Bool("watch", true, "follow grading until it finishes")
	_ = fs.Parse(args)
	if *problemID == "" || *file == "" {
		return fmt.Errorf("usage: codearena submit -problem <id> -file <path> [-lang L]")
	}
	language, ok := domain.ParseLanguage(*lang)
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedLang, *lang)
	}
	code, err := readSource(*file)
	if err != nil {
		return err
	}

	if _, err := a.restore(ctx); err != nil {
		return err
	}
	channel, err := a.channel(ctx)
	if err != nil {
		return err
	}
	reconciler, done := a.tracker(ctx)

	ws := workspace.NewWorkspaceService(a.catalog, a.submissions, reconciler, channel, a.logger.Named("workspace"), workspace.WithLanguage(language))
	defer ws.Close()

	if _, err := ws.SelectProblem(ctx, *problemID); err != nil {
		return err
	}
	submission, err := ws.Submit(ctx, code)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Submitted %s\n", submission.ID)
	if !*watch {
		return nil
	}

	if err := a.background(ctx, reconciler, channel); err != nil {
		return err
	}
	return waitForResult(ctx, done)
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: codearena watch <submission-id>")
	}

	if _, err := a.restore(ctx); err != nil {
		return err
	}
	submission, err := a.submissions.GetSubmission(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if entry, finished := domain.HistoryEntryFromSubmission(*submission); finished {
		_, history := a.stores(ctx)
		if err := history.SaveEntry(ctx, entry); err != nil {
			a.logger.Warn("Failed to record history", "submissionId", entry.SubmissionID, "error", err)
		}
		printHistory(a, []*domain.HistoryEntry{entry})
		return nil
	}

	channel, err := a.channel(ctx)
	if err != nil {
		return err
	}
	reconciler, done := a.tracker(ctx)

	ws := workspace.NewWorkspaceService(a.catalog, a.submissions, reconciler, channel, a.logger.Named("workspace"))
	defer ws.Close()
	if err := ws.Resume(ctx, submission); err != nil {
		return err
	}

	if err := a.background(ctx, reconciler, channel); err != nil {
		return err
	}
	return waitForResult(ctx, done)
}

func runSubmissions(ctx context.Context, a *app, _ []string) error {
	if _, err := a.restore(ctx); err != nil {
		return err
	}
	list, err := a.submissions.ListUserSubmissions(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tLANGUAGE\tSTATUS")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.ProblemID, s.Language, s.Status)
	}
	return w.Flush()
}

func runHistory(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	problemID := fs.String("problem", "", "only this problem")
	limit := fs.Int("limit", 20, "number of entries")
	sync := fs.Bool("sync", false, "import finished submissions from the service first")
	_ = fs.Parse(args)

	_, history := a.stores(ctx)
	if *sync {
		if _, err := a.restore(ctx); err != nil {
			return err
		}
		engine := schedulerengine.NewSchedulerEngine(a.cfg.Background, nil, a.submissions, history, a.logger.Named("background"))
		saved, err := engine.SyncHistory(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Imported %d finished submissions\n", saved)
	}

	entries, err := history.ListEntries(ctx, *problemID, *limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No recorded results")
		return nil
	}
	printHistory(a, entries)
	return nil
}

// runServe exposes the shared stores without following a submission itself.
func runServe(ctx context.Context, a *app, _ []string) error {
	if a.cfg.StatusAPI.Addr == "" {
		return errors.New("STATUS_API_ADDR is not set")
	}
	views, history := a.stores(ctx)
	err := a.startStatusAPI(ctx, status.Dependencies{
		ViewStore:     views,
		History:       history,
		Notifications: a.board,
		Metrics:       a.recorder.Handler(),
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	a.logger.Info("Shutting down server...")
	return nil
}

func waitForResult(ctx context.Context, done <-chan domain.SubmissionView) error {
	select {
	case <-ctx.Done():
		return nil
	case v := <-done:
		if v.State != domain.ViewSuccess {
			return fmt.Errorf("submission finished with %s", v.State)
		}
		return nil
	}
}

func printHistory(a *app, entries []*domain.HistoryEntry) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUBMISSION\tPROBLEM\tLANGUAGE\tSTATE\tSCORE\tFINISHED")
	for _, e := range entries {
		score := fmt.Sprintf("%d/%d (%d%%)", e.Passed, e.Total, e.Percentage)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.SubmissionID, e.ProblemID, e.Language, e.State, score, e.FinishedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func readSource(path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(raw), nil
}
