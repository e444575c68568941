package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"datasense-quiz-client/internal/app"
	"datasense-quiz-client/internal/config"
	"datasense-quiz-client/internal/domain"
	"datasense-quiz-client/internal/infra/api"
	"datasense-quiz-client/internal/infra/localstore"
	"datasense-quiz-client/internal/infra/memory"
	redisledger "datasense-quiz-client/internal/infra/redis"
)

// NewTakeCmd builds the subcommand that runs a full quiz attempt in the terminal.
func NewTakeCmd(configPath, apiBase *string) *cobra.Command {
	var quizID, userID, kindFlag string

	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take a quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, *apiBase)
			if err != nil {
				return err
			}

			client := newAPIClient(cfg)
			kind, err := resolveKind(cmd.Context(), client, kindFlag, quizID)
			if err != nil {
				return err
			}

			quizTTL := config.Duration(cfg.Session.QuizTTL, 10*time.Minute)
			controller := app.NewController(app.Config{
				Source:          memory.NewQuestionCache(client, quizTTL),
				Ledger:          buildLedger(cfg),
				Sink:            client,
				Executor:        client,
				QuestionSeconds: cfg.Session.QuestionSeconds,
			})

			sess, err := controller.Start(cmd.Context(), kind, quizID, userID)
			if err != nil {
				return err
			}
			if sess.State() == app.StateBlocked {
				fmt.Fprintln(cmd.OutOrStdout(), "You already attempted this quiz")
				return nil
			}
			defer sess.Close()

			return runSession(cmd.InOrStdin(), cmd.OutOrStdout(), sess)
		},
	}

	cmd.Flags().StringVar(&quizID, "quiz-id", "", "quiz identifier")
	cmd.Flags().StringVar(&userID, "user-id", "", "user identifier")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "quiz kind (sql, python, mcq); resolved from the catalog if omitted")
	_ = cmd.MarkFlagRequired("quiz-id")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

// resolveKind prefers the explicit flag; otherwise it consults the catalog,
// which still derives kinds from legacy name prefixes.
func resolveKind(ctx context.Context, client *api.Client, kindFlag, quizID string) (domain.Kind, error) {
	if kindFlag != "" {
		kind := domain.Kind(strings.ToLower(kindFlag))
		switch kind {
		case domain.KindSQL, domain.KindPython, domain.KindMCQ:
			return kind, nil
		}
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownKind, kindFlag)
	}

	quizzes, err := client.ListQuizzes(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve quiz kind: %w", err)
	}
	for _, quiz := range quizzes {
		if quiz.ID == quizID && quiz.Kind != "" {
			return quiz.Kind, nil
		}
	}
	return "", fmt.Errorf("%w: quiz %s", domain.ErrUnknownKind, quizID)
}

func buildLedger(cfg config.Config) app.AttemptLedger {
	if cfg.Ledger.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Ledger.Redis.Addr,
			Password: cfg.Ledger.Redis.Password,
			DB:       cfg.Ledger.Redis.DB,
		})
		return redisledger.NewAttemptLedger(client)
	}
	return localstore.NewAttemptLedger(cfg.Ledger.Path)
}

func runSession(in io.Reader, out io.Writer, sess *app.Session) error {
	events, cancel := sess.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			switch ev.Type {
			case app.EventTick:
				if ev.Remaining <= 5 || ev.Remaining%30 == 0 {
					fmt.Fprintf(out, "[%ds left]\n", ev.Remaining)
				}
			case app.EventAdvanced:
				printQuestion(out, sess)
			case app.EventCompleted:
				return
			}
		}
	}()

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	kind := sess.Quiz().Kind
	printQuestion(out, sess)
	printHelp(out, kind)

	for {
		select {
		case <-done:
			printSummary(out, sess)
			return nil
		case line, ok := <-lines:
			if !ok {
				sess.Close()
				return nil
			}
			input := strings.TrimSpace(line)
			switch {
			case input == "":
			case input == "next":
				_ = sess.Next()
			case input == "prev":
				_ = sess.Prev()
			case input == "submit":
				// ErrSessionClosed here means the timer beat us to it; the
				// completion event takes over either way.
				_ = sess.Submit(context.Background())
			case input == "quit":
				sess.Close()
				fmt.Fprintln(out, "Quiz abandoned; your attempt was not submitted.")
				return nil
			case input == "run" && kind != domain.KindMCQ:
				result, err := sess.CheckCurrent(context.Background())
				if err != nil {
					continue
				}
				printFeedback(out, result)
			case input == "edit" && kind != domain.KindMCQ:
				code, alive := readCode(out, lines, done)
				if !alive {
					printSummary(out, sess)
					return nil
				}
				_ = sess.Select(code)
			case input == "solution" && kind == domain.KindPython:
				printSolution(out, sess)
			case kind == domain.KindMCQ:
				selectOption(out, sess, input)
			default:
				fmt.Fprintln(out, "Unknown command")
				printHelp(out, kind)
			}
		}
	}
}

func selectOption(out io.Writer, sess *app.Session, key string) {
	snap := sess.Snapshot()
	if _, ok := snap.Question.Options[key]; !ok {
		fmt.Fprintln(out, "No such option")
		return
	}
	_ = sess.Select(key)
	fmt.Fprintf(out, "Selected [%s]\n", key)
}

func readCode(out io.Writer, lines <-chan string, done <-chan struct{}) (string, bool) {
	fmt.Fprintln(out, "Enter your code; finish with a single '.' on its own line:")
	var code []string
	for {
		select {
		case <-done:
			return "", false
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "." {
				return strings.Join(code, "\n"), true
			}
			code = append(code, line)
		}
	}
}

func printHelp(out io.Writer, kind domain.Kind) {
	switch kind {
	case domain.KindMCQ:
		fmt.Fprintln(out, "Commands: <option key>, next, prev, submit, quit")
	case domain.KindPython:
		fmt.Fprintln(out, "Commands: edit, run, solution, next, prev, submit, quit")
	default:
		fmt.Fprintln(out, "Commands: edit, run, next, prev, submit, quit")
	}
}

func printQuestion(out io.Writer, sess *app.Session) {
	snap := sess.Snapshot()
	if snap.State != app.StateAnswering {
		return
	}
	q := snap.Question

	fmt.Fprintf(out, "\nQuestion %d of %d  (%ds on the clock)\n", snap.Index+1, snap.Total, snap.Remaining)
	fmt.Fprintln(out, q.Prompt)

	switch sess.Quiz().Kind {
	case domain.KindMCQ:
		keys := make([]string, 0, len(q.Options))
		for key := range q.Options {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			marker := " "
			if snap.Answered && snap.Answer == key {
				marker = "*"
			}
			fmt.Fprintf(out, " %s [%s] %s\n", marker, key, q.Options[key])
		}
	case domain.KindSQL:
		fmt.Fprintln(out, "Reference table:")
		fmt.Fprintln(out, "  "+strings.Join(q.Table.Columns, " | "))
		for _, row := range q.Table.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = fmt.Sprint(cell)
			}
			fmt.Fprintln(out, "  "+strings.Join(cells, " | "))
		}
		fmt.Fprintln(out, "Expected output:")
		fmt.Fprintln(out, "  "+domain.FormatRows(q.ExpectedOutput))
	case domain.KindPython:
		if q.Boilerplate != "" {
			fmt.Fprintln(out, "Starter code:")
			fmt.Fprintln(out, q.Boilerplate)
		}
		fmt.Fprintln(out, "Test cases:")
		for _, tc := range q.TestCases {
			fmt.Fprintf(out, "  input: %s  expected: %s\n", tc.Input, tc.ExpectedOutput)
		}
	}
}

func printFeedback(out io.Writer, result app.CheckResult) {
	if result.Stale {
		fmt.Fprintln(out, "Result arrived for a question you already left; ignored.")
		return
	}
	if result.Correct {
		fmt.Fprintln(out, "Correct!")
		if result.Detail != "" {
			fmt.Fprintln(out, result.Detail)
		}
		return
	}
	fmt.Fprintln(out, "Incorrect.")
	if result.Detail != "" {
		fmt.Fprintln(out, result.Detail)
	}
	if result.Expected != "" {
		fmt.Fprintf(out, "Expected: %s\n", result.Expected)
		fmt.Fprintf(out, "Your answer: %s\n", result.Got)
	}
}

func printSolution(out io.Writer, sess *app.Session) {
	snap := sess.Snapshot()
	if snap.Question.Solution == "" {
		fmt.Fprintln(out, "No reference solution for this question.")
		return
	}
	fmt.Fprintln(out, "Solution:")
	fmt.Fprintln(out, snap.Question.Solution)
}

func printSummary(out io.Writer, sess *app.Session) {
	quiz := sess.Quiz()
	snap := sess.Snapshot()
	results := sess.Results()
	answers := sess.Answers()

	fmt.Fprintf(out, "\nQuiz Completed. Your score: %d / %d\n", snap.Score, quiz.Len())
	for i, q := range quiz.Questions {
		if i >= len(results) || i >= len(answers) {
			break
		}
		answer := answers[i]
		if quiz.Kind == domain.KindMCQ {
			if text, ok := q.Options[answer]; ok {
				answer = text
			}
		}
		if answer == "" {
			answer = "Not answered"
		}
		verdict := "incorrect"
		if results[i].Correct {
			verdict = "correct"
		}
		fmt.Fprintf(out, "Q%d: %s\n  Your answer: %s (%s)\n", i+1, q.Prompt, answer, verdict)
		if results[i].Expected != "" {
			fmt.Fprintf(out, "  Correct answer: %s\n", results[i].Expected)
		}
	}
	fmt.Fprintln(out, "Returning to quiz home.")
}
