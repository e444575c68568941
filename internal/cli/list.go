package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"datasense-quiz-client/internal/domain"
)

// NewListCmd builds the subcommand that prints the quiz catalog.
func NewListCmd(configPath, apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available quizzes and their registration windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, *apiBase)
			if err != nil {
				return err
			}

			client := newAPIClient(cfg)
			quizzes, err := client.ListQuizzes(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch quizzes: %w", err)
			}

			now := time.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tNAME\tSTATUS\tSTART\tEND")
			for _, quiz := range quizzes {
				kind := string(quiz.Kind)
				if kind == "" {
					kind = "?"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					quiz.ID,
					kind,
					domain.DisplayName(quiz.Name),
					windowLabel(quiz.Window(now)),
					quiz.Start.Local().Format("2006-01-02 15:04"),
					quiz.End.Local().Format("2006-01-02 15:04"),
				)
			}
			return w.Flush()
		},
	}
}

// windowLabel mirrors the action shown on the quiz card: register before the
// window opens, start inside it, nothing after it ends.
func windowLabel(status domain.WindowStatus) string {
	switch status {
	case domain.WindowUpcoming:
		return "Register"
	case domain.WindowOpen:
		return "Start"
	default:
		return "Ended"
	}
}
