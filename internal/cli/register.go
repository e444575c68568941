package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegisterCmd builds the subcommand that enrolls a user for an upcoming quiz.
func NewRegisterCmd(configPath, apiBase *string) *cobra.Command {
	var quizID, userID string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register for a quiz before its start window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, *apiBase)
			if err != nil {
				return err
			}

			client := newAPIClient(cfg)
			if err := client.Register(cmd.Context(), quizID, userID); err != nil {
				return fmt.Errorf("register for quiz %s: %w", quizID, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Quiz registration successful")
			return nil
		},
	}

	cmd.Flags().StringVar(&quizID, "quiz-id", "", "quiz identifier")
	cmd.Flags().StringVar(&userID, "user-id", "", "user identifier")
	_ = cmd.MarkFlagRequired("quiz-id")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
