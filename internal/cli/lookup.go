package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"vmm-exam-service/internal/app"
	"vmm-exam-service/internal/config"
	"vmm-exam-service/internal/domain"
	"vmm-exam-service/internal/logger"
)

// NewLookupCmd resolves a result by identifier against the configured storage.
// Only the result slot of --context can match a session-backed identifier;
// any other identifier is answered from the synthesized index.
func NewLookupCmd(configPath *string) *cobra.Command {
	var (
		regenerate bool
		contextID  string
	)
	cmd := &cobra.Command{
		Use:   "lookup <identifier>",
		Short: "Look up (or synthesize) the result for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

			be, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer be.Close()

			rnd := app.NewRand(cfg.Exam.Seed)
			pol, err := buildPolicies(cfg, rnd)
			if err != nil {
				return err
			}
			leaderboard := app.NewLeaderboardManager(be.records, rnd, log)
			lookup := app.NewResultLookupService(app.NewResultStore(be.records, log), leaderboard, pol.lookup, rnd, log)

			var r domain.Result
			if regenerate {
				r, err = lookup.Regenerate(cmd.Context(), args[0])
			} else {
				r, err = lookup.Resolve(cmd.Context(), contextID, args[0])
			}
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), lookup.View(r))
			return nil
		},
	}
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "discard the remembered result and draw a new one")
	cmd.Flags().StringVar(&contextID, "context", "", "browsing context id (X-Context-ID) whose own result should be matched")
	return cmd
}

// NewLeaderboardCmd prints the current topper board.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top 10 leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

			be, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer be.Close()

			board := app.NewLeaderboardManager(be.records, app.NewRand(cfg.Exam.Seed), log).List(cmd.Context())
			printLeaderboard(cmd.OutOrStdout(), board)
			return nil
		},
	}
}

func statusColor(s domain.Status) *color.Color {
	switch s {
	case domain.StatusSelected:
		return color.New(color.FgGreen, color.Bold)
	case domain.StatusWaitlisted:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func printResult(w io.Writer, v domain.ResultView) {
	color.New(color.FgCyan).Fprintf(w, "\n=== Result for %s ===\n", v.Identifier)
	fmt.Fprintf(w, "Name:    %s\n", v.Name)
	fmt.Fprintf(w, "Branch:  %s\n", v.Branch)
	fmt.Fprintf(w, "Score:   %d\n", v.Score)
	fmt.Fprint(w, "Status:  ")
	statusColor(v.Status).Fprintln(w, v.Status)
	if v.IsTopper {
		color.New(color.FgMagenta).Fprintln(w, "Topper! Added to the leaderboard.")
	}
	fmt.Fprintf(w, "\n%s\n", v.Remark)
	if v.AdditionalFeedback != "" {
		fmt.Fprintln(w, v.AdditionalFeedback)
	}
}

func printLeaderboard(w io.Writer, board domain.Leaderboard) {
	color.New(color.FgYellow).Fprintf(w, "\nTop %d Performers\n", len(board.Entries))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Name", "City", "Identifier", "Score", "Award", "Position"})
	for _, e := range board.Entries {
		table.Append([]string{
			strconv.Itoa(e.Rank),
			e.Name,
			e.City,
			e.Identifier,
			strconv.FormatFloat(e.Score, 'f', -1, 64),
			e.Award,
			e.Role,
		})
	}
	table.Render()
}
