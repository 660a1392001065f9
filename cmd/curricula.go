package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutorloop/internal/report"
)

var curriculaCmd = &cobra.Command{
	Use:     "curricula",
	Aliases: []string{"curriculum"},
	Short:   "Inspect, evaluate and optimize curricula",
}

// withApp builds the application for a one-shot command and closes it
// afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *application) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := commandContext(cmd)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

// gradeSubject parses the <grade> <subject> arguments.
func gradeSubject(args []string) (int, string, error) {
	grade, err := strconv.Atoi(args[0])
	if err != nil || grade < 1 || grade > 12 {
		return 0, "", fmt.Errorf("invalid grade %q: must be 1-12", args[0])
	}
	return grade, args[1], nil
}

var curriculaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every curriculum and its current version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *application) error {
			keys, err := app.versions.Keys(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, k := range keys {
				c, err := app.versions.GetCurriculum(ctx, k.GradeLevel, k.Subject)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "grade %-3d %-14s v%-6s %d topics\n", k.GradeLevel, k.Subject, c.Version, len(c.Topics))
			}
			return nil
		})
	},
}

var curriculaHistoryCmd = &cobra.Command{
	Use:   "history <grade> <subject>",
	Short: "Show every version of a curriculum",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, subject, err := gradeSubject(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *application) error {
			history, err := app.engine.History(ctx, grade, subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.History(history))
			return nil
		})
	},
}

var curriculaAnalyzeCmd = &cobra.Command{
	Use:   "analyze <grade> <subject>",
	Short: "Analyze recorded performance against targets",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, subject, err := gradeSubject(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *application) error {
			a, err := app.engine.Analyze(ctx, grade, subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Analysis(a))
			return nil
		})
	},
}

var curriculaEvaluateCmd = &cobra.Command{
	Use:     "evaluate <grade> <subject>",
	Aliases: []string{"quality"},
	Short:   "Score the current version's quality",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, subject, err := gradeSubject(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *application) error {
			q, err := app.engine.Quality(ctx, grade, subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Quality(q))
			return nil
		})
	},
}

var curriculaOptimizeCmd = &cobra.Command{
	Use:   "optimize [<grade> <subject>]",
	Short: "Optimize one curriculum, or run automatic optimization over all of them",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <grade> <subject>, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return withApp(cmd, func(ctx context.Context, app *application) error {
				sum, err := app.engine.RunAutoOptimization(ctx)
				if sum != nil {
					fmt.Fprintln(cmd.OutOrStdout(), report.Run(sum))
				}
				return err
			})
		}

		grade, subject, err := gradeSubject(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *application) error {
			res, err := app.engine.Optimize(ctx, grade, subject)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Analysis(res.Analysis))
			if !res.Applied {
				fmt.Fprintln(out, "No changes applied.")
				if res.Notes != "" {
					fmt.Fprintln(out, res.Notes)
				}
				return nil
			}
			fmt.Fprintf(out, "Published v%s (was v%s):\n", res.Curriculum.Version, res.PreviousVersion)
			for _, c := range res.Changes {
				fmt.Fprintf(out, "  - %s\n", c)
			}
			return nil
		})
	},
}

var curriculaRollbackCmd = &cobra.Command{
	Use:   "rollback <grade> <subject>",
	Short: "Restore the version the current one replaced",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, subject, err := gradeSubject(args)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *application) error {
			c, err := app.engine.Rollback(ctx, grade, subject)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published v%s: %s\n", c.Version, c.OptimizationReason)
			return nil
		})
	},
}

func init() {
	curriculaCmd.AddCommand(curriculaListCmd)
	curriculaCmd.AddCommand(curriculaHistoryCmd)
	curriculaCmd.AddCommand(curriculaAnalyzeCmd)
	curriculaCmd.AddCommand(curriculaEvaluateCmd)
	curriculaCmd.AddCommand(curriculaOptimizeCmd)
	curriculaCmd.AddCommand(curriculaRollbackCmd)
}
