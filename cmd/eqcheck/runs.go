package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.runs.ListRuns(cmd.Context(), domain.RunFilter{
			Contract: *runsContract,
			Statuses: domain.ParseStatuses(*runsStatus),
			Limit:    *runsLimit,
		})
		if err != nil {
			return err
		}
		if done, err := printStructured(cmd.OutOrStdout(), records); done {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintln(w, "RUN\tCONTRACT\tCANDIDATE\tSTATUS\tSEED\tCREATED")
		for _, r := range records {
			seed := "-"
			if r.Report != nil {
				seed = fmt.Sprint(r.Report.Seed)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Contract, r.Candidate, r.Status, seed, r.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show one recorded run with its failure details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		record, err := s.runs.GetRun(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if done, err := printStructured(cmd.OutOrStdout(), record); done {
			return err
		}
		printRecord(cmd.OutOrStdout(), record)
		return nil
	},
}

var seedsCmd = &cobra.Command{
	Use:   "seeds CONTRACT",
	Short: "List the seeds of failed runs of a contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		seeds, err := s.runs.FailingSeeds(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if done, err := printStructured(cmd.OutOrStdout(), seeds); done {
			return err
		}
		for _, seed := range seeds {
			fmt.Fprintln(cmd.OutOrStdout(), seed)
		}
		return nil
	},
}

var (
	runsContract *string
	runsStatus   *string
	runsLimit    *int
)

func init() {
	runsContract = runsCmd.Flags().String("contract", "", "Only runs of this contract")
	runsStatus = runsCmd.Flags().String("status", "", "Only runs with these statuses, comma separated")
	runsLimit = runsCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs")
	rootCmd.AddCommand(runsCmd, showCmd, seedsCmd)
}
