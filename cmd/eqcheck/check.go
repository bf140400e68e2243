package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

var checkCmd = &cobra.Command{
	Use:   "check CONTRACT",
	Short: "Run a candidate against the contract's reference",
	Long: `Run a candidate against the contract's reference and report the first
divergence. The command exits non-zero unless the run passed.

Replay a failure by passing the seed printed in its report with --seed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		record, err := s.runs.RunNow(cmd.Context(), args[0], *checkCandidate, checkOverride(cmd))
		if err != nil {
			return err
		}
		if done, err := printStructured(cmd.OutOrStdout(), record); done {
			if err != nil {
				return err
			}
		} else {
			printRecord(cmd.OutOrStdout(), record)
		}
		return outcome(record)
	},
}

var (
	checkCandidate     *string
	checkSeed          *int64
	checkIterations    *int
	checkMinComplexity *int
	checkMaxComplexity *int
	checkTimeout       *int64
	checkEdgeCases     *int
	checkSimpleCases   *int
	checkMixedCases    *int
	checkMaxDiscards   *int
)

func init() {
	f := checkCmd.Flags()
	checkCandidate = f.StringP("candidate", "c", "correct", "Candidate to check")
	checkSeed = f.Int64P("seed", "s", 0, "Random seed, for replaying a run")
	checkIterations = f.IntP("iterations", "n", 0, "Number of iterations")
	checkMinComplexity = f.Int("min-complexity", 0, "Complexity of the first iteration")
	checkMaxComplexity = f.Int("max-complexity", 0, "Complexity of the last iteration")
	checkTimeout = f.Int64P("timeout", "t", 0, "Per-invocation timeout in milliseconds")
	checkEdgeCases = f.Int("edge-cases", 0, "Number of leading edge-case iterations")
	checkSimpleCases = f.Int("simple-cases", 0, "Number of simple-value iterations after the edge cases")
	checkMixedCases = f.Int("mixed-cases", 0, "Number of iterations mixing edge and simple values")
	checkMaxDiscards = f.Int("max-discards", 0, "Rejected cases tolerated before giving up")
	rootCmd.AddCommand(checkCmd)
}

// checkOverride holds only the flags given on the command line.
func checkOverride(cmd *cobra.Command) *domain.RunConfigOverride {
	f := cmd.Flags()
	o := &domain.RunConfigOverride{}
	if f.Changed("seed") {
		o.RandomSeed = domain.Ptr(*checkSeed)
	}
	if f.Changed("iterations") {
		o.Iterations = domain.Ptr(*checkIterations)
	}
	if f.Changed("min-complexity") {
		o.MinComplexity = domain.Ptr(*checkMinComplexity)
	}
	if f.Changed("max-complexity") {
		o.MaxComplexity = domain.Ptr(*checkMaxComplexity)
	}
	if f.Changed("timeout") {
		o.TimeoutMillis = domain.Ptr(*checkTimeout)
	}
	if f.Changed("edge-cases") {
		o.EdgeCaseIterations = domain.Ptr(*checkEdgeCases)
	}
	if f.Changed("simple-cases") {
		o.SimpleCaseIterations = domain.Ptr(*checkSimpleCases)
	}
	if f.Changed("mixed-cases") {
		o.MixedCaseIterations = domain.Ptr(*checkMixedCases)
	}
	if f.Changed("max-discards") {
		o.MaxDiscards = domain.Ptr(*checkMaxDiscards)
	}
	if o.IsEmpty() {
		return nil
	}
	return o
}

// outcome turns a finished run into the command's exit status.
func outcome(record *domain.RunRecord) error {
	switch record.Status {
	case domain.RunStatusPassed:
		return nil
	case domain.RunStatusFailed:
		return fmt.Errorf("%w: %s/%s", errs.ErrVerificationFailed, record.Contract, record.Candidate)
	default:
		msg := string(record.Status)
		if record.Error != nil {
			msg += ": " + *record.Error
		}
		return fmt.Errorf("run %s: %s", record.ID, msg)
	}
}

func printRecord(w io.Writer, record *domain.RunRecord) {
	fmt.Fprintf(w, "run        %s\n", record.ID)
	fmt.Fprintf(w, "contract   %s\n", record.Contract)
	fmt.Fprintf(w, "candidate  %s\n", record.Candidate)
	fmt.Fprintf(w, "status     %s\n", record.Status)
	if record.Error != nil {
		fmt.Fprintf(w, "error      %s\n", *record.Error)
	}

	report := record.Report
	if report == nil {
		return
	}
	fmt.Fprintf(w, "seed       %d\n", report.Seed)
	fmt.Fprintf(w, "iterations %d/%d (discarded %d)\n",
		report.Iterations, report.Configuration.Iterations, report.Discards)
	fmt.Fprintf(w, "duration   %s\n", report.Duration)

	f := report.Failure
	if f == nil {
		return
	}
	fmt.Fprintf(w, "\nfirst failure at iteration %d (complexity %d)\n", f.Iteration, f.Complexity)
	fmt.Fprintf(w, "  reason     %s\n", f.Reason)
	if f.Inputs.Receiver != "" {
		fmt.Fprintf(w, "  receiver   %s\n", f.Inputs.Receiver)
	}
	fmt.Fprintf(w, "  args       %s\n", strings.Join(f.Inputs.Args, ", "))
	printOutput(w, "reference", f.ReferenceOutput)
	printOutput(w, "candidate", f.CandidateOutput)
}

func printOutput(w io.Writer, label string, o domain.OutputSnapshot) {
	switch o.Behavior {
	case domain.BehaviorReturned:
		fmt.Fprintf(w, "  %-10s returned %s\n", label, o.Output)
	case domain.BehaviorThrew:
		fmt.Fprintf(w, "  %-10s threw %s\n", label, o.Error)
	default:
		fmt.Fprintf(w, "  %-10s %s\n", label, strings.ToLower(string(o.Behavior)))
	}
}
