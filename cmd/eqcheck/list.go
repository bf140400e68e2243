package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List contracts, their candidates and effective run configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		infos, err := s.runs.ListContracts(cmd.Context())
		if err != nil {
			return err
		}
		if done, err := printStructured(cmd.OutOrStdout(), infos); done {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()
		fmt.Fprintln(w, "CONTRACT\tENTRY\tITERATIONS\tCOMPLEXITY\tTIMEOUT\tCANDIDATES")
		for _, info := range infos {
			entry := info.EntryPoint
			if entry == "" {
				entry = "-"
			}
			cfg := info.Configuration
			fmt.Fprintf(w, "%s\t%s\t%d\t%d..%d\t%dms\t%s\n",
				info.Name, entry, cfg.Iterations, cfg.MinComplexity, cfg.MaxComplexity,
				cfg.TimeoutMillis, strings.Join(info.Candidates, ","))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
