package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func summaryCmd(opts *rootOptions) *cobra.Command {
	var date string

	c := &cobra.Command{
		Use:   "summary",
		Short: "Print voyage, ticket and seat totals for one schedule date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := domain.ParseDate(date)
			if err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			agg, err := a.slice.Schedules().Build(cmd.Context(), d)
			if err != nil {
				return err
			}
			cmd.Println(agg.String())
			return printJSON(cmd, agg.Summary())
		},
	}

	c.Flags().StringVarP(&date, "date", "d", "", "schedule date, YYYY-MM-DD (required)")
	_ = c.MarkFlagRequired("date")
	return c
}

func loadCmd(opts *rootOptions) *cobra.Command {
	var date string
	var voyageID int64

	c := &cobra.Command{
		Use:   "load",
		Short: "Print total, sold and remaining seats of a voyage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := domain.ParseDate(date)
			if err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			load, err := a.slice.Schedules().Load(cmd.Context(), d, voyageID)
			if err != nil {
				return err
			}
			return printJSON(cmd, load)
		},
	}

	c.Flags().StringVarP(&date, "date", "d", "", "schedule date, YYYY-MM-DD (required)")
	c.Flags().Int64Var(&voyageID, "voyage", 0, "voyage id (required)")
	_ = c.MarkFlagRequired("date")
	_ = c.MarkFlagRequired("voyage")
	return c
}
