package main

import (
	"fmt"
	"os"

	"defaultreset/internal/models"
	"defaultreset/internal/reset"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one trigger evaluation, as a request to the service would",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configFile)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.evaluator.Check(cmd.Context())
		if err != nil {
			return err
		}
		st, err := reset.ReadStatus(cmd.Context(), a.options)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "outcome=%s should_run=%s completed=%s\n",
			res.Outcome, st.ShouldRun, st.Completed)
		if res.Report != nil {
			printReport(cmd, *res.Report)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset quantities now, ignoring the store cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configFile)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.resetter.ResetQuantities(cmd.Context(), reset.TriggerManual)
		if err != nil {
			return err
		}
		printReport(cmd, report)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:    "set-test-quantities",
	Short:  "Set every product to the test quantity (debug/test only)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configFile)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.resetter.SetQuantities(cmd.Context())
		if err != nil {
			return err
		}
		printReport(cmd, report)
		return nil
	},
}

// catalogFile is the YAML layout accepted by the import command
type catalogFile struct {
	Products []models.Product `yaml:"products"`
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Create or update products and their reset attributes from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var file catalogFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		a, err := newApp(configFile)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.catalog.Import(cmd.Context(), file.Products); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", len(file.Products))
		return nil
	},
}

func printReport(cmd *cobra.Command, r reset.Report) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d updated (%d custom, %d zeroed, %d fixed)\n",
		r.Trigger, r.Updated(), r.Custom, r.Zeroed, r.Fixed)
}
