package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"driftaudit/internal/report"
	"driftaudit/internal/rules"
)

var rulesCatalogFile string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Prints the effective risk rule catalog",
	Long:  `Prints the risk rule catalog the audit would use, colorized by severity.`,
	Run: func(cmd *cobra.Command, args []string) {
		catalog := rules.Default()
		if rulesCatalogFile != "" {
			loaded, err := rules.LoadCatalogFromFile(rulesCatalogFile)
			if err != nil {
				er(fmt.Sprintf("Error loading rules: %v", err))
			}
			catalog = loaded
		}

		report.DisplayCatalog(catalog)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVar(&rulesCatalogFile, "rules", "", "Path to a YAML file overriding the built-in risk catalog")
}
