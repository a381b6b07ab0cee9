package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"driftaudit/internal/models"
	"driftaudit/internal/report"
)

var renderOutput string

var renderCmd = &cobra.Command{
	Use:   "render <report.json>",
	Short: "Re-renders the Markdown report from an existing JSON artifact",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			er(fmt.Sprintf("Error reading report: %v", err))
		}

		var rpt models.Report
		if err := json.Unmarshal(data, &rpt); err != nil {
			er(fmt.Sprintf("Error parsing report: %v", err))
		}

		outPath := renderOutput
		if outPath == "" {
			outPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".md"
		}
		if err := report.WriteMarkdown(&rpt, outPath); err != nil {
			er(fmt.Sprintf("Error writing Markdown report: %v", err))
		}

		fmt.Printf("Markdown report written to %s\n", outPath)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderOutput, "output", "", "Output path for the Markdown report (default: alongside the JSON)")
}
