package cmd

import (
	"fmt"
	"os"

	"driftaudit/internal/utils"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "driftaudit",
	Short: "Driftaudit - OCI IAM policy risk and drift auditing",
	Long: `Driftaudit scans an OCI tenancy for risky IAM policy statements and
correlates them with recent identity change events from the Audit service.`,
}

func Execute() error {
	utils.DisplayBanner()

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("profile", "p", "", "OCI config profile (overrides OCI_CONFIG_PROFILE)")
	rootCmd.PersistentFlags().StringP("config-file", "c", "", "OCI config file path (overrides OCI_CONFIG_FILE)")
}

func er(msg interface{}) {
	fmt.Println("Error:", msg)
	os.Exit(1)
}
