package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"driftaudit/internal/analyzer"
	"driftaudit/internal/config"
	"driftaudit/internal/models"
	"driftaudit/internal/oci"
	"driftaudit/internal/report"
	"driftaudit/internal/rules"
)

var (
	rulesFile  string
	outputDir  string
	skipUpload bool
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Runs the full IAM policy risk audit",
	Long: `Collects compartments, policies, principals and audit events from the
tenancy, analyzes them for risky grants and recent IAM changes, writes JSON
and Markdown reports, and uploads them to Object Storage.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runAudit(cmd))
	},
}

func runAudit(cmd *cobra.Command) int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return 1
	}
	if profile, _ := cmd.Flags().GetString("profile"); profile != "" {
		cfg.OCIConfigProfile = profile
	}
	if configFile, _ := cmd.Flags().GetString("config-file"); configFile != "" {
		cfg.OCIConfigFile = configFile
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	catalog := rules.Default()
	if rulesFile != "" {
		catalog, err = rules.LoadCatalogFromFile(rulesFile)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load rules file")
			return 1
		}
		logger.Info().Int("rules", len(catalog)).Str("file", rulesFile).Msg("loaded rule catalog override")
	}

	client, err := oci.NewClient(cfg.OCIConfigFile, cfg.OCIConfigProfile, cfg.OCIRegion)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize OCI clients")
		return 1
	}

	identityCollector := oci.NewIdentityCollector(client.Identity)
	auditCollector := oci.NewAuditCollector(client.Audit)

	compartments, err := identityCollector.ListCompartments(
		ctx, client.TenancyOCID, cfg.RootCompartmentOCID, cfg.IncludeSubcompartments)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list compartments")
		return 1
	}
	logger.Info().Int("count", len(compartments)).Msg("discovered accessible compartments in scope")

	var skipped []models.SkippedCompartment
	var inventory []models.PolicyEntry
	for i, compartment := range compartments {
		logger.Info().Str("compartment", compartment.Name).
			Msgf("collecting policies (%d/%d)", i+1, len(compartments))
		policies, err := identityCollector.ListPolicies(ctx, compartment.ID)
		if err != nil {
			skipped = append(skipped, models.SkippedCompartment{
				CompartmentID: compartment.ID,
				Reason:        fmt.Sprintf("identity.list_policies failed: %v", err),
			})
			logger.Warn().Err(err).Str("compartment", compartment.Name).Msg("could not read policies")
			continue
		}
		for _, policy := range policies {
			inventory = append(inventory, models.PolicyEntry{Compartment: compartment, Policy: policy})
		}
	}

	logger.Info().Msg("collecting tenancy IAM principal inventory")

	groups, err := identityCollector.ListGroups(ctx, client.TenancyOCID)
	if err != nil {
		groups = nil
		logger.Warn().Err(err).Msg("group listing failed")
	}
	users, err := identityCollector.ListUsers(ctx, client.TenancyOCID)
	if err != nil {
		users = nil
		logger.Warn().Err(err).Msg("user listing failed")
	}

	userIDs := make([]string, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}
	memberships, err := identityCollector.ListMembershipsForUsers(ctx, client.TenancyOCID, userIDs)
	if err != nil {
		memberships = nil
		logger.Warn().Err(err).Msg("membership listing failed")
	}

	dynamicGroups, err := identityCollector.ListDynamicGroups(ctx, client.TenancyOCID)
	if err != nil {
		dynamicGroups = nil
		logger.Warn().Err(err).Msg("dynamic group listing failed")
	}

	generatedAt := time.Now().UTC()
	startTime := generatedAt.Add(-time.Duration(cfg.AuditLookbackHours) * time.Hour)

	logger.Info().Time("from", startTime).Time("to", generatedAt).
		Msg("collecting audit events for scoped compartments")

	var events []models.RawAuditEvent
	seenEventIDs := make(map[string]bool)
	for _, compartment := range compartments {
		compartmentEvents, err := auditCollector.ListEvents(ctx, compartment.ID, startTime, generatedAt)
		if err != nil {
			logger.Warn().Err(err).Str("compartment", compartment.Name).Msg("audit event listing failed")
			continue
		}
		for _, event := range compartmentEvents {
			if event.EventID != nil {
				if seenEventIDs[*event.EventID] {
					continue
				}
				seenEventIDs[*event.EventID] = true
			}
			events = append(events, event)
		}
	}

	result := analyzer.Analyze(catalog, analyzer.Input{
		GeneratedAt:         generatedAt,
		Region:              client.Region,
		TenancyOCID:         client.TenancyOCID,
		AuditLookbackHours:  cfg.AuditLookbackHours,
		Compartments:        compartments,
		PolicyInventory:     inventory,
		Groups:              groups,
		Users:               users,
		Memberships:         memberships,
		DynamicGroups:       dynamicGroups,
		AuditEvents:         events,
		SkippedCompartments: skipped,
	})

	timestamp := generatedAt.Format("20060102T150405Z")
	jsonPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("iam_policy_drift_audit_%s.json", timestamp))
	markdownPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("iam_policy_drift_audit_%s.md", timestamp))

	if err := report.WriteJSON(result, jsonPath); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON report")
		return 1
	}
	if err := report.WriteMarkdown(result, markdownPath); err != nil {
		logger.Error().Err(err).Msg("failed to write Markdown report")
		return 1
	}
	logger.Info().Str("path", jsonPath).Msg("JSON report written")
	logger.Info().Str("path", markdownPath).Msg("Markdown report written")

	report.Display(result)

	if skipUpload {
		logger.Info().Msg("upload skipped (--skip-upload)")
		return 0
	}

	return uploadReports(ctx, client, cfg, compartments, jsonPath, markdownPath)
}

func uploadReports(
	ctx context.Context,
	client *oci.Client,
	cfg *config.AppConfig,
	compartments []models.Compartment,
	jsonPath, markdownPath string,
) int {
	logger := zerolog.Ctx(ctx)

	namespace := cfg.ObjectStorageNamespace
	if namespace == "" {
		var err error
		namespace, err = oci.ResolveNamespace(ctx, client.ObjectStorage)
		if err != nil {
			logger.Error().Err(err).Msg("could not resolve Object Storage namespace")
			if cfg.FailOnUploadError {
				return 2
			}
			return 0
		}
	}

	var candidates []string
	if cfg.ObjectStorageBucket != "" {
		candidates = append(candidates, cfg.ObjectStorageBucket)
	}
	if cfg.AutoDiscoverBucket {
		ids := make([]string, 0, len(compartments))
		for _, compartment := range compartments {
			ids = append(ids, compartment.ID)
		}
		for _, bucket := range oci.DiscoverBuckets(ctx, client.ObjectStorage, namespace, ids) {
			if !slices.Contains(candidates, bucket) {
				candidates = append(candidates, bucket)
			}
		}
	}
	if len(candidates) == 0 {
		logger.Error().Msg("no accessible bucket found for upload; set OCI_OBJECT_STORAGE_BUCKET or allow bucket listing in scope")
		if cfg.FailOnUploadError {
			return 2
		}
		return 0
	}

	var lastErr error
	for _, bucket := range candidates {
		uploader := oci.NewUploader(client.ObjectStorage, namespace, bucket, cfg.ObjectStoragePrefix)
		logger.Info().Str("bucket", bucket).Msg("attempting report upload")

		jsonResult, err := uploader.UploadFile(ctx, jsonPath, "application/json")
		if err != nil {
			lastErr = err
			logger.Warn().Err(err).Str("bucket", bucket).Msg("upload attempt failed")
			continue
		}
		markdownResult, err := uploader.UploadFile(ctx, markdownPath, "text/markdown")
		if err != nil {
			lastErr = err
			logger.Warn().Err(err).Str("bucket", bucket).Msg("upload attempt failed")
			continue
		}

		logger.Info().Str("uri", jsonResult.URI).Msg("uploaded")
		logger.Info().Str("uri", markdownResult.URI).Msg("uploaded")
		return 0
	}

	logger.Error().Err(lastErr).Msg("upload failed for all candidate buckets")
	if cfg.FailOnUploadError {
		return 2
	}
	return 0
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVar(&rulesFile, "rules", "", "Path to a YAML file overriding the built-in risk catalog")
	auditCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for report artifacts (overrides OCI_OUTPUT_DIR)")
	auditCmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Generate local reports only, do not upload to Object Storage")
}
