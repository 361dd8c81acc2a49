// Package cli implements the command-line interface. Commands hold no
// business logic; they parse flags, call the injected services and format
// output.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driving"
	"github.com/minerva-edu/tutor-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute runs.
var (
	knowledgeService driving.KnowledgeService
	askService       driving.AskService
	transferService  driving.TransferService
	settingsService  driving.SettingsService
	questionStore    driven.QuestionStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Course knowledge base and Q&A assistant",
	Long: `tutor manages a searchable knowledge base built from course material
(chapters, lessons, text and video transcripts) and answers student
questions grounded in that material.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetKnowledgeService injects the knowledge service.
func SetKnowledgeService(svc driving.KnowledgeService) {
	knowledgeService = svc
}

// SetAskService injects the ask service.
func SetAskService(svc driving.AskService) {
	askService = svc
}

// SetTransferService injects the transfer service.
func SetTransferService(svc driving.TransferService) {
	transferService = svc
}

// SetSettingsService injects the settings service.
func SetSettingsService(svc driving.SettingsService) {
	settingsService = svc
}

// SetQuestionStore injects the question log store.
func SetQuestionStore(store driven.QuestionStore) {
	questionStore = store
}

// SetVersion sets the version string shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which cancels long-running
// commands such as 'mcp serve' and 'import --watch'.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
