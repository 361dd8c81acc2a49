package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/minerva-edu/tutor-cli/internal/logger"
)

var importWatch bool

// importDebounce coalesces bursts of write events from editors that save in
// multiple steps.
const importDebounce = 500 * time.Millisecond

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import course content from a JSON export",
	Long: `Reads a JSON export and ingests every item, re-chunking and re-embedding
as it goes. Items that fail validation are skipped and reported.

With --watch, the file is re-imported every time it changes. This keeps
the knowledge base in sync with an export that is regenerated by an
external pipeline. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importWatch, "watch", false, "re-import whenever the file changes")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if transferService == nil {
		return errors.New("transfer service not configured")
	}

	path := args[0]
	if err := importOnce(cmd, path); err != nil {
		if !importWatch {
			return err
		}
		// In watch mode a broken initial state is not fatal; a later
		// rewrite of the file may fix it.
		cmd.Printf("Initial import failed: %v\n", err)
	}

	if !importWatch {
		return nil
	}
	return watchAndImport(cmd, path)
}

func importOnce(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	report, err := transferService.Import(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	cmd.Printf("Imported %d items\n", report.Items)
	for _, key := range report.Failed {
		cmd.Printf("  skipped: %s\n", key)
	}
	return nil
}

// watchAndImport re-imports path on every write until the context is
// cancelled. The parent directory is watched rather than the file itself
// so that atomic rename-over-save (the common editor and pipeline pattern)
// keeps being observed after the original inode disappears.
func watchAndImport(cmd *cobra.Command, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best-effort cleanup on exit

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	cmd.Printf("Watching %s for changes (Ctrl-C to stop)\n", path)

	var debounce *time.Timer
	reimport := make(chan struct{}, 1)

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("Change detected: %s", event.Op)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(importDebounce, func() {
				select {
				case reimport <- struct{}{}:
				default:
				}
			})

		case <-reimport:
			if err := importOnce(cmd, path); err != nil {
				cmd.Printf("Re-import failed: %v\n", err)
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", watchErr)
		}
	}
}
