package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/hilite-cli/internal/logger"
)

var watchOut string

// watchDebounce lets editor write bursts settle before re-applying.
const watchDebounce = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [document]",
	Short: "Re-apply highlights whenever the document changes",
	Long: `Watches the document file and re-runs the highlight pipeline on every
change, writing the annotated HTML to the output file. Because anchors are
text-based, highlights survive edits to the document as long as their text
still appears.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "output", "o", "", "annotated HTML output file (required)")
	watchCmd.MarkFlagRequired("output") //nolint:errcheck,gosec // flag exists
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	docPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve document path: %w", err)
	}

	if err := applyOnce(cmd, docPath); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // shutdown path

	// Watch the directory, not the file: editors replace files via rename
	// and a file watch dies with the old inode.
	if err := watcher.Add(filepath.Dir(docPath)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", docPath)

	var debounce *time.Timer
	var debounceC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !sameFile(event.Name, docPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("document event: %s", event.Op)
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				debounceC = debounce.C
			} else {
				if !debounce.Stop() {
					<-debounce.C
				}
				debounce.Reset(watchDebounce)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil
			if err := applyOnce(cmd, docPath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "re-apply failed: %v\n", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

// applyOnce runs the full pipeline against a freshly parsed tree and writes
// the annotated output.
func applyOnce(cmd *cobra.Command, docPath string) error {
	session, err := openSession(docPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := session.service.Load(ctx); err != nil {
		return fmt.Errorf("failed to load highlights: %w", err)
	}
	report, err := session.service.ApplyAll(ctx)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	if err := session.writeOutput(cmd, watchOut); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s: applied %d highlight(s), dropped %d\n",
		time.Now().Format("15:04:05"), report.Resolved, len(report.Dropped))
	return nil
}

func sameFile(a, b string) bool {
	abs, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	return abs == b
}
