package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/truffle-sql/truffle/pkg/catalog"
)

const watchDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-check migrations on change",
		Long: `Watch a migrations directory and re-check it whenever a .sql file
changes. After each successful check the schema changes since the previous
one are printed. Press Ctrl+C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			dir := cc.Cfg.MigrationsDir
			if len(args) == 1 {
				dir = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cc, dir)
		},
	}
}

// watchState remembers the last good catalog between rebuilds.
type watchState struct {
	cc   *CommandContext
	dir  string
	prev *catalog.Catalog
}

func runWatch(ctx context.Context, cc *CommandContext, dir string) error {
	w := &watchState{cc: cc, dir: dir}
	if err := w.rebuild(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	r := cc.Renderer
	r.Println(r.Styles().Muted.Render(fmt.Sprintf("watching %s (Ctrl+C to stop)", dir)))

	rebuild := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".sql") {
				continue
			}
			cc.Logger.Debug("change detected", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case <-rebuild:
			if err := w.rebuild(); err != nil {
				r.Warnf("Error: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Warnf("Watcher error: %v", err)
		}
	}
}

// rebuild re-checks the directory from scratch. When the migrations are
// free of errors the diff against the previous good catalog is printed and
// the new catalog becomes the baseline.
func (w *watchState) rebuild() error {
	r := w.cc.Renderer
	s, err := w.cc.NewSimulator()
	if err != nil {
		return err
	}
	run, err := applyMigrations(s, w.dir, w.cc.Logger)
	if err != nil {
		return err
	}

	errs := 0
	for _, d := range run.Diagnostics() {
		r.Println(r.FormatDiagnostic(d.File, d.Diagnostic))
		if d.Severity.Rejects() {
			errs++
		}
	}
	stamp := time.Now().Format(time.TimeOnly)
	if errs > 0 {
		r.Println(r.Styles().Error.Render(fmt.Sprintf("[%s] %d error(s); schema unchanged", stamp, errs)))
		return nil
	}

	cur := s.Snapshot()
	switch {
	case w.prev == nil:
		r.Println(r.Styles().Success.Render(fmt.Sprintf("[%s] ok: %d table(s)", stamp, cur.Len())))
	default:
		changes := catalog.Diff(w.prev, cur)
		if len(changes) == 0 {
			r.Println(r.Styles().Muted.Render(fmt.Sprintf("[%s] ok: no schema changes", stamp)))
		}
		for _, c := range changes {
			r.Println(styleChange(r, c))
		}
	}
	w.prev = cur
	return nil
}
