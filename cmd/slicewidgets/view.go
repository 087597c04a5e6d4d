package main

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/slicewidgets/internal/config"
	"github.com/jask/slicewidgets/internal/provider"
	"github.com/jask/slicewidgets/internal/reactive"
	"github.com/jask/slicewidgets/internal/store"
	"github.com/jask/slicewidgets/internal/tui"
	"github.com/jask/slicewidgets/internal/widget"
	"github.com/jask/slicewidgets/internal/widgets/crosshairs"
	"github.com/jask/slicewidgets/internal/widgets/ruler"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the slice views and place widgets with the mouse",
	Args:  cobra.NoArgs,
	RunE:  runView,
}

func init() {
	viewCmd.Flags().Bool("restore", true, "recreate the saved widgets on start")
}

// newProvider builds a provider with every built-in widget type, seeded from
// the scene config.
func newProvider(cfg config.Config, log *slog.Logger) (*provider.Provider, *provider.Queue, error) {
	reg, err := widget.NewRegistry(ruler.Type(), crosshairs.Type())
	if err != nil {
		return nil, nil, err
	}
	q := &provider.Queue{}
	p, err := provider.New(provider.Options{
		Store: store.New(reactive.NewGraph(), store.Options{
			Slices:  cfg.Slices(),
			Spacing: cfg.Spacing(),
		}),
		Registry:  reg,
		Scheduler: q,
		Logger:    log,
	})
	if err != nil {
		return nil, nil, err
	}
	return p, q, nil
}

func runView(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	views, err := e.cfg.Views()
	if err != nil {
		return err
	}
	prov, q, err := newProvider(e.cfg, e.log)
	if err != nil {
		return err
	}
	app, err := tui.New(cmd.Context(), views, tui.Options{
		Provider: prov,
		Queue:    q,
		Archive:  e.archive,
		Logger:   e.log,
	})
	if err != nil {
		return err
	}

	if restore, _ := cmd.Flags().GetBool("restore"); restore {
		if _, err := e.archive.Restore(cmd.Context(), prov); err != nil {
			e.log.Warn("some widgets were not restored", "err", err)
		}
		q.Flush()
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
