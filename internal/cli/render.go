package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joacominatel/telemetrydash/internal/printer"
	"github.com/joacominatel/telemetrydash/internal/view"
	"github.com/joacominatel/telemetrydash/internal/web"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run one fetch cycle and print the dashboard",
	Long: `Run one fetch cycle and print the resulting view to stdout.

Formats:
  text      table and counters for the terminal (default)
  html      the dashboard fragment
  page      a complete HTML document`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("format", "f", "text", "output format: text, html or page")
	renderCmd.Flags().Int("max-width", 40, "max column width for text output")
	renderCmd.Flags().Duration("timeout", 30*time.Second, "timeout for the fetch cycle")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	maxWidth, _ := cmd.Flags().GetInt("max-width")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	write, err := writerFor(format, maxWidth)
	if err != nil {
		return err
	}

	rt, err := setup(cmd, sessionOptions{console: true})
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	controller := view.NewController(rt.loader(), rt.source.Variant)
	if err := controller.Activate(ctx); err != nil {
		return err
	}

	state := controller.State()
	if err := write(cmd.OutOrStdout(), state); err != nil {
		return err
	}
	if state.Kind() == view.KindError {
		return fmt.Errorf("%s", state.Err())
	}
	return nil
}

type writeFunc func(w io.Writer, s *view.State) error

func writerFor(format string, maxWidth int) (writeFunc, error) {
	switch format {
	case "text", "":
		return func(w io.Writer, s *view.State) error {
			printer.Render(w, s, printer.Options{MaxWidth: maxWidth})
			return nil
		}, nil
	case "html", "page":
		r, err := web.NewRenderer()
		if err != nil {
			return nil, err
		}
		if format == "page" {
			return r.Page, nil
		}
		return r.Fragment, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text, html or page)", format)
	}
}
