package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dyd/internal/model"
	"dyd/internal/usecase"
	"dyd/pkg/cvtemplate"
	infra "dyd/pkg/infrastructure"
	"dyd/pkg/pagination"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "cvexport",
		Short:   "Render CV documents outside the server",
		Version: Version,
	}
	rootCmd.PersistentFlags().String("chrome", os.Getenv("CHROME_PATH"), "Chrome/Chromium executable")
	rootCmd.PersistentFlags().Int("width", pagination.DefaultPageWidth, "Page width in CSS pixels")
	rootCmd.PersistentFlags().StringP("template", "t", "", "Template ("+strings.Join(cvtemplate.Themes, ", ")+")")

	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(pagesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readCV(path string) (model.CV, error) {
	var cv model.CV
	b, err := os.ReadFile(path)
	if err != nil {
		return cv, fmt.Errorf("read cv: %w", err)
	}
	if err := json.Unmarshal(b, &cv); err != nil {
		return cv, fmt.Errorf("decode cv: %w", err)
	}
	if err := model.Validate(cv); err != nil {
		return cv, err
	}
	return cv, nil
}

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [cv.json]",
		Short: "Render a CV to PDF, DOCX or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := readCV(args[0])
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			mode, _ := cmd.Flags().GetString("mode")
			out, _ := cmd.Flags().GetString("out")
			theme, _ := cmd.Flags().GetString("template")
			chrome, _ := cmd.Flags().GetString("chrome")
			width, _ := cmd.Flags().GetInt("width")

			log := slog.New(slog.NewTextHandler(os.Stderr, nil))
			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
			defer cancel()

			doc, err := usecase.RenderDocument(ctx, infra.NewChromedpRenderer(chrome), cv,
				usecase.ExportRequest{Format: format, Mode: mode, Template: theme}, width, log)
			if err != nil {
				return err
			}

			if out == "" {
				out = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])) + "." + doc.Ext
			}
			var w io.Writer = os.Stdout
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if _, err := w.Write(doc.Data); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes, %d pages, template %s)\n", out, len(doc.Data), doc.Pages, doc.Template)
			}
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", usecase.FormatPDF, "Output format (pdf, docx, html)")
	cmd.Flags().StringP("mode", "m", usecase.ModeSmart, "PDF mode (smart, print)")
	cmd.Flags().StringP("out", "o", "", "Output file, - for stdout")
	return cmd
}

// pagesCmd prints where the smart paginator would cut, which is handy when
// tuning a template's section markup.
func pagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages [cv.json]",
		Short: "Show the page cuts chosen for a CV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := readCV(args[0])
			if err != nil {
				return err
			}
			theme, _ := cmd.Flags().GetString("template")
			chrome, _ := cmd.Flags().GetString("chrome")
			width, _ := cmd.Flags().GetInt("width")
			above, _ := cmd.Flags().GetFloat64("above")
			below, _ := cmd.Flags().GetFloat64("below")

			html, err := cvtemplate.Render(cv, theme)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			capture, err := infra.NewChromedpRenderer(chrome).Capture(ctx, html, width)
			if err != nil {
				return err
			}
			pages, err := pagination.PlanCuts(capture.Height, capture.Boundaries, pagination.Options{
				PageWidth: capture.Width,
				Above:     above,
				Below:     below,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"content_height": capture.Height,
				"boundaries":     capture.Boundaries,
				"pages":          pages,
				"offsets":        pagination.Offsets(pages),
			})
		},
	}
	cmd.Flags().Float64("above", pagination.DefaultAbove, "Search window above the ideal cut, as a fraction of the page")
	cmd.Flags().Float64("below", pagination.DefaultBelow, "Search window below the ideal cut, as a fraction of the page")
	return cmd
}
