// Command vocalcoach scores recordings from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jang1563/worship-vocal-ai/internal/adapters/decoder"
	"github.com/jang1563/worship-vocal-ai/internal/config"
	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
	"github.com/jang1563/worship-vocal-ai/internal/core/services"
	"github.com/jang1563/worship-vocal-ai/internal/logger"
)

type options struct {
	calibration string
	singerID    string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "vocalcoach",
		Short:         "Score worship vocal recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.calibration, "calibration", os.Getenv("VOCAL_CALIBRATION_FILE"), "YAML calibration overlay")
	root.PersistentFlags().StringVar(&opts.singerID, "singer", "", "singer ID stored with the result")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	var style string
	analyzeCmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze one recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := domain.ParseStyle(style)
			if !ok {
				return fmt.Errorf("--style must be slow or fast, got %q", style)
			}
			return runAnalyze(cmd.OutOrStdout(), opts, args[0], s)
		},
	}
	analyzeCmd.Flags().StringVar(&style, "style", "", "recording style (slow or fast)")

	compareCmd := &cobra.Command{
		Use:   "compare <slow> <fast>",
		Short: "Compare a slow and a fast recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), cmd.OutOrStdout(), opts, args[0], args[1])
		},
	}

	calibrationCmd := &cobra.Command{
		Use:   "calibration",
		Short: "Print the effective calibration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := config.LoadCalibration(opts.calibration)
			if err != nil {
				return err
			}
			return config.WriteCalibration(cmd.OutOrStdout(), cal)
		},
	}

	root.AddCommand(analyzeCmd, compareCmd, calibrationCmd)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newAnalyzer(opts *options) (*services.Analyzer, func(), error) {
	cal, err := config.LoadCalibration(opts.calibration)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(opts.logLevel)
	if err != nil {
		return nil, nil, err
	}
	a, err := services.NewAnalyzer(cal, log)
	if err != nil {
		return nil, nil, err
	}
	return a, func() { _ = log.Sync() }, nil
}

func readRecording(path string, style domain.Style, singerID string) (services.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return services.Recording{}, fmt.Errorf("read %s: %w", path, err)
	}
	buf, err := decoder.New(0).Decode(data)
	if err != nil {
		return services.Recording{}, fmt.Errorf("%s: %w", path, err)
	}
	return services.Recording{
		Buffer:   buf,
		SingerID: singerID,
		Label:    filepath.Base(path),
		Style:    style,
	}, nil
}

func runAnalyze(w io.Writer, opts *options, path string, style domain.Style) error {
	a, done, err := newAnalyzer(opts)
	if err != nil {
		return err
	}
	defer done()

	rec, err := readRecording(path, style, opts.singerID)
	if err != nil {
		return err
	}
	result, err := a.AnalyzeSingle(rec)
	if err != nil {
		return err
	}
	return writeJSON(w, result)
}

func runCompare(ctx context.Context, w io.Writer, opts *options, slowPath, fastPath string) error {
	a, done, err := newAnalyzer(opts)
	if err != nil {
		return err
	}
	defer done()

	slow, err := readRecording(slowPath, domain.StyleSlow, opts.singerID)
	if err != nil {
		return err
	}
	fast, err := readRecording(fastPath, domain.StyleFast, opts.singerID)
	if err != nil {
		return err
	}
	cmp, err := a.AnalyzeDual(ctx, slow, fast)
	if err != nil {
		return err
	}
	return writeJSON(w, cmp)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
