// File path: cmd/realty/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicodishanthj/Katral_realty/internal/api"
	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/comparables"
	"github.com/nicodishanthj/Katral_realty/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "realty",
		Short:         "Real estate assistant: chat agent, property analysis and valuation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if level := strings.TrimSpace(opts.logLevel); level != "" {
				cfg.LogLevel = level
			}
			if err := common.SetLevel(cfg.LogLevel); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newAskCmd(opts),
		newAnalyzeCmd(opts),
		newValuateCmd(opts),
		newEnvironmentCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := common.Logger()
			cfg := opts.cfg
			if strings.TrimSpace(addr) != "" {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			comps, err := buildComponents(ctx, cfg)
			if err != nil {
				return err
			}
			defer comps.Close()
			for _, feature := range []config.Feature{config.FeatureChat, config.FeatureAnalysis, config.FeatureSocial, config.FeatureValuation, config.FeatureEnvironment} {
				if err := cfg.Validate(feature); err != nil {
					logger.Warn("realty: feature not fully configured", "feature", feature, "error", err)
				}
			}

			server, err := api.NewServer(cfg, comps.services())
			if err != nil {
				return fmt.Errorf("build server: %w", err)
			}
			httpServer := &http.Server{
				Addr:              cfg.Addr,
				Handler:           server,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("realty: server listening", "addr", cfg.Addr, "health", "/healthz")
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("realty: shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer one chat message and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.Validate(config.FeatureChat); err != nil {
				return err
			}
			comps, err := buildComponents(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer comps.Close()
			answer, err := comps.runner.Answer(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), answer)
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the four-stage property analysis for a target read from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.Validate(config.FeatureAnalysis); err != nil {
				return err
			}
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var target comparables.Target
			if err := json.Unmarshal(raw, &target); err != nil {
				return fmt.Errorf("decode target: %w", err)
			}
			comps, err := buildComponents(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer comps.Close()
			report, err := comps.pipeline.Analyze(cmd.Context(), target)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "target property JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newEnvironmentCmd(opts *rootOptions) *cobra.Command {
	var radius int
	cmd := &cobra.Command{
		Use:   "environment <address>",
		Short: "Write a neighbourhood report for an address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.Validate(config.FeatureEnvironment); err != nil {
				return err
			}
			comps, err := buildComponents(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer comps.Close()
			report, err := comps.environment.Report(cmd.Context(), strings.Join(args, " "), radius)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().IntVar(&radius, "radius", 1000, "search radius in meters")
	return cmd
}

func newValuateCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "valuate",
		Short: "Run the price model on a property JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.Validate(config.FeatureValuation); err != nil {
				return err
			}
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			comps, err := buildComponents(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer comps.Close()
			result, err := comps.valuator.Valuate(cmd.Context(), raw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(result))
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "property JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
