package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rudikristanto/apiscan/config"
	"github.com/rudikristanto/apiscan/extract"
	"github.com/rudikristanto/apiscan/openapi"
	"github.com/rudikristanto/apiscan/profile"
	"github.com/rudikristanto/apiscan/report"
	"github.com/rudikristanto/apiscan/schema"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	projectRootFlag := flag.String("path", cwd, "project root path")
	configFlag := flag.String("config", "", "path to apiscan.yaml")
	outputFlag := flag.String("output", "", "output file (overrides config)")
	formatFlag := flag.String("format", "", "output format, json or yaml (overrides config)")
	titleFlag := flag.String("title", "", "document title (overrides config)")
	frameworkFlag := flag.String("framework", "", "annotation style, spring or jaxrs (skips detection)")
	verboseFlag := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("cannot load config", "error", err)
		os.Exit(1)
	}
	if *outputFlag != "" {
		cfg.Output = *outputFlag
	}
	if *formatFlag != "" {
		cfg.Format = *formatFlag
	}
	if *titleFlag != "" {
		cfg.Title = *titleFlag
	}
	if *frameworkFlag != "" {
		cfg.Framework = *frameworkFlag
	}
	if *verboseFlag {
		cfg.Verbose = true
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	projectRoot, err := filepath.Abs(*projectRootFlag)
	if err != nil {
		logger.Error("cannot determine project root absolute path", "error", err)
		os.Exit(1)
	}

	start := time.Now()

	p, ok := profile.ForName(cfg.Framework)
	if ok {
		logger.Info("annotation style pinned by configuration", "style", p.Style)
	} else {
		if cfg.Framework != "" {
			logger.Warn("unknown framework name, falling back to detection", "framework", cfg.Framework)
		}
		// The one hard failure: no recognizable annotation style means no
		// file is worth processing.
		p, err = profile.Detect(projectRoot)
		if err != nil {
			if errors.Is(err, profile.ErrNoAnnotationStyle) {
				logger.Error("aborting scan", "error", err)
			} else {
				logger.Error("framework detection failed", "error", err)
			}
			os.Exit(1)
		}
		logger.Info("detected annotation style", "style", p.Style)
	}

	scanner := extract.NewScanner(logger, projectRoot, p)
	result := scanner.Scan()
	logger.Info("scan finished", "files", result.FilesScanned, "operations", len(result.Operations), "errors", len(result.Errors))

	resolver := schema.NewResolver(logger, projectRoot)
	assembler := schema.NewAssembler(logger, resolver)
	assembler.Assemble(result.Operations, cfg.MaxSchemaDepth)

	builder := openapi.NewBuilder(logger, cfg.Title, cfg.Version, cfg.BuildTimeout())
	doc, buildWarnings := builder.Build(context.Background(), result.Operations, assembler)

	if err := openapi.WriteFile(cfg.Output, doc, cfg.Format); err != nil {
		logger.Error("cannot write document", "error", err)
		os.Exit(1)
	}

	warnings := append(result.Errors, buildWarnings...)
	report.Render(os.Stdout, report.Summary{
		ProjectRoot:  projectRoot,
		FilesScanned: result.FilesScanned,
		Operations:   result.Operations,
		SchemaCount:  resolver.CachedSchemaCount(),
		Warnings:     warnings,
		Elapsed:      time.Since(start),
		Output:       cfg.Output,
	})
}
