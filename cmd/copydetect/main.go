package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/config"
	"github.com/braindler/braindler-multimodal/internal/logger"
	"github.com/braindler/braindler-multimodal/internal/models"
	"github.com/braindler/braindler-multimodal/internal/plagiarism"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, compares the two inputs and writes the report to stdout.
// It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("copydetect", flag.ContinueOnError)
	fs.SetOutput(stderr)

	pathA := fs.String("a", "", "first document group, JSON {document_id: {page: text}}")
	pathB := fs.String("b", "", "second document group, same format as -a")
	configPath := fs.String("config", "", "YAML file with analysis options")
	format := fs.String("format", "text", "output format: text, json or yaml")
	blockSize := fs.Int("block-size", 0, "override the block size in characters")
	workers := fs.Int("workers", 0, "block matcher workers; 0 runs sequentially, negative sizes from the CPU count")
	logLevel := fs.String("log-level", "warn", "log level")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *pathA == "" || *pathB == "" {
		fmt.Fprintln(stderr, "Both -a and -b are required")
		fs.Usage()
		return 2
	}

	logger.InitWithWriter(*logLevel, "console", stderr)

	opts, err := config.LoadAnalysisOptions(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *blockSize > 0 {
		opts.BlockSize = *blockSize
	}

	groupA, err := loadGroup(*pathA)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	groupB, err := loadGroup(*pathB)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var pool *plagiarism.WorkerPool
	if *workers != 0 {
		pool = plagiarism.NewWorkerPool(ctx, *workers)
		defer pool.Close()
	}

	detector, err := plagiarism.NewDetector(opts, pool)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	result, err := detector.Detect(ctx, groupA, groupB)
	if err != nil {
		log.Error().Err(err).Msg("Comparison failed")
		return 1
	}

	report := Report{GroupA: groupA.Name, GroupB: groupB.Name, Result: result}
	if err := writeReport(stdout, *format, report); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadGroup reads a group file; the group is named after the file.
func loadGroup(path string) (models.DocumentGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.DocumentGroup{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pages map[string]map[int]string
	if err := json.Unmarshal(data, &pages); err != nil {
		return models.DocumentGroup{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return models.GroupFromPageMap(name, pages), nil
}
