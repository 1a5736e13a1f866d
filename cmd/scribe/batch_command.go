package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/media"
	"scribe/internal/resources"
	"scribe/internal/scheduler"
)

// runOverrides carries per-invocation flag values layered over the config
// file. Zero values leave the config untouched.
type runOverrides struct {
	outputDir string
	model     string
	format    string
	strategy  string
	chunkSize int
	overlap   int
	workers   int
}

func (o *runOverrides) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.outputDir, "output-dir", "o", "", "Directory receiving rendered documents")
	flags.StringVarP(&o.model, "model", "m", "", "Model tier (tiny|base|small|medium|large-v3|auto)")
	flags.StringVarP(&o.format, "format", "f", "", "Output format (text|json|both)")
	flags.StringVar(&o.strategy, "strategy", "", "Chunking strategy (semantic|sentence|fixed)")
	flags.IntVar(&o.chunkSize, "chunk-size", 0, "Target chunk size in characters")
	flags.IntVar(&o.overlap, "overlap", 0, "Chunk overlap in characters")
	flags.IntVarP(&o.workers, "workers", "w", 0, "Worker count cap (0 = recommend from host)")
}

// apply returns a copy of cfg with the flag overrides folded in.
func (o *runOverrides) apply(cfg *config.Config) (*config.Config, error) {
	run := *cfg
	if strings.TrimSpace(o.outputDir) != "" {
		expanded, err := config.ExpandPath(o.outputDir)
		if err != nil {
			return nil, fmt.Errorf("resolve output dir: %w", err)
		}
		run.Paths.OutputDir = expanded
	}
	if strings.TrimSpace(o.model) != "" {
		run.Transcription.Model = strings.TrimSpace(o.model)
	}
	if strings.TrimSpace(o.format) != "" {
		run.Output.Format = strings.TrimSpace(o.format)
	}
	if strings.TrimSpace(o.strategy) != "" {
		run.Chunking.Strategy = strings.TrimSpace(o.strategy)
	}
	if o.chunkSize > 0 {
		run.Chunking.TargetSize = o.chunkSize
	}
	if o.overlap > 0 {
		run.Chunking.OverlapSize = o.overlap
	}
	if o.workers > 0 {
		run.Batch.Workers = o.workers
	}
	if err := run.EnsureDirectories(); err != nil {
		return nil, err
	}
	return &run, nil
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	overrides := &runOverrides{}
	var resumeID string

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Transcribe every media file under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resume := strings.TrimSpace(resumeID)
			if resume == "" && len(args) == 0 {
				return fmt.Errorf("a directory argument or --resume is required")
			}

			cfg, err := overrides.apply(ctx.configValue())
			if err != nil {
				return err
			}
			pipe, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer pipe.Close()

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			var batch *ledger.Batch
			if resume != "" {
				batch, err = pipe.store.GetBatch(runCtx, resume)
				if err != nil {
					return fmt.Errorf("resume batch %s: %w", resume, err)
				}
				if batch == nil {
					return fmt.Errorf("batch %q not found", resume)
				}
			} else {
				batch, err = createBatch(runCtx, pipe, cfg, args[0])
				if err != nil {
					return err
				}
			}

			return runBatch(runCtx, cmd.OutOrStdout(), pipe, batch)
		},
	}

	overrides.register(cmd)
	cmd.Flags().StringVar(&resumeID, "resume", "", "Resume a previous batch by its ID")
	return cmd
}

func createBatch(ctx context.Context, pipe *pipeline, cfg *config.Config, root string) (*ledger.Batch, error) {
	expanded, err := config.ExpandPath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	files, err := media.ScanDir(expanded)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported media files under %s (supported: %s)",
			expanded, strings.Join(media.SupportedExtensions(), ", "))
	}

	batch, err := pipe.store.CreateBatch(ctx, expanded, cfg.Transcription.Model, cfg.Chunking.Strategy)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if err := pipe.store.AddFile(ctx, batch.ID, file); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

// runBatch drives one scheduler run with console progress and prints the
// closing summary. Shared by batch and single.
func runBatch(ctx context.Context, out io.Writer, pipe *pipeline, batch *ledger.Batch) error {
	counts, err := pipe.store.BatchCounts(ctx, batch.ID)
	if err != nil {
		return err
	}
	printRunPlan(out, pipe, batch, counts)

	bar := newProgressBar(out, counts.Remaining())
	pipe.sched.OnProgress = func(done, total int, path, reason string) {
		_ = bar.Add(1)
	}

	result, runErr := pipe.sched.Run(ctx, batch.ID)
	_ = bar.Finish()
	fmt.Fprintln(out)

	if result != nil {
		printSummary(out, pipe, batch, result)
	}
	return runErr
}

func newProgressBar(out io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("transcribing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}

func printRunPlan(out io.Writer, pipe *pipeline, batch *ledger.Batch, counts ledger.Counts) {
	cfg := pipe.cfg
	rows := [][]string{
		{"Batch", batch.ID},
		{"Input", batch.RootPath},
		{"Files", strconv.Itoa(counts.Total)},
		{"Remaining", strconv.Itoa(counts.Remaining())},
		{"Model", describeModel(pipe, batch.Model)},
		{"Strategy", batch.Strategy},
		{"Format", cfg.Output.Format},
		{"Output dir", cfg.Paths.OutputDir},
	}
	if sample, err := pipe.monitor.SampleHost(); err == nil {
		rows = append(rows,
			[]string{"Host memory", humanize.IBytes(sample.AvailableMemoryBytes) + " available"},
			[]string{"Host CPUs", strconv.Itoa(sample.CPUCount)},
		)
	}
	fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
}

func describeModel(pipe *pipeline, model string) string {
	if trimmed := strings.TrimSpace(strings.ToLower(model)); trimmed != "" && trimmed != "auto" {
		return model
	}
	sample, err := pipe.monitor.SampleHost()
	if err != nil {
		return "auto"
	}
	tier := pipe.monitor.RecommendTier(sample.AvailableMemoryBytes)
	return fmt.Sprintf("auto → %s (%s)", tier, resources.Description(tier))
}

func printSummary(out io.Writer, pipe *pipeline, batch *ledger.Batch, result *scheduler.BatchResult) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Batch "+batch.ID, colorize) {
		fmt.Fprintln(out, line)
	}

	counts := result.Counts
	fmt.Fprintln(out, renderStatusLine("Succeeded", statusOK, strconv.Itoa(counts.Done), colorize))
	failKind := statusOK
	if counts.Failed > 0 {
		failKind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Failed", failKind, strconv.Itoa(counts.Failed), colorize))
	if remaining := counts.Remaining(); remaining > 0 {
		fmt.Fprintln(out, renderStatusLine("Remaining", statusWarn,
			fmt.Sprintf("%d (resume with --resume %s)", remaining, batch.ID), colorize))
	}

	if topics := collectTopics(result); len(topics) > 0 {
		fmt.Fprintln(out, renderStatusLine("Topics", statusInfo, strings.Join(topics, ", "), colorize))
	}

	if len(result.Failed) > 0 {
		fmt.Fprintln(out, "Failures:")
		paths := make([]string, 0, len(result.Failed))
		for path := range result.Failed {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Fprintf(out, "  - %s: %s\n", path, result.Failed[path])
		}
	}
}

// collectTopics gathers the distinct topics across all produced documents,
// title-cased for display.
func collectTopics(result *scheduler.BatchResult) []string {
	seen := make(map[string]struct{})
	titler := cases.Title(language.English)
	var topics []string
	for _, doc := range result.Succeeded {
		for _, topic := range doc.Topics() {
			if _, ok := seen[topic]; ok {
				continue
			}
			seen[topic] = struct{}{}
			topics = append(topics, titler.String(topic))
		}
	}
	sort.Strings(topics)
	return topics
}
