package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/media"
)

func newSingleCommand(ctx *commandContext) *cobra.Command {
	overrides := &runOverrides{}

	cmd := &cobra.Command{
		Use:   "single <file>",
		Short: "Transcribe a single media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", path)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory; use `scribe batch`", path)
			}
			if !media.IsSupported(path) {
				return fmt.Errorf("unsupported file extension %q (supported: %s)",
					filepath.Ext(path), strings.Join(media.SupportedExtensions(), ", "))
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

			batch, err := pipe.store.CreateBatch(runCtx, path, cfg.Transcription.Model, cfg.Chunking.Strategy)
			if err != nil {
				return err
			}
			if err := pipe.store.AddFile(runCtx, batch.ID, path); err != nil {
				return err
			}

			return runBatch(runCtx, cmd.OutOrStdout(), pipe, batch)
		},
	}

	overrides.register(cmd)
	return cmd
}
