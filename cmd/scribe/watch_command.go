package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	overrides := &runOverrides{}
	var settleSeconds int

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and transcribe media files as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve watch dir: %w", err)
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

			settle := time.Duration(cfg.Watch.SettleSeconds) * time.Second
			if settleSeconds > 0 {
				settle = time.Duration(settleSeconds) * time.Second
			}

			out := cmd.OutOrStdout()
			logger := logging.NewComponentLogger(pipe.logger, "watch-run")

			// Settled files arrive from timer goroutines; process them one
			// at a time so concurrent arrivals do not oversubscribe the host.
			var runMu sync.Mutex
			handler := func(hctx context.Context, path string) {
				runMu.Lock()
				defer runMu.Unlock()

				batch, err := pipe.store.CreateBatch(hctx, path, cfg.Transcription.Model, cfg.Chunking.Strategy)
				if err != nil {
					logger.Error("create batch", logging.Error(err))
					return
				}
				if err := pipe.store.AddFile(hctx, batch.ID, path); err != nil {
					logger.Error("enqueue file", logging.Error(err))
					return
				}
				if err := runBatch(hctx, out, pipe, batch); err != nil {
					logger.Error("process file",
						logging.String(logging.FieldSource, path),
						logging.Error(err))
				}
			}

			watcher, err := watch.New(dir, settle, handler, pipe.logger)
			if err != nil {
				return err
			}
			defer watcher.Close()

			fmt.Fprintf(out, "Watching %s (settle %s); press Ctrl-C to stop\n", dir, settle)
			if err := watcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			// Let an in-flight handler finish before the store closes.
			runMu.Lock()
			defer runMu.Unlock()
			return nil
		},
	}

	overrides.register(cmd)
	cmd.Flags().IntVar(&settleSeconds, "settle", 0, "Seconds a file must stay quiet before processing")
	return cmd
}
