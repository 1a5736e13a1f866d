package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scribe/internal/audiocache"
	"scribe/internal/config"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the extracted-audio cache",
	}

	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func openCache(cfg *config.Config) (*audiocache.Cache, error) {
	if !cfg.AudioCache.Enabled {
		return nil, fmt.Errorf("audio cache is disabled in the configuration")
	}
	return audiocache.New(cfg.Paths.CacheDir, float64(cfg.AudioCache.MaxGiB), nil), nil
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show audio cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			cache, err := openCache(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			entries := cache.List()
			fmt.Fprintf(out, "Location: %s\n", cfg.Paths.CacheDir)
			fmt.Fprintf(out, "Entries:  %d\n", len(entries))
			fmt.Fprintf(out, "Size:     %s / %s\n",
				humanize.IBytes(uint64(cache.TotalSize())),
				humanize.IBytes(uint64(cfg.AudioCache.MaxGiB)<<30))

			if len(entries) == 0 {
				return nil
			}

			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					filepath.Base(entry.SourcePath),
					humanize.IBytes(uint64(entry.SizeBytes)),
					entry.LastUsed.Local().Format(stampLayout),
					shortKey(entry.Key),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Source", "Size", "Last used", "Key"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached audio artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			cache, err := openCache(cfg)
			if err != nil {
				return err
			}

			count := cache.Count()
			size := cache.TotalSize()
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s entries (%s freed)\n",
				strconv.Itoa(count), humanize.IBytes(uint64(size)))
			return nil
		},
	}
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
