package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mobil-koeln/moko-board/internal/cache"
)

// feedStoreDir holds the last good feed under the cache directory
const feedStoreDir = "feeds"

// cacheDirs are the response cache and the last good feed store
func cacheDirs() []string {
	base := cache.DefaultCacheDir()
	return []string{base, filepath.Join(base, feedStoreDir)}
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Show or clear cached feeds",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, dir := range cacheDirs() {
				fc, err := cache.NewFileCache(dir, 0)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), fc.Dir())
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove cached responses and the last good feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, dir := range cacheDirs() {
				fc, err := cache.NewFileCache(dir, 0)
				if err != nil {
					return err
				}
				if err := fc.Clear(); err != nil {
					return fmt.Errorf("clear %s: %w", dir, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", fc.Dir())
			}
			return nil
		},
	})
	return cmd
}
