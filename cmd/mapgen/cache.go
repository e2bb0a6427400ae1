package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mapgen/internal/driver"
)

func newCacheCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
	}

	cmd.AddCommand(newCacheDirCmd(root), newCacheCleanCmd(root))

	return cmd
}

// openCache returns the cache configured for the session, enabled or not.
func openCache(s *session) (*driver.Cache, error) {
	s.cfg.Cache = true
	return s.cache()
}

func newCacheDirCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.session(cmd, nil)
			if err != nil {
				return err
			}

			cache, err := openCache(s)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(s.stdout, cache.Dir())

			return err
		},
	}
}

func newCacheCleanCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every cached result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.session(cmd, nil)
			if err != nil {
				return err
			}

			cache, err := openCache(s)
			if err != nil {
				return err
			}

			if err := cache.Clear(); err != nil {
				return err
			}

			s.logger.Info(cmd.Context(), "cache cleared", "dir", s.relative(cache.Dir()))

			return nil
		},
	}
}
