package cache

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"f1trackrenderer/pkg/cache"
	"f1trackrenderer/pkg/cmd/common"
)

func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "inspects and cleans the session cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "lists cached sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s cache.Store) error { return List(s, cmd.OutOrStdout()) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm KEY...",
		Short: "removes cached sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s cache.Store) error { return Remove(s, cmd.OutOrStdout(), args...) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "removes all cached sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s cache.Store) error { return Clear(s, cmd.OutOrStdout()) })
		},
	})
	return cmd
}

func withStore(fn func(cache.Store) error) error {
	s, err := common.OpenStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func List(s cache.Store, out io.Writer) error {
	entries, err := s.List()
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Key", "Size", "Created"})
	var total uint64
	for _, e := range entries {
		total += uint64(e.Size)
		t.AppendRow(table.Row{e.Key, humanize.Bytes(uint64(e.Size)), humanize.Time(e.Created)})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d entries", len(entries)), humanize.Bytes(total), ""})
	t.Render()
	return nil
}

func Remove(s cache.Store, out io.Writer, keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := s.Delete(k); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		fmt.Fprintf(out, "removed %s\n", k)
	}
	return errors.Join(errs...)
}

func Clear(s cache.Store, out io.Writer) error {
	entries, err := s.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.Delete(e.Key); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "removed %d entries\n", len(entries))
	return nil
}
