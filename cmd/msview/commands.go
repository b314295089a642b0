package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bpowers/msview"
	"github.com/bpowers/msview/dataset"
	"github.com/bpowers/msview/dataset/sqlitestore"
	"github.com/bpowers/msview/settings"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "msview",
		Short:         "Import acquisitions and print their derived views",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("db", "", "path to SQLite database")
	_ = root.MarkPersistentFlagRequired("db")

	root.AddCommand(newImportCmd(), newListCmd(), newDeleteCmd(), newShowCmd())
	return root
}

func openStore(cmd *cobra.Command) (*sqlitestore.SQLiteStore, error) {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, err
	}
	if dbPath == "" {
		return nil, fmt.Errorf("--db is required")
	}
	store, err := sqlitestore.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}

// importFile is the JSON layout accepted by import: one array per column.
type importFile struct {
	RetentionTime []int32     `json:"retention_time"`
	MassToCharge  [][]float32 `json:"mass_to_charge"`
	Signal        [][]uint16  `json:"signal"`
}

func newImportCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import FILE.json",
		Short: "Import an acquisition from a JSON file and print its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read acquisition: %w", err)
			}
			var in importFile
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("decode acquisition: %w", err)
			}
			ds, err := dataset.New(in.RetentionTime, in.MassToCharge, in.Signal)
			if err != nil {
				return err
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if name == "" {
				name = filepath.Base(args[0])
			}
			id, err := store.Save(name, ds)
			if err != nil {
				return fmt.Errorf("save acquisition: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "acquisition name (default: file name)")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved acquisitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			acqs, err := store.List()
			if err != nil {
				return fmt.Errorf("list acquisitions: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, a := range acqs {
				fmt.Fprintf(out, "%s\t%s\t%d scans\t%d peaks\n", a.ID, a.Name, a.Scans, a.Peaks)
			}
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a saved acquisition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.Get(id); err != nil {
				return err
			}
			return store.Delete(id)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "acquisition ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newShowCmd() *cobra.Command {
	var (
		id           string
		settingsPath string
		explode      bool
		filterNull   bool
		sortAxis     string
		view         string
		format       string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a derived view of a saved acquisition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := settings.Default()
			if settingsPath != "" {
				var err error
				s, err = settings.Load(os.DirFS(filepath.Dir(settingsPath)), filepath.Base(settingsPath))
				if err != nil {
					return err
				}
			}
			flags := cmd.Flags()
			if flags.Changed("explode") {
				s.Explode = explode
			}
			if flags.Changed("filter-null") {
				s.FilterNull = filterNull
			}
			if flags.Changed("sort") {
				axis, err := settings.ParseSortAxis(sortAxis)
				if err != nil {
					return err
				}
				s.Sort = axis
			}
			if view != "table" && view != "spectra" {
				return fmt.Errorf("--view must be 'table' or 'spectra'")
			}
			if format != "json" && format != "jsonl" && format != "arrow" {
				return fmt.Errorf("--format must be 'json', 'jsonl' or 'arrow'")
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			viewer := msview.New(msview.WithStore(store))
			dsID, err := viewer.Open(id)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if view == "spectra" {
				v, err := viewer.Spectra(ctx, dsID, s)
				if err != nil {
					return err
				}
				return writeView(cmd.OutOrStdout(), v, format)
			}
			v, err := viewer.Table(ctx, dsID, s)
			if err != nil {
				return err
			}
			return writeView(cmd.OutOrStdout(), v, format)
		},
	}
	f := cmd.Flags()
	f.StringVar(&id, "id", "", "acquisition ID")
	f.StringVar(&settingsPath, "settings", "", "YAML settings file")
	f.BoolVar(&explode, "explode", false, "one row per peak")
	f.BoolVar(&filterNull, "filter-null", false, "drop scans without peaks")
	f.StringVar(&sortAxis, "sort", "retention-time", "sort axis: retention-time or mass-to-charge")
	f.StringVar(&view, "view", "table", "view family: table or spectra")
	f.StringVar(&format, "format", "json", "output format: json, jsonl or arrow")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
