package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/config"
	"github.com/example/camp-scheduler/internal/reservation"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Manage stored reservation configurations",
	}
	c.AddCommand(newConfigPutCmd())
	c.AddCommand(newConfigGetCmd())
	return c
}

func newConfigPutCmd() *cobra.Command {
	var (
		recordID string
		file     string
	)

	c := &cobra.Command{
		Use:   "put",
		Short: "Store a reservation config record (JSON from --file or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			var r io.Reader = os.Stdin
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var record reservation.ConfigRecord
			if err := json.NewDecoder(r).Decode(&record); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			for i := range record {
				if record[i].ID == "" {
					record[i].ID = uuid.NewString()
				}
			}

			store, closeDB, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := store.Put(cmd.Context(), recordID, record); err != nil {
				return err
			}
			fmt.Printf("stored record %s with %d configuration(s)\n", recordID, len(record))
			return nil
		},
	}

	c.Flags().StringVar(&recordID, "id", "default", "record id")
	c.Flags().StringVar(&file, "file", "", "path to a JSON record (defaults to stdin)")
	return c
}

func newConfigGetCmd() *cobra.Command {
	var recordID string

	c := &cobra.Command{
		Use:   "get",
		Short: "Print a stored reservation config record as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			store, closeDB, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			record, err := store.Get(cmd.Context(), recordID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		},
	}

	c.Flags().StringVar(&recordID, "id", "default", "record id")
	return c
}
