package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// NewEntitiesCommand creates the entities command group.
func NewEntitiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entities",
		Aliases: []string{"entity"},
		Short:   "Work with entity collections",
		Long: `List, inspect, and modify records of any entity collection.

Collections need no declaration: any name works, unknown names surface as
server-side 404s.`,
	}

	cmd.AddCommand(newEntitiesListCommand())
	cmd.AddCommand(newEntitiesGetCommand())
	cmd.AddCommand(newEntitiesCreateCommand())
	cmd.AddCommand(newEntitiesUpdateCommand())
	cmd.AddCommand(newEntitiesDeleteCommand())
	cmd.AddCommand(newEntitiesCountCommand())
	cmd.AddCommand(newEntitiesExportCommand())
	cmd.AddCommand(newEntitiesImportCommand())

	return cmd
}

func newEntitiesListCommand() *cobra.Command {
	var (
		sortBy   string
		limit    int
		skip     int
		fields   []string
		queryArg string
	)

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			opts := &base44.ListOptions{Sort: sortBy, Limit: limit, Skip: skip, Fields: fields}

			entity := client.Entities().Entity(args[0])

			var records []base44.Entity

			if queryArg != "" {
				var query base44.QueryFilter
				if err := parseJSONFlag(queryArg, &query); err != nil {
					return err
				}

				records, err = entity.Filter(cmd.Context(), query, opts)
			} else {
				records, err = entity.List(cmd.Context(), opts)
			}

			if err != nil {
				return fmt.Errorf("failed to list %s: %w", args[0], err)
			}

			return renderEntities(records)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", "", "sort field (prefix with - for descending)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of records to skip")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "restrict returned fields")
	cmd.Flags().StringVarP(&queryArg, "query", "q", "", "filter as a JSON mapping, e.g. '{\"price\":{\"$gte\":100}}'")

	return cmd
}

func newEntitiesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Fetch one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			record, err := client.Entities().Entity(args[0]).Get(cmd.Context(), args[1])
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", args[0], err)
			}

			return renderValue(record)
		},
	}
}

func newEntitiesCreateCommand() *cobra.Command {
	var dataArg string

	cmd := &cobra.Command{
		Use:   "create <entity>",
		Short: "Create a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			var data base44.Entity
			if err := parseJSONFlag(dataArg, &data); err != nil {
				return err
			}

			record, err := client.Entities().Entity(args[0]).Create(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}

			return renderValue(record)
		},
	}

	cmd.Flags().StringVarP(&dataArg, "data", "d", "", "record fields as JSON")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newEntitiesUpdateCommand() *cobra.Command {
	var dataArg string

	cmd := &cobra.Command{
		Use:   "update <entity> <id>",
		Short: "Update a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			var data base44.Entity
			if err := parseJSONFlag(dataArg, &data); err != nil {
				return err
			}

			record, err := client.Entities().Entity(args[0]).Update(cmd.Context(), args[1], data)
			if err != nil {
				return fmt.Errorf("failed to update %s: %w", args[0], err)
			}

			return renderValue(record)
		},
	}

	cmd.Flags().StringVarP(&dataArg, "data", "d", "", "partial record fields as JSON")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newEntitiesDeleteCommand() *cobra.Command {
	var queryArg string

	cmd := &cobra.Command{
		Use:   "delete <entity> [id]",
		Short: "Delete a record, or many by query",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			entity := client.Entities().Entity(args[0])

			if len(args) == 2 {
				if err := entity.Delete(cmd.Context(), args[1]); err != nil {
					return fmt.Errorf("failed to delete %s: %w", args[0], err)
				}

				fmt.Printf("Deleted %s %s\n", args[0], args[1])

				return nil
			}

			var query base44.QueryFilter
			if err := parseJSONFlag(queryArg, &query); err != nil {
				return err
			}

			deleted, err := entity.DeleteMany(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to delete %s records: %w", args[0], err)
			}

			fmt.Printf("Deleted %d records\n", deleted)

			return nil
		},
	}

	cmd.Flags().StringVarP(&queryArg, "query", "q", "", "filter as a JSON mapping (required without an id)")

	return cmd
}

func newEntitiesCountCommand() *cobra.Command {
	var queryArg string

	cmd := &cobra.Command{
		Use:   "count <entity>",
		Short: "Count records matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			var query base44.QueryFilter
			if err := parseJSONFlag(queryArg, &query); err != nil {
				return err
			}

			count, err := client.Entities().Entity(args[0]).Count(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", args[0], err)
			}

			fmt.Println(count)

			return nil
		},
	}

	cmd.Flags().StringVarP(&queryArg, "query", "q", "", "filter as a JSON mapping")

	return cmd
}

func newEntitiesExportCommand() *cobra.Command {
	var (
		queryArg string
		format   string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "export <entity>",
		Short: "Export records to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			var query base44.QueryFilter
			if err := parseJSONFlag(queryArg, &query); err != nil {
				return err
			}

			data, err := client.Entities().Entity(args[0]).Export(cmd.Context(), query, format)
			if err != nil {
				return fmt.Errorf("failed to export %s: %w", args[0], err)
			}

			if outPath == "" {
				_, err = os.Stdout.Write(data)

				return err
			}

			if err := os.WriteFile(outPath, data, 0o600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			fmt.Printf("Exported %d bytes to %s\n", len(data), outPath)

			return nil
		},
	}

	cmd.Flags().StringVarP(&queryArg, "query", "q", "", "filter as a JSON mapping")
	cmd.Flags().StringVar(&format, "format", "json", "export format (csv, json, xlsx)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	return cmd
}

func newEntitiesImportCommand() *cobra.Command {
	var (
		filePath       string
		skipDuplicates bool
		updateExisting bool
		mappingArg     string
	)

	cmd := &cobra.Command{
		Use:   "import <entity>",
		Short: "Import records from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			var mapping map[string]string
			if err := parseJSONFlag(mappingArg, &mapping); err != nil {
				return err
			}

			file, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer func() { _ = file.Close() }()

			result, err := client.Entities().Entity(args[0]).Import(cmd.Context(),
				base44.NewFileUpload(file.Name(), file),
				&base44.ImportOptions{
					SkipDuplicates: skipDuplicates,
					UpdateExisting: updateExisting,
					Mapping:        mapping,
				})
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}

			return renderValue(result)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "file to import")
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "skip duplicate records")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "update records that already exist")
	cmd.Flags().StringVar(&mappingArg, "mapping", "", "column-to-field mapping as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
