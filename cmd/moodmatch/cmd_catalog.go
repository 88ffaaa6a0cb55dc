package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/moodmatch/internal/catalog"
	"github.com/justestif/moodmatch/internal/clustering"
	"github.com/justestif/moodmatch/internal/config"
	"github.com/justestif/moodmatch/internal/db"
	"github.com/justestif/moodmatch/internal/format"
	"github.com/justestif/moodmatch/internal/profile"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage the profile catalog",
	}
	cmd.AddCommand(newCatalogListCmd(a))
	cmd.AddCommand(newCatalogGroupsCmd(a))
	cmd.AddCommand(newCatalogValidateCmd(a))
	cmd.AddCommand(newCatalogSeedCmd(a))
	cmd.AddCommand(newCatalogExportCmd(a))
	return cmd
}

func newCatalogListCmd(a *app) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles in source order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			mode := format.ASCII
			if markdown {
				mode = format.Markdown
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.Profiles(mode, c.Profiles(), c.FallbackPosition()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render as a Markdown table")
	return cmd
}

func newCatalogGroupsCmd(a *app) *cobra.Command {
	cfg := clustering.DefaultGroupConfig()
	var markdown bool

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Group profiles whose conditions depend on similar emotions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			groups, ungrouped, err := clustering.GroupArchetypes(c.Profiles(), cfg)
			if err != nil {
				return err
			}
			mode := format.ASCII
			if markdown {
				mode = format.Markdown
			}
			fmt.Fprintln(cmd.OutOrStdout(), format.Groups(mode, groups, ungrouped))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&cfg.NumGroups, "groups", "k", cfg.NumGroups, "number of groups")
	f.IntVar(&cfg.MinGroupSize, "min-size", cfg.MinGroupSize, "smallest group to report")
	f.IntVar(&cfg.MaxEmotions, "max-emotions", cfg.MaxEmotions, "emotions considered when comparing profiles")
	f.BoolVar(&markdown, "markdown", false, "render as a Markdown table")
	return cmd
}

func newCatalogValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the catalog and report problems",
		Long: "Loads the configured catalog. Rows too short to parse fail the command.\n" +
			"Data-quality warnings, such as profiles that can never match, are logged.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			never := 0
			for _, p := range c.All() {
				if !p.HasConditions() && p.Label != c.Fallback().Label {
					never++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog OK: %d profiles\n", c.Len())
			if c.FallbackSynthesized() {
				fmt.Fprintf(out, "Fallback:   %s (synthesized)\n", c.Fallback().Label)
			} else {
				fmt.Fprintf(out, "Fallback:   %s\n", c.Fallback().Label)
			}
			if never > 0 {
				fmt.Fprintf(out, "Warning:    %d profiles have no conditions and can never match\n", never)
			}
			return nil
		},
	}
}

func newCatalogSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace the Postgres catalog with the file or embedded catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.cfg.DatabaseURL == "" {
				return config.ErrMissingDatabaseURL
			}

			// Seed always reads from a file or the embedded catalog
			var (
				c   *catalog.Catalog
				err error
			)
			if a.cfg.CatalogPath != "" {
				c, err = catalog.LoadFile(a.cfg.CatalogPath, fileFormat(a.cfg), a.catalogOptions()...)
			} else {
				c, err = catalog.Default(a.catalogOptions()...)
			}
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}

			rows, err := tabularRows(c)
			if err != nil {
				return err
			}

			database, err := db.New(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer database.Close()

			repo := database.Profiles()
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}

			importID, err := repo.ReplaceAll(ctx, rows)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d profiles (import %s)\n", len(rows), importID)
			return nil
		},
	}
}

func newCatalogExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as a YAML document to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return catalog.WriteYAML(cmd.OutOrStdout(), c.Profiles())
		},
	}
}

// tabularRows converts every profile to its stored row form. Nothing is
// returned if any profile cannot be written without changing its meaning.
func tabularRows(c *catalog.Catalog) ([][]string, error) {
	rows := make([][]string, 0, c.Len())
	for i, p := range c.All() {
		row, err := p.Row()
		if err != nil {
			return nil, fmt.Errorf("converting catalog for storage: %w", profile.AtRow(err, i+1))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// fileFormat returns the file format to use when the configured source is Postgres.
func fileFormat(cfg *config.Config) string {
	if cfg.CatalogFormat == config.FormatPostgres {
		return ""
	}
	return cfg.CatalogFormat
}
