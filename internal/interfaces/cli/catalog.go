package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hapkiduki/apnacart/internal/domain/repository"
	"github.com/hapkiduki/apnacart/internal/infrastructure/seed"
)

func migrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the catalog schema if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", a.db.Dialect())
			return nil
		},
	}
}

func seedCmd(configFile *string) *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Replace the catalog with the seed vegetables",
		Long:  "Deletes every vegetable and inserts the seed catalog. Without --file the built-in catalog (or catalog.seed_file) is used.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if file == "" {
				file = a.cfg.Catalog.SeedFile
			}
			vegetables, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			status, err := a.catalog.Reseed(cmd.Context(), vegetables)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.Message)
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "YAML seed catalog to load")
	return c
}

func linkImagesCmd(configFile *string) *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:   "link-images",
		Short: "Recompute every vegetable's image from its name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			results, err := a.catalog.RelinkImages(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			changed := 0
			for _, r := range results {
				if !r.Changed {
					continue
				}
				changed++
				old := r.OldImage
				if old == "" {
					old = "(none)"
				}
				fmt.Fprintf(out, "- %s: %s -> %s\n", r.Name, old, r.NewImage)
			}

			verb := "Updated"
			if dryRun {
				verb = "Would update"
			}
			fmt.Fprintf(out, "%s %d of %d vegetables\n", verb, changed, len(results))
			return nil
		},
	}

	c.Flags().BoolVar(&dryRun, "dry-run", false, "print the changes without writing them")
	return c
}

func dbCheckCmd(configFile *string) *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "db-check",
		Short: "Check the database connection and list vegetables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.db.Ping(ctx); err != nil {
				return err
			}

			status, err := a.catalog.Status(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected (%s)\n", a.db.Dialect())
			fmt.Fprintln(out, status.Message)
			if status.Count == 0 {
				fmt.Fprintln(out, "(no vegetables found; run `apnacart seed`)")
				return nil
			}

			vegetables, err := a.repo.FindAll(ctx, repository.VegetableFilter{Limit: limit})
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			for _, v := range vegetables {
				fmt.Fprintf(out, "- #%d %s (%s) %s\n", v.ID, v.Name, v.FixedWeight, v.ImageURL)
			}
			return nil
		},
	}

	c.Flags().IntVarP(&limit, "limit", "n", 10, "number of vegetables to list (0 lists all)")
	return c
}
