package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashita-ai/compendium/internal/seed"
	"github.com/ashita-ai/compendium/internal/telemetry"
)

func newSeedCmd(a *app) *cobra.Command {
	var dir, bucket, prefix string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load CSV seed files into the catalog",
		Long: `Seed reads the catalog CSV files from a local directory or an S3 bucket and
upserts them by index in a single transaction. Re-running a seed is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var src seed.Source
			switch {
			case dir != "":
				src = seed.DirSource{Dir: dir}
			case bucket != "":
				s3src, err := seed.NewS3Source(ctx, seed.S3Config{
					Bucket:    bucket,
					Prefix:    prefix,
					Region:    a.cfg.S3Region,
					Endpoint:  a.cfg.S3Endpoint,
					PathStyle: a.cfg.S3Endpoint != "",
				})
				if err != nil {
					return err
				}
				src = s3src
			default:
				return errors.New("seed: one of --dir or --s3-bucket is required")
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			report, err := seed.NewLoader(db, telemetry.NewMetrics(), a.logger).Load(ctx, src)
			if err != nil {
				return err
			}
			for _, file := range seed.Files() {
				if n, ok := report.Rows[file]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%-38s %6d rows\n", file, n)
				}
			}
			for _, file := range report.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "%-38s skipped\n", file)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the seed CSV files (default COMPENDIUM_SEED_DIR)")
	cmd.Flags().StringVar(&bucket, "s3-bucket", "", "S3 bucket holding the seed CSV files (default COMPENDIUM_SEED_S3_BUCKET)")
	cmd.Flags().StringVar(&prefix, "s3-prefix", "", "key prefix inside the bucket (default COMPENDIUM_SEED_S3_PREFIX)")
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if !cmd.Flags().Changed("dir") {
			dir = a.cfg.SeedDir
		}
		if !cmd.Flags().Changed("s3-bucket") {
			bucket = a.cfg.SeedS3Bucket
		}
		if !cmd.Flags().Changed("s3-prefix") {
			prefix = a.cfg.SeedS3Prefix
		}
	}
	return cmd
}
