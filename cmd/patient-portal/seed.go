package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/medrecords/patient-portal/internal/infrastructure/db/mongo"
	"github.com/medrecords/patient-portal/pkg/logger"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace the patients collection with the sample records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadRuntime(ctx)
			if err != nil {
				return err
			}
			log := logger.Get()

			client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.MongoURI(), Database: cfg.Mongo.Database})
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			repo := mongo.NewPatientRepository(db)
			if err := repo.EnsureIndexes(ctx); err != nil {
				return err
			}
			n, err := repo.ReplaceAll(ctx, mongo.SeedPatients(time.Now().UTC()))
			if err != nil {
				log.Error().Err(err).Msg("seed failed")
				return err
			}
			log.Info().Int("inserted", n).Str("database", cfg.Mongo.Database).Msg("patients seeded")
			return nil
		},
	}
}
