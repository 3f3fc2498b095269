package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"stealthcompany.com/care-vitals/internal/config"
	"stealthcompany.com/care-vitals/internal/dal"
	"stealthcompany.com/care-vitals/internal/orchestrator"
	"stealthcompany.com/care-vitals/internal/sequence"
	"stealthcompany.com/care-vitals/pkg/zerolog_config"
)

const seedLock = "seed"

func main() {
	rootCmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load demo patients and vital readings",
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.Flags().Int("patients", 20, "number of patients to create")
	rootCmd.Flags().Int("vitals", 5, "readings per patient")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	nPatients, _ := cmd.Flags().GetInt("patients")
	nVitals, _ := cmd.Flags().GetInt("vitals")
	if nPatients < 0 || nVitals < 0 {
		return fmt.Errorf("--patients and --vitals must not be negative")
	}

	config.LoadEnvFiles()
	cfg := config.Load()

	zerolog_config.SetAppPrefix("care-vitals-seed")
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs", cfg.LogLevel); err != nil {
		return err
	}

	ctx, cancel := orchestrator.NewSignalHandler().Context(context.Background())
	defer cancel()

	store, err := orchestrator.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if locker, ok := store.(dal.Locker); ok {
		unlock, err := locker.Lock(ctx, seedLock, "care-vitals-seed", time.Hour)
		if errors.Is(err, dal.ErrLocked) {
			return fmt.Errorf("another seed run is in progress")
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				log.Warn().Err(err).Msg("Failed to release seed lock")
			}
		}()
	}

	patients := dal.NewPatientModel(store, sequence.NewGenerator(store))
	vitals := dal.NewVitalModel(store, patients)

	s := &seeder{
		patients: patients,
		vitals:   vitals,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		now:      time.Now().UTC(),
	}
	created, readings, err := s.seed(ctx, nPatients, nVitals)
	if err != nil {
		return err
	}

	log.Info().
		Int("patients", created).
		Int("vitals", readings).
		Msg("Seed complete")
	return nil
}
