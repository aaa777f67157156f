package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/filaops/scheduler/backend/internal/config"
	"github.com/filaops/scheduler/backend/internal/repository"
	"github.com/filaops/scheduler/backend/internal/seed"
	"github.com/filaops/scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation to run (1: insert random users, 2: insert random machines, 3: insert random jobs, 4: seed demo board)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not touch the database, ping to fail fast
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if n <= 0 {
			slog.Error("invalid user count")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("failed to generate user", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("failed to insert user", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("inserted users", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("invalid machine count")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				machine := utils.GenerateRandomMachine()
				if err := repo.CreateMachine(machine); err != nil {
					slog.Error("failed to insert machine", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("inserted machines", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("invalid job count")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				job := utils.GenerateRandomJob()
				if err := repo.CreateJob(job); err != nil {
					slog.Error("failed to insert job", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("inserted jobs", slog.Int("count", n-cnt))
		}
	case 4:
		seed.SeedDemoBoard(repo)
	default:
		slog.Error("unknown operation")
	}
}
