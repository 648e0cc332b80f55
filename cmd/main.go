package main

import (
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
	"github.com/simplymanage/simplymanage-server/cronJobs"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/server"
	"github.com/simplymanage/simplymanage-server/session"
	"github.com/sirupsen/logrus"
)

func initiateCronJobs() error {
	logrus.Infof("initiating cron jobs")
	overdueSweep := cron.NewWithLocation(time.Local)
	err := overdueSweep.AddFunc("@hourly", func() {
		cronJobs.SweepOverdueLoans()
	})
	if err != nil {
		logrus.Errorf("cron job (overdue sweep) initiation failed %v", err)
		return err
	}
	overdueSweep.Start()
	return nil
}

func sessionTTL() time.Duration {
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil {
			return ttl
		}
		logrus.Errorf("invalid SESSION_TTL %q, using default", raw)
	}
	return 7 * 24 * time.Hour
}

func main() {
	cfg := database.Config{
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		DatabaseName: os.Getenv("DB_NAME"),
		SSLMode:      database.SSLModeDisable,
		User: database.Credentials{
			User:     os.Getenv("DB_USER_ROLE_NAME"),
			Password: os.Getenv("DB_USER_ROLE_PASSWORD"),
		},
		Staff: database.Credentials{
			User:     os.Getenv("DB_STAFF_ROLE_NAME"),
			Password: os.Getenv("DB_STAFF_ROLE_PASSWORD"),
		},
		Admin: database.Credentials{
			User:     os.Getenv("DB_ADMIN_ROLE_NAME"),
			Password: os.Getenv("DB_ADMIN_ROLE_PASSWORD"),
		},
	}
	if err := database.ConnectAndMigrate(cfg); err != nil {
		logrus.Panicf("Failed to initialize and migrate database with error: %+v", err)
	}
	logrus.Print("migration successful!!")

	rdb := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	session.Init(rdb, sessionTTL())

	if err := initiateCronJobs(); err != nil {
		logrus.Error("error from cron job ", err)
	}

	// create server instance
	srv := server.SetupRoutes()

	logrus.Print("Server started at ", os.Getenv("SERVER_HOST_PORT"))
	if err := srv.Run(":" + os.Getenv("SERVER_HOST_PORT")); err != nil {
		logrus.Panicf("Failed to run server with error: %+v", err)
	}
}
