package database

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Role selects one of the credential-scoped connection pools. The role is
// resolved once per request and the pool handle is passed down the call
// chain; helpers never pick a pool themselves.
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

type SSLMode string

const (
	SSLModeEnable  SSLMode = "enable"
	SSLModeDisable SSLMode = "disable"
)

// Credentials are the per-role database credentials. The database's own
// grants are what reject disallowed statements, the pools just route them.
type Credentials struct {
	User     string
	Password string
}

type Config struct {
	Host         string
	Port         string
	DatabaseName string
	SSLMode      SSLMode
	User         Credentials
	Staff        Credentials
	Admin        Credentials
}

var pools = map[Role]*sqlx.DB{}

// ConnectAndMigrate opens the three role-scoped pools and runs migrations
// on the admin pool.
func ConnectAndMigrate(cfg Config) error {
	for role, cred := range map[Role]Credentials{
		RoleUser:  cfg.User,
		RoleStaff: cfg.Staff,
		RoleAdmin: cfg.Admin,
	} {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cred.User, cred.Password, cfg.DatabaseName, cfg.SSLMode)
		db, err := sqlx.Open("postgres", connStr)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s pool", role)
		}
		if err := db.Ping(); err != nil {
			return errors.Wrapf(err, "failed to ping %s pool", role)
		}
		pools[role] = db
	}
	return migrateUp(pools[RoleAdmin])
}

// Pool returns the connection pool bound to the given role.
func Pool(role Role) *sqlx.DB {
	return pools[role]
}

// migrateUp function migrate the database and handles the migration logic
func migrateUp(db *sqlx.DB) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(
		"file://database/migrations",
		"postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Tx provides the transaction wrapper on an already-resolved pool handle,
// so a multi-statement operation cannot silently change roles mid-way.
// A commit failure is returned, callers must not report success for work
// that never committed.
func Tx(db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "failed to start a transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logrus.Errorf("failed to rollback tx: %s", rbErr)
			}
			return
		}
		if cmErr := tx.Commit(); cmErr != nil {
			logrus.Errorf("failed to commit tx: %s", cmErr)
			err = errors.Wrap(cmErr, "failed to commit transaction")
		}
	}()
	err = fn(tx)
	return err
}

// Close shuts down all pools, for tests and clean exits.
func Close() {
	for role, db := range pools {
		if err := db.Close(); err != nil {
			logrus.Errorf("failed to close %s pool: %s", role, err)
		}
	}
}
