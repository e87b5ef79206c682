package judge

import (
	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/godror/godror"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/elmanelman/sql-trainer/config"
)

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
	sqlx.BindDriver(config.DriverOracle, sqlx.NAMED)
}

// connectDB opens and pings a database. SQLite pools are limited to a single
// connection so that in-memory databases are shared and writes never race.
func connectDB(driverName, connectionString string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driverName, connectionString)
	if err != nil {
		return nil, err
	}
	if driverName == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ConnectMainDB opens the embedded database holding the exercise index and
// submissions.
func ConnectMainDB(cfg config.MainDBConfig) (*sqlx.DB, error) {
	return connectDB(config.DriverSQLite, cfg.Path)
}

// ConnectPracticeDB opens a database exercises run against.
func ConnectPracticeDB(cfg config.PracticeDBConfig) (*sqlx.DB, error) {
	return connectDB(cfg.Driver, cfg.ConnectionString())
}
