package repo

import (
	"CloudVault/config"
	"CloudVault/model"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqlDriver "github.com/go-sql-driver/mysql"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Db *gorm.DB

// autoMigrateAll migrates all database models.
func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.Folder{},
		&model.File{},
		&model.TrashItem{},
		&model.PublicShare{},
		&model.FriendFileShare{},
		&model.FileShare{},
		&model.NotifyTask{},
	)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,

		// relations are enforced by the services
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// InitDB opens the database selected by DB_DRIVER.
func InitDB() {
	switch config.AppConfig.DBDriver {
	case "mysql":
		InitMysql()
	default:
		InitSqlite()
	}
}

// InitSqlite opens the file backed SQLite database.
func InitSqlite() {
	db, err := OpenSqlite(config.AppConfig.SQLitePath + "?_pragma=busy_timeout(5000)")
	if err != nil {
		log.Fatal("init sqlite fail", err)
	}
	log.Println("init sqlite success")
	Db = db
}

// OpenSqlite opens and migrates a SQLite database for the given DSN.
func OpenSqlite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway
	sqlDB.SetMaxOpenConns(1)
	if err := autoMigrateAll(db); err != nil {
		return nil, err
	}
	return db, nil
}

// InitMysql initializes the main MySQL connection.
func InitMysql() {
	dsn := mysqlDSN(config.AppConfig.DBName)
	db, err := gorm.Open(gormMysql.Open(dsn), gormConfig())
	if err != nil && isUnknownDatabaseError(err) {
		if createErr := ensureMySQLDatabase(config.AppConfig.DBName); createErr != nil {
			log.Fatal("create mysql database fail", createErr)
		}
		db, err = gorm.Open(gormMysql.Open(dsn), gormConfig())
	}
	if err != nil {
		log.Fatal("init mysql fail", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("get sql db fail", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrateAll(db); err != nil {
		log.Fatal("migrate mysql fail", err)
	}
	log.Println("init mysql success")
	Db = db
}

func mysqlDSN(dbName string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPass,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		dbName,
	)
}

func isUnknownDatabaseError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1049
	}
	return strings.Contains(strings.ToLower(err.Error()), "unknown database")
}

func ensureMySQLDatabase(dbName string) error {
	dbName = strings.TrimSpace(dbName)
	if dbName == "" {
		return errors.New("empty database name")
	}

	serverDB, err := sql.Open("mysql", mysqlDSN(""))
	if err != nil {
		return err
	}
	defer serverDB.Close()

	if err = serverDB.Ping(); err != nil {
		return err
	}

	_, err = serverDB.Exec(
		"CREATE DATABASE IF NOT EXISTS " + quoteMySQLIdentifier(dbName) + " CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci",
	)
	return err
}

func quoteMySQLIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
