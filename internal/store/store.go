package store

import (
	"github.com/oscargavin/foremost-sub001/internal/store/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store interface {
	Run() Run
	Close() error
}

type DataStore struct {
	db  *gorm.DB
	run Run
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:  db,
		run: NewRunStore(db),
	}
}

func (s *DataStore) Run() Run {
	return s.run
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitDB opens the sqlite file backing the run history and migrates the
// schema.
func InitDB(dataFile string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataFile), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.RunRecord{}); err != nil {
		return nil, err
	}

	return db, nil
}
