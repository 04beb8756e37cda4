package storage

import (
	"context"
	"fmt"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"time"
)

// Store groups the relational storages. Storages obtained from the tx argument of
// Transaction share one database transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	Users() UserStorage
	Teams() TeamStorage
	Participants() ParticipantStorage
	Checkpoints() CheckpointStorage
	Rooms() RoomStorage
	Mentors() MentorStorage
	Queue() QueueStorage
	Judges() JudgeStorage
	Evaluations() EvaluationStorage
	Scores() ScoreStorage
	ProblemStatements() ProblemStatementStorage
	Settings() SettingStorage
}

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Open connects to postgres or sqlite and configures the pool.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if driver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	logging.Log.Infof("STORAGE: connected to %s database", driver)
	return db, nil
}

type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	logging.Log.Warnf("STORAGE: "+format, args...)
}

// newGormLogger sends gorm warnings through logging.Log. Missing rows surface as
// ErrNotFound from the storages and are not logged.
func newGormLogger() logger.Interface {
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Team{},
		&TeamParticipant{},
		&TeamCheckpoint{},
		&Room{},
		&Mentor{},
		&MentorshipQueueEntry{},
		&Judge{},
		&Evaluation{},
		&TeamScore{},
		&ProblemStatement{},
		&SystemSetting{},
	)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) Users() UserStorage               { return &GormUserStorage{DB: s.DB} }
func (s *GormStore) Teams() TeamStorage               { return &GormTeamStorage{DB: s.DB} }
func (s *GormStore) Participants() ParticipantStorage { return &GormParticipantStorage{DB: s.DB} }
func (s *GormStore) Checkpoints() CheckpointStorage   { return &GormCheckpointStorage{DB: s.DB} }
func (s *GormStore) Rooms() RoomStorage               { return &GormRoomStorage{DB: s.DB} }
func (s *GormStore) Mentors() MentorStorage           { return &GormMentorStorage{DB: s.DB} }
func (s *GormStore) Queue() QueueStorage              { return &GormQueueStorage{DB: s.DB} }
func (s *GormStore) Judges() JudgeStorage             { return &GormJudgeStorage{DB: s.DB} }
func (s *GormStore) Evaluations() EvaluationStorage   { return &GormEvaluationStorage{DB: s.DB} }
func (s *GormStore) Scores() ScoreStorage             { return &GormScoreStorage{DB: s.DB} }
func (s *GormStore) ProblemStatements() ProblemStatementStorage {
	return &GormProblemStatementStorage{DB: s.DB}
}
func (s *GormStore) Settings() SettingStorage { return &GormSettingStorage{DB: s.DB} }
