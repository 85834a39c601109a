package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"timetable-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLectureStore keeps booked lectures in a SQL database. The table's
// unique indexes reject double bookings even if two processes share it.
type GormLectureStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewPostgresLectureStore connects to PostgreSQL using a DSN such as DB_URL.
func NewPostgresLectureStore(dsn string, log *slog.Logger) (*GormLectureStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres store requires DB_URL")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("connected to database")
	return NewGormLectureStore(db, log), nil
}

func NewGormLectureStore(db *gorm.DB, log *slog.Logger) *GormLectureStore {
	return &GormLectureStore{db: db, logger: log.With("component", "store")}
}

// Migrate creates or updates the booked_lectures table.
func (s *GormLectureStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.BookedLecture{}); err != nil {
		return fmt.Errorf("migrate booked_lectures: %w", err)
	}
	return nil
}

func (s *GormLectureStore) List(ctx context.Context) ([]models.BookedLecture, error) {
	var lectures []models.BookedLecture
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&lectures).Error; err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return lectures, nil
}

func (s *GormLectureStore) Get(ctx context.Context, id string) (*models.BookedLecture, error) {
	var lecture models.BookedLecture
	err := s.db.WithContext(ctx).First(&lecture, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLectureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lecture %s: %w", id, err)
	}
	return &lecture, nil
}

func (s *GormLectureStore) Create(ctx context.Context, lecture *models.BookedLecture) error {
	if err := s.db.WithContext(ctx).Create(lecture).Error; err != nil {
		return fmt.Errorf("create lecture: %w", err)
	}
	return nil
}

func (s *GormLectureStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.BookedLecture{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete lecture %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLectureNotFound
	}
	return nil
}

func (s *GormLectureStore) ReplaceGenerated(ctx context.Context, lectures []models.BookedLecture) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("origin = ?", models.OriginGenerated).Delete(&models.BookedLecture{})
		if res.Error != nil {
			return fmt.Errorf("clear generated lectures: %w", res.Error)
		}
		s.logger.Debug("cleared generated lectures", "count", res.RowsAffected)
		if len(lectures) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(lectures, 200).Error; err != nil {
			return fmt.Errorf("insert generated lectures: %w", err)
		}
		return nil
	})
}

func (s *GormLectureStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
