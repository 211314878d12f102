package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"yacut/types"
)

const mysqlDuplicateEntry = 1062

// SQLStorage implements the Storage interface on top of gorm.
type SQLStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open returns the storage selected by the scheme of dsn:
// memory://, sqlite://, file:, postgres://, postgresql:// or mysql://.
func Open(dsn string, capacity int, logLevel string, logger *zap.Logger) (Storage, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "memory://"):
		return NewInMemoryStorage(capacity, logger), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "file:"):
		dialector = sqlite.Open(dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	case strings.HasPrefix(dsn, "mysql://"):
		dialector = mysql.Open(strings.TrimPrefix(dsn, "mysql://"))
	default:
		return nil, fmt.Errorf("unsupported database uri scheme: %q", RedactDSN(dsn))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logger, logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if dialector.Name() == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return NewSQLStorage(db, logger)
}

// RedactDSN masks the credentials of dsn so it can be logged.
func RedactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		// file: paths carry no credentials
		return dsn
	}
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		return u.Redacted()
	}
	// mysql's tcp(host:port) address is not a valid URL host
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://xxxxx" + rest[at:]
	}
	return dsn
}

// NewSQLStorage migrates the schema and returns a storage using db.
func NewSQLStorage(db *gorm.DB, logger *zap.Logger) (*SQLStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&types.URLMap{}); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}
	return &SQLStorage{db: db, logger: logger}, nil
}

// Create inserts a single mapping.
func (s *SQLStorage) Create(ctx context.Context, urlMap *types.URLMap) error {
	if err := s.db.WithContext(ctx).Create(urlMap).Error; err != nil {
		urlMap.ID = 0
		return s.translate(err, urlMap.Short)
	}
	s.logger.Info("Short URL created successfully",
		zap.String("short", urlMap.Short),
		zap.String("original", urlMap.Original))
	return nil
}

// CreateBatch inserts all mappings in one transaction.
func (s *SQLStorage) CreateBatch(ctx context.Context, urlMaps []*types.URLMap) error {
	if len(urlMaps) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range urlMaps {
			if err := tx.Create(m).Error; err != nil {
				return s.translate(err, m.Short)
			}
		}
		return nil
	})
	if err != nil {
		for _, m := range urlMaps {
			m.ID = 0
		}
		s.logger.Warn("Batch rolled back", zap.Int("batchSize", len(urlMaps)), zap.Error(err))
		return err
	}
	s.logger.Info("Batch created successfully", zap.Int("batchSize", len(urlMaps)))
	return nil
}

// FindByShort retrieves the mapping for a given short ID.
func (s *SQLStorage) FindByShort(ctx context.Context, short string) (types.URLMap, error) {
	var urlMap types.URLMap
	err := s.db.WithContext(ctx).Where("short = ?", short).First(&urlMap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.URLMap{}, ErrShortURLNotFound
	}
	if err != nil {
		return types.URLMap{}, err
	}
	return urlMap, nil
}

// ExistsByShort reports whether the short ID is stored.
func (s *SQLStorage) ExistsByShort(ctx context.Context, short string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&types.URLMap{}).Where("short = ?", short).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Close releases the underlying connection pool.
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStorage) translate(err error, short string) error {
	if isDuplicateKey(err) {
		s.logger.Warn("Attempt to create duplicate short ID", zap.String("short", short))
		return ErrShortURLExists
	}
	return err
}

// isDuplicateKey recognises unique violations from every supported dialect,
// whether or not gorm translated them.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// newGormLogger routes gorm's output through zap at a level derived from the
// application log level.
func newGormLogger(logger *zap.Logger, level string) gormlogger.Interface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func toGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}
