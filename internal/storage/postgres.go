package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"carport-configurator/internal/catalog"
	"carport-configurator/internal/config"
	"carport-configurator/internal/configuration"
)

type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// ConfigurationRow is one persisted configuration as read back for the admin
// surface. Variant-specific columns are nullable because only one product
// line's set is populated per row.
type ConfigurationRow struct {
	ID                int64          `db:"id"`
	WidthCM           float64        `db:"width_cm"`
	DepthCM           float64        `db:"depth_cm"`
	HeightCM          float64        `db:"height_cm"`
	ModelID           string         `db:"model_id"`
	CoverageID        string         `db:"coverage_id"`
	SurfaceID         sql.NullString `db:"surface_id"`
	CustomerName      string         `db:"customer_name"`
	CustomerEmail     string         `db:"customer_email"`
	CustomerPhone     string         `db:"customer_phone"`
	CustomerAddress   string         `db:"customer_address"`
	CustomerCity      string         `db:"customer_city"`
	ContactPreference string         `db:"contact_preference"`
	TotalPrice        float64        `db:"total_price"`
	Status            string         `db:"status"`
	Notes             sql.NullString `db:"notes"`
	CreatedAt         time.Time      `db:"created_at"`

	// Steel columns.
	StructureType    sql.NullString `db:"structure_type"`
	StructureColorID sql.NullString `db:"structure_color_id"`
	CustomerZip      sql.NullString `db:"customer_zip"`
	CustomerProvince sql.NullString `db:"customer_province"`
	PackageType      sql.NullString `db:"package_type"`

	// Wood columns.
	StructureTypeID    sql.NullString `db:"structure_type_id"`
	ColorID            sql.NullString `db:"color_id"`
	CustomerPostalCode sql.NullString `db:"customer_postal_code"`
	PackageID          sql.NullString `db:"package_id"`
}

type AdminUser struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

func NewPostgresStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		logger: logger,
	}, nil
}

// NewPostgresStorageFromDB wraps an existing connection. Used by tests.
func NewPostgresStorageFromDB(db *sql.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:     sqlx.NewDb(db, "postgres"),
		logger: logger,
	}
}

// ListCatalog returns the active entities of one catalog table, ordered by
// display order with name as tiebreaker. Tables without an active column are
// read unfiltered rather than erroring.
func (s *PostgresStorage) ListCatalog(ctx context.Context, line catalog.ProductLine, kind catalog.Kind) ([]catalog.Entity, error) {
	const operation = "storage.ListCatalog"

	table := catalogTable(line, kind)
	query := fmt.Sprintf(`
        SELECT id::text, name, COALESCE(description, '') AS description,
               COALESCE(image_url, '') AS image_url, price_modifier, active, display_order
        FROM %s
        WHERE active = TRUE
        ORDER BY display_order, name
    `, table)

	var entities []catalog.Entity
	err := s.db.SelectContext(ctx, &entities, query)
	if err != nil && isUndefinedColumn(err) {
		s.logger.Warn("Catalog table has no active column, reading unfiltered",
			zap.String("table", table))

		query = fmt.Sprintf(`
            SELECT id::text, name, COALESCE(description, '') AS description,
                   COALESCE(image_url, '') AS image_url, price_modifier, TRUE AS active, display_order
            FROM %s
            ORDER BY display_order, name
        `, table)
		err = s.db.SelectContext(ctx, &entities, query)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", operation, table, err)
	}

	return entities, nil
}

// GetCatalogEntity reads a single catalog row by id, active or not. Used to
// resolve display names and price modifiers at submission time.
func (s *PostgresStorage) GetCatalogEntity(ctx context.Context, line catalog.ProductLine, kind catalog.Kind, id string) (*catalog.Entity, error) {
	const operation = "storage.GetCatalogEntity"

	table := catalogTable(line, kind)
	query := fmt.Sprintf(`
        SELECT id::text, name, COALESCE(description, '') AS description,
               COALESCE(image_url, '') AS image_url, price_modifier, active, display_order
        FROM %s
        WHERE id = $1
    `, table)

	var entity catalog.Entity
	err := s.db.GetContext(ctx, &entity, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %s: %w", operation, table, err)
	}

	return &entity, nil
}

// FindColorByName resolves a free-text color name by case-insensitive
// partial match against the product line's color table. Returns
// catalog.ErrNotFound when nothing matches.
func (s *PostgresStorage) FindColorByName(ctx context.Context, line catalog.ProductLine, name string) (*catalog.Entity, error) {
	const operation = "storage.FindColorByName"

	table := catalogTable(line, catalog.KindColor)
	query := fmt.Sprintf(`
        SELECT id::text, name, COALESCE(description, '') AS description,
               COALESCE(image_url, '') AS image_url, price_modifier, active, display_order
        FROM %s
        WHERE name ILIKE '%%' || $1 || '%%'
        ORDER BY display_order, name
        LIMIT 1
    `, table)

	var entity catalog.Entity
	err := s.db.GetContext(ctx, &entity, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %s: %w", operation, table, err)
	}

	return &entity, nil
}

// InsertSteelConfiguration writes one steel variant row and returns the
// generated id. structureColorID is the pipeline's resolved reference; nil
// persists a NULL color.
func (s *PostgresStorage) InsertSteelConfiguration(ctx context.Context, rec *configuration.Record, structureColorID *string) (int64, error) {
	const operation = "storage.InsertSteelConfiguration"

	query := fmt.Sprintf(`
        INSERT INTO %s (
            structure_type, model_id, coverage_id, structure_color_id, surface_id,
            width_cm, depth_cm, height_cm,
            customer_name, customer_email, customer_phone, customer_address,
            customer_city, customer_zip, customer_province, contact_preference,
            package_type, total_price, status, notes, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
        RETURNING id
    `, configurationTable(catalog.LineSteel))

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		rec.Steel.StructureType,
		rec.Steel.ModelID,
		rec.Steel.CoverageID,
		structureColorID,
		nullIfEmpty(rec.Steel.SurfaceID),
		rec.Dimensions.WidthCM,
		rec.Dimensions.DepthCM,
		rec.Dimensions.HeightCM,
		rec.Customer.Name,
		rec.Customer.Email,
		rec.Customer.Phone,
		rec.Customer.Address,
		rec.Customer.City,
		rec.Customer.PostalCode,
		nullIfEmpty(rec.Customer.Province),
		rec.Customer.ContactPreference,
		nullIfEmpty(rec.Steel.PackageType),
		rec.TotalPrice,
		rec.Status,
		nullIfEmpty(rec.Notes),
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("%s: %w", operation, err)
	}

	return id, nil
}

// InsertWoodConfiguration writes one wood variant row and returns the
// generated id.
func (s *PostgresStorage) InsertWoodConfiguration(ctx context.Context, rec *configuration.Record) (int64, error) {
	const operation = "storage.InsertWoodConfiguration"

	query := fmt.Sprintf(`
        INSERT INTO %s (
            structure_type_id, model_id, coverage_id, color_id, surface_id,
            width_cm, depth_cm, height_cm,
            customer_name, customer_email, customer_phone, customer_address,
            customer_city, customer_postal_code, contact_preference,
            package_id, total_price, status, notes, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
        RETURNING id
    `, configurationTable(catalog.LineWood))

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		rec.Wood.StructureTypeID,
		rec.Wood.ModelID,
		rec.Wood.CoverageID,
		rec.Wood.ColorID,
		rec.Wood.SurfaceID,
		rec.Dimensions.WidthCM,
		rec.Dimensions.DepthCM,
		rec.Dimensions.HeightCM,
		rec.Customer.Name,
		rec.Customer.Email,
		rec.Customer.Phone,
		rec.Customer.Address,
		rec.Customer.City,
		rec.Customer.PostalCode,
		rec.Customer.ContactPreference,
		nullIfEmpty(rec.Wood.PackageID),
		rec.TotalPrice,
		rec.Status,
		nullIfEmpty(rec.Notes),
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("%s: %w", operation, err)
	}

	return id, nil
}

const steelColumns = `
    id, width_cm, depth_cm, height_cm, model_id::text AS model_id,
    coverage_id::text AS coverage_id, surface_id::text AS surface_id,
    customer_name, customer_email, customer_phone, customer_address,
    customer_city, contact_preference, total_price, status, notes, created_at,
    structure_type, structure_color_id::text AS structure_color_id,
    customer_zip, customer_province, package_type
`

const woodColumns = `
    id, width_cm, depth_cm, height_cm, model_id::text AS model_id,
    coverage_id::text AS coverage_id, surface_id::text AS surface_id,
    customer_name, customer_email, customer_phone, customer_address,
    customer_city, contact_preference, total_price, status, notes, created_at,
    structure_type_id::text AS structure_type_id, color_id::text AS color_id,
    customer_postal_code, package_id::text AS package_id
`

// ListConfigurations returns a product line's submitted configurations,
// newest first. Backing the admin list screen.
func (s *PostgresStorage) ListConfigurations(ctx context.Context, line catalog.ProductLine) ([]ConfigurationRow, error) {
	const operation = "storage.ListConfigurations"

	columns := steelColumns
	if line == catalog.LineWood {
		columns = woodColumns
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`,
		columns, configurationTable(line))

	var rows []ConfigurationRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return rows, nil
}

// UpdateConfigurationStatus moves one record's lifecycle tag. Admin-only.
func (s *PostgresStorage) UpdateConfigurationStatus(ctx context.Context, line catalog.ProductLine, id int64, status string) error {
	const operation = "storage.UpdateConfigurationStatus"

	query := fmt.Sprintf(`UPDATE %s SET status = $1 WHERE id = $2`, configurationTable(line))

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: configuration %d not found", operation, id)
	}

	return nil
}

// GetAdminByUsername reads one admin account for the login check.
func (s *PostgresStorage) GetAdminByUsername(ctx context.Context, username string) (*AdminUser, error) {
	const operation = "storage.GetAdminByUsername"

	const query = `SELECT id, username, password_hash FROM admin_users WHERE username = $1`

	var admin AdminUser
	err := s.db.GetContext(ctx, &admin, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin not found")
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return &admin, nil
}

// DB exposes the raw connection for the migrator.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func isUndefinedColumn(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42703"
}
