package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// LookupDB provides SQLite-based storage for lookup results.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all queries rather
// than separate files per query. This simplifies history queries and
// backup/restore operations.
type LookupDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures LookupDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a LookupDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*LookupDB, error) {
	dbPath := filepath.Join(dbDir, "mailzilla.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ldb := &LookupDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Close closes the database connection.
func (ldb *LookupDB) Close() error {
	return ldb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (ldb *LookupDB) createTables() error {
	schema := `
	-- Lookup results store complete correlation outcomes as JSON
	CREATE TABLE IF NOT EXISTS lookups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		kind TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		confidence REAL DEFAULT 0.0,
		overall_risk REAL DEFAULT 0.0,
		partial INTEGER DEFAULT 0,
		identity_json TEXT NOT NULL,
		risk_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_lookups_query ON lookups(query);
	CREATE INDEX IF NOT EXISTS idx_lookups_timestamp ON lookups(timestamp);

	-- Observations track individual profile matches for relationship queries
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		source_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		profile_url TEXT,
		username TEXT,
		confidence REAL DEFAULT 0.0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_obs_query ON observations(query);
	CREATE INDEX IF NOT EXISTS idx_obs_platform ON observations(platform);
	CREATE INDEX IF NOT EXISTS idx_obs_username ON observations(username);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveLookup saves a lookup result: the correlated identity, its risk
// assessment, and one observation row per evidence entry.
func (ldb *LookupDB) SaveLookup(ctx context.Context, identity *model.CorrelatedIdentity, risk *model.RiskAssessment) error {
	identityJSON, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to serialize identity: %w", err)
	}
	riskJSON, err := json.Marshal(risk)
	if err != nil {
		return fmt.Errorf("failed to serialize risk assessment: %w", err)
	}

	// Create risk summary for cheap history listings
	riskSummary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
	}
	for _, indicator := range risk.Indicators {
		switch indicator.Severity {
		case model.SeverityCritical:
			riskSummary["critical"]++
		case model.SeverityHigh:
			riskSummary["high"]++
		case model.SeverityMedium:
			riskSummary["medium"]++
		case model.SeverityLow:
			riskSummary["low"]++
		}
	}
	summaryJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	partial := 0
	if identity.Partial {
		partial = 1
	}

	query := `
	INSERT INTO lookups (query, kind, confidence, overall_risk, partial, identity_json, risk_json, risk_summary)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if _, err = ldb.db.ExecContext(ctx, query,
		identity.Query.Value,
		identity.Query.Kind.String(),
		identity.Confidence,
		risk.OverallRisk,
		partial,
		string(identityJSON),
		string(riskJSON),
		string(summaryJSON),
	); err != nil {
		return fmt.Errorf("failed to save lookup: %w", err)
	}

	for _, obs := range identity.Evidence {
		if err := ldb.insertObservation(ctx, identity.Query.Value, obs); err != nil {
			return err
		}
	}
	return nil
}

// insertObservation inserts one observation row for relationship queries.
func (ldb *LookupDB) insertObservation(ctx context.Context, queryValue string, obs model.Observation) error {
	query := `
	INSERT INTO observations (query, source_id, platform, profile_url, username, confidence)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := ldb.db.ExecContext(ctx, query,
		queryValue,
		obs.SourceID,
		obs.Platform,
		obs.ProfileURL,
		obs.Username,
		obs.Confidence,
	)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}
	return nil
}

// StoredLookup pairs a stored identity with its risk assessment.
type StoredLookup struct {
	Identity model.CorrelatedIdentity
	Risk     model.RiskAssessment
}

// GetLatestLookup retrieves the most recent lookup result for a query value.
// Returns nil when the query was never looked up.
func (ldb *LookupDB) GetLatestLookup(ctx context.Context, queryValue string) (*StoredLookup, error) {
	query := `
	SELECT identity_json, risk_json FROM lookups
	WHERE query = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var identityJSON, riskJSON string
	err := ldb.db.QueryRowContext(ctx, query, queryValue).Scan(&identityJSON, &riskJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lookup: %w", err)
	}

	return decodeStoredLookup(identityJSON, riskJSON)
}

// decodeStoredLookup parses the stored JSON columns back into model types.
func decodeStoredLookup(identityJSON, riskJSON string) (*StoredLookup, error) {
	var stored StoredLookup
	if err := json.Unmarshal([]byte(identityJSON), &stored.Identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}
	if err := json.Unmarshal([]byte(riskJSON), &stored.Risk); err != nil {
		return nil, fmt.Errorf("failed to parse risk assessment: %w", err)
	}
	return &stored, nil
}

// HasRecentLookup checks if a query was resolved within the specified duration.
// Callers use this to skip re-dispatching fresh queries.
func (ldb *LookupDB) HasRecentLookup(ctx context.Context, queryValue string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM lookups
	WHERE query = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	if err := ldb.db.QueryRowContext(ctx, query, queryValue, modifier).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check recent lookup: %w", err)
	}

	return count > 0, nil
}

// ListQueries returns every distinct query value ever looked up.
func (ldb *LookupDB) ListQueries(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT query FROM lookups
	ORDER BY query
	`

	rows, err := ldb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan query: %w", err)
		}
		queries = append(queries, value)
	}

	return queries, rows.Err()
}

// GetLookupHistory retrieves all stored results for a query value, newest first.
func (ldb *LookupDB) GetLookupHistory(ctx context.Context, queryValue string) ([]*StoredLookup, error) {
	query := `
	SELECT identity_json, risk_json FROM lookups
	WHERE query = ?
	ORDER BY timestamp DESC
	`

	rows, err := ldb.db.QueryContext(ctx, query, queryValue)
	if err != nil {
		return nil, fmt.Errorf("failed to get lookup history: %w", err)
	}
	defer rows.Close()

	var results []*StoredLookup
	for rows.Next() {
		var identityJSON, riskJSON string
		if err := rows.Scan(&identityJSON, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}

		stored, err := decodeStoredLookup(identityJSON, riskJSON)
		if err != nil {
			continue // Skip malformed rows
		}
		results = append(results, stored)
	}

	return results, rows.Err()
}

// LookupMetadata contains summary information about a stored lookup.
// This is used for displaying history without loading the full result.
type LookupMetadata struct {
	// ID is the unique identifier of the lookup in the database.
	ID int64

	// Query is the looked-up identifier value.
	Query string

	// Kind is the query kind (email or phone).
	Kind string

	// Timestamp is when the lookup completed.
	Timestamp time.Time

	// Confidence is the stored identity confidence.
	Confidence float64

	// OverallRisk is the stored deception risk score.
	OverallRisk float64

	// Partial reports whether the lookup was cut short by its deadline.
	Partial bool

	// RiskSummary contains counts of indicators by severity level.
	RiskSummary map[string]int
}

// GetLookupHistoryWithMetadata retrieves lookup metadata for a query value.
// This is more efficient than GetLookupHistory when only metadata is needed.
func (ldb *LookupDB) GetLookupHistoryWithMetadata(ctx context.Context, queryValue string) ([]LookupMetadata, error) {
	query := `
	SELECT id, query, kind, timestamp, confidence, overall_risk, partial, risk_summary
	FROM lookups
	WHERE query = ?
	ORDER BY timestamp DESC
	`

	rows, err := ldb.db.QueryContext(ctx, query, queryValue)
	if err != nil {
		return nil, fmt.Errorf("failed to get lookup history: %w", err)
	}
	defer rows.Close()

	var results []LookupMetadata
	for rows.Next() {
		var meta LookupMetadata
		var timestamp string
		var partial int
		var riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Query, &meta.Kind, &timestamp,
			&meta.Confidence, &meta.OverallRisk, &partial, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.Partial = partial != 0

		// Parse risk summary
		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		} else {
			meta.RiskSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetLookupByID retrieves a stored lookup by its database ID.
func (ldb *LookupDB) GetLookupByID(ctx context.Context, id int64) (*StoredLookup, error) {
	query := `
	SELECT identity_json, risk_json FROM lookups
	WHERE id = ?
	`

	var identityJSON, riskJSON string
	err := ldb.db.QueryRowContext(ctx, query, id).Scan(&identityJSON, &riskJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lookup: %w", err)
	}

	return decodeStoredLookup(identityJSON, riskJSON)
}

// ObservationRecord represents a stored profile match.
type ObservationRecord struct {
	ID         int64
	Query      string
	SourceID   string
	Platform   string
	ProfileURL string
	Username   string
	Confidence float64
	Timestamp  time.Time
}

// QueryObservationsByUsername finds every stored observation carrying the
// given username, across all queries. This answers "which identifiers
// share this handle" relationship questions.
func (ldb *LookupDB) QueryObservationsByUsername(ctx context.Context, username string) ([]ObservationRecord, error) {
	query := `
	SELECT id, query, source_id, platform, profile_url, username, confidence, timestamp
	FROM observations
	WHERE username = ?
	ORDER BY timestamp DESC
	`

	rows, err := ldb.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var results []ObservationRecord
	for rows.Next() {
		var record ObservationRecord
		var timestamp string

		if err := rows.Scan(&record.ID, &record.Query, &record.SourceID, &record.Platform,
			&record.ProfileURL, &record.Username, &record.Confidence, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}

		record.Timestamp = parseTimestamp(timestamp)
		results = append(results, record)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
