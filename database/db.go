package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"flightdeck/config"
	"flightdeck/models"
)

// ─── Models ──────────────────────────────────────────────────────────────────

// Search is one successful flight search as kept in the history table.
type Search struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departureDate"`
	ReturnDate    string    `json:"returnDate,omitempty"`
	Passengers    int       `json:"passengers"`
	CabinClass    string    `json:"cabinClass"`
	ResultCount   int       `json:"resultCount"`
	Airlines      []string  `json:"airlines"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewSearch builds a history row for a search that returned flights.
func NewSearch(sessionID string, p models.SearchParams, flights []models.Flight) Search {
	seen := map[string]bool{}
	airlines := []string{}
	for _, f := range flights {
		if code := f.Airline.Code; code != "" && !seen[code] {
			seen[code] = true
			airlines = append(airlines, code)
		}
	}
	return Search{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		Origin:        p.Origin,
		Destination:   p.Destination,
		DepartureDate: p.DepartureDate,
		ReturnDate:    p.ReturnDate,
		Passengers:    p.Passengers,
		CabinClass:    string(p.CabinClass),
		ResultCount:   len(flights),
		Airlines:      airlines,
	}
}

// ─── Init ─────────────────────────────────────────────────────────────────────

type DB struct {
	sql *sql.DB
}

// Open connects to Postgres and runs migrations. It retries while the
// database comes up and reports failure instead of exiting.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	conn, err := sql.Open("postgres", BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < 10; i++ {
		if err = conn.PingContext(ctx); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		select {
		case <-ctx.Done():
			conn.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	db := &DB{sql: conn}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	log.Println("✅ Database connected and migrated")
	return db, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.sql.Close()
}

// BuildDSN prefers DATABASE_URL and falls back to the individual DB_* settings.
func BuildDSN(cfg *config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	host := cfg.DBHost
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func (db *DB) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS search_history (
			id             TEXT PRIMARY KEY,
			session_id     TEXT NOT NULL,
			origin         TEXT NOT NULL,
			destination    TEXT NOT NULL,
			departure_date TEXT NOT NULL,
			return_date    TEXT NOT NULL DEFAULT '',
			passengers     INTEGER DEFAULT 1,
			cabin_class    TEXT NOT NULL,
			result_count   INTEGER NOT NULL,
			airlines       TEXT[] NOT NULL DEFAULT '{}',
			created_at     TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_search_history_created_at
			ON search_history(created_at DESC)`,
	}

	for _, m := range migrations {
		if _, err := db.sql.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// ─── Search History ───────────────────────────────────────────────────────────

func (db *DB) SaveSearch(ctx context.Context, s Search) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO search_history
			(id, session_id, origin, destination, departure_date, return_date, passengers, cabin_class, result_count, airlines)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.SessionID, s.Origin, s.Destination, s.DepartureDate, s.ReturnDate,
		s.Passengers, s.CabinClass, s.ResultCount, pq.Array(s.Airlines),
	)
	if err != nil {
		return fmt.Errorf("save search: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit searches, newest first.
func (db *DB) RecentSearches(ctx context.Context, limit int) ([]Search, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, session_id, origin, destination, departure_date, return_date,
		        passengers, cabin_class, result_count, airlines, created_at
		 FROM search_history
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	defer rows.Close()

	searches := []Search{}
	for rows.Next() {
		var s Search
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Origin, &s.Destination, &s.DepartureDate, &s.ReturnDate,
			&s.Passengers, &s.CabinClass, &s.ResultCount, pq.Array(&s.Airlines), &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}
