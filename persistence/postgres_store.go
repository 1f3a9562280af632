package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"catamaze/server/models"
)

// PostgresStore handles database operations using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage manager
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		game_id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		world_state BYTEA NOT NULL,
		game_over BOOLEAN NOT NULL DEFAULT FALSE,
		winner_id TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS logs (
		id BIGSERIAL PRIMARY KEY,
		game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
		tick INTEGER NOT NULL,
		entity_id TEXT,
		event_type TEXT NOT NULL,
		message TEXT NOT NULL,
		extra_data JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_logs_game_tick ON logs (game_id, tick, id);
	CREATE INDEX IF NOT EXISTS idx_games_active ON games (game_over);
	`

	_, err := ps.db.Exec(schema)
	return err
}

// SaveGame inserts or replaces a game's state
func (ps *PostgresStore) SaveGame(snap *models.WorldSnapshot) error {
	state, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO games (game_id, tick, world_state, game_over, winner_id)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (game_id)
	DO UPDATE SET
		tick = $2, world_state = $3, game_over = $4, winner_id = $5,
		updated_at = NOW()
	`

	_, err = ps.db.Exec(query, snap.GameID, snap.Tick, state, snap.GameOver, nullString(snap.WinnerID))
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", snap.GameID, err)
	}
	return nil
}

// LoadGame loads a game's state by ID
func (ps *PostgresStore) LoadGame(gameID string) (*models.WorldSnapshot, error) {
	var state []byte
	err := ps.db.QueryRow(`SELECT world_state FROM games WHERE game_id = $1`, gameID).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	return DecodeSnapshot(state)
}

// DeleteGame removes a game; its logs go with it
func (ps *PostgresStore) DeleteGame(gameID string) error {
	res, err := ps.db.Exec(`DELETE FROM games WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return nil
}

// ListGames returns every stored game, most recently updated first
func (ps *PostgresStore) ListGames() ([]GameSummary, error) {
	rows, err := ps.db.Query(`SELECT game_id, tick, game_over, winner_id, updated_at FROM games ORDER BY updated_at DESC, game_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var out []GameSummary
	for rows.Next() {
		var g GameSummary
		var winner sql.NullString
		if err := rows.Scan(&g.GameID, &g.Tick, &g.GameOver, &winner, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		g.WinnerID = winner.String
		out = append(out, g)
	}
	return out, rows.Err()
}

// CountActiveGames counts games that are not over
func (ps *PostgresStore) CountActiveGames() (int, error) {
	var n int
	if err := ps.db.QueryRow(`SELECT COUNT(*) FROM games WHERE NOT game_over`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count active games: %w", err)
	}
	return n, nil
}

// AppendLogs stores entries in a single transaction using COPY
func (ps *PostgresStore) AppendLogs(entries []LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin log transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyIn("logs", "game_id", "tick", "entity_id", "event_type", "message", "extra_data"))
	if err != nil {
		return fmt.Errorf("failed to prepare log copy: %w", err)
	}

	for _, e := range entries {
		var extra any
		if len(e.ExtraData) > 0 {
			data, err := json.Marshal(e.ExtraData)
			if err != nil {
				stmt.Close()
				return fmt.Errorf("failed to marshal log extra data: %w", err)
			}
			extra = string(data)
		}
		if _, err := stmt.Exec(e.GameID, e.Tick, nullString(e.EntityID), e.EventType, e.Message, extra); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy log entry: %w", err)
		}
	}
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush log copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close log copy: %w", err)
	}
	return tx.Commit()
}

// ReadLogs returns a game's log entries ordered by tick then id
func (ps *PostgresStore) ReadLogs(gameID string, filter LogFilter) ([]LogEntry, error) {
	where, args := logWhere(gameID, filter)
	args = append(args, filter.limit(), filter.offset())
	query := fmt.Sprintf(`
	SELECT id, game_id, tick, entity_id, event_type, message, extra_data, created_at
	FROM logs %s
	ORDER BY tick, id
	LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := ps.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}
	defer rows.Close()

	out := []LogEntry{}
	for rows.Next() {
		var e LogEntry
		var entity sql.NullString
		var extra []byte
		if err := rows.Scan(&e.ID, &e.GameID, &e.Tick, &entity, &e.EventType, &e.Message, &extra, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		e.EntityID = entity.String
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &e.ExtraData); err != nil {
				return nil, fmt.Errorf("failed to unmarshal log extra data: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountLogs counts a game's log entries matching filter, ignoring paging
func (ps *PostgresStore) CountLogs(gameID string, filter LogFilter) (int, error) {
	where, args := logWhere(gameID, filter)
	var n int
	if err := ps.db.QueryRow(`SELECT COUNT(*) FROM logs `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}
	return n, nil
}

func logWhere(gameID string, filter LogFilter) (string, []any) {
	where := "WHERE game_id = $1"
	args := []any{gameID}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		where += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		where += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	return where, args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	log.Println("Closing database connection...")
	return ps.db.Close()
}
