package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mathrelay/client/internal/engine"
)

// record is one persisted terminal snapshot, keyed by match id. The state
// tree is stored as JSON so its shape matches the live MatchState exactly.
type record struct {
	MatchID string `gorm:"primaryKey;column:match_id"`
	Payload []byte `gorm:"column:payload"`
	SavedAt time.Time
}

func (record) TableName() string { return "match_snapshots" }

// Store is the durable per-client snapshot store. Writes are best-effort:
// a failure is reported to the caller for logging but never escalated.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the snapshot database at path. ":memory:"
// gives an ephemeral store for tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the terminal snapshot for a match.
func (st *Store) Save(matchID string, state *engine.MatchState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rec := record{MatchID: matchID, Payload: payload, SavedAt: time.Now()}
	err = st.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot for a match, or (nil, nil) when none
// exists.
func (st *Store) Load(matchID string) (*engine.MatchState, error) {
	var rec record
	err := st.db.First(&rec, "match_id = ?", matchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var state engine.MatchState
	if err := json.Unmarshal(rec.Payload, &state); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &state, nil
}

// Clear removes the snapshot for a match. Called only on the explicit
// return-to-menu action, never on a timer.
func (st *Store) Clear(matchID string) error {
	if err := st.db.Delete(&record{}, "match_id = ?", matchID).Error; err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
