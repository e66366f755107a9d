package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/veto-bracket-backend/internal/bracket"
	"github.com/DoyleJ11/veto-bracket-backend/internal/tournament"
)

// MatchRecord is one bracket match row, keyed by tournament and match id.
type MatchRecord struct {
	TournamentID string    `gorm:"primaryKey;type:varchar(64)"`
	MatchID      int64     `gorm:"primaryKey;autoIncrement:false"`
	Round        int       `gorm:"not null"`
	GroupID      *int64    `gorm:"index"`
	Custom       bool      `gorm:"not null;default:false"`
	TeamAID      *int64    `gorm:"column:team_a_id"`
	TeamAPrereq  *int64    `gorm:"column:team_a_prereq"`
	TeamBID      *int64    `gorm:"column:team_b_id"`
	TeamBPrereq  *int64    `gorm:"column:team_b_prereq"`
	WinnerID     *int64
	Scores       []string  `gorm:"serializer:json;type:jsonb"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (MatchRecord) TableName() string { return "bracket_matches" }

var upsertColumns = []string{
	"round", "group_id", "custom",
	"team_a_id", "team_a_prereq", "team_b_id", "team_b_prereq",
	"winner_id", "scores", "updated_at",
}

// Store is the Postgres tournament.Repository.
type Store struct {
	db *gorm.DB
}

var _ tournament.Repository = (*Store)(nil)

// Open connects to Postgres and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&MatchRecord{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) LoadMatches(ctx context.Context, tournamentID string) ([]bracket.Match, error) {
	var records []MatchRecord
	err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("round, match_id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	if len(records) == 0 {
		return nil, tournament.ErrTournamentNotFound
	}

	matches := make([]bracket.Match, 0, len(records))
	for _, r := range records {
		matches = append(matches, r.toMatch())
	}
	return matches, nil
}

func (s *Store) SaveMatches(ctx context.Context, tournamentID string, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	records := toRecords(tournamentID, matches)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tournament_id"}, {Name: "match_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("save matches: %w", err)
	}
	return nil
}

func (s *Store) ReplaceMatches(ctx context.Context, tournamentID string, matches []bracket.Match) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", tournamentID).Delete(&MatchRecord{}).Error; err != nil {
			return fmt.Errorf("clear matches: %w", err)
		}
		if len(matches) == 0 {
			return nil
		}
		records := toRecords(tournamentID, matches)
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("insert matches: %w", err)
		}
		return nil
	})
}

func toRecords(tournamentID string, matches []bracket.Match) []MatchRecord {
	records := make([]MatchRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, MatchRecord{
			TournamentID: tournamentID,
			MatchID:      m.ID,
			Round:        m.Round,
			GroupID:      m.GroupID,
			Custom:       m.Custom,
			TeamAID:      m.TeamA.ID,
			TeamAPrereq:  m.TeamA.PrereqMatchID,
			TeamBID:      m.TeamB.ID,
			TeamBPrereq:  m.TeamB.PrereqMatchID,
			WinnerID:     m.WinnerID,
			Scores:       m.Scores,
		})
	}
	return records
}

func (r MatchRecord) toMatch() bracket.Match {
	return bracket.Match{
		ID:       r.MatchID,
		Round:    r.Round,
		GroupID:  r.GroupID,
		Custom:   r.Custom,
		TeamA:    bracket.Slot{ID: r.TeamAID, PrereqMatchID: r.TeamAPrereq},
		TeamB:    bracket.Slot{ID: r.TeamBID, PrereqMatchID: r.TeamBPrereq},
		WinnerID: r.WinnerID,
		Scores:   r.Scores,
	}
}
