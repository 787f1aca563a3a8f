package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is the persisted form of a session
type Record struct {
	SID       string    `gorm:"column:sid;primaryKey;type:varchar(26)"`
	Token     string    `gorm:"type:text"`
	UserJSON  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName sets the table name for session records
func (Record) TableName() string {
	return "sessions"
}

// LogoutNotifier tells the backend that a bearer token is being
// discarded. Declared as an interface so tests can observe the call
// without a real backend.
type LogoutNotifier interface {
	Logout(ctx context.Context, token string) error
}

// Store owns the session table. Construct isolated instances in tests;
// the running server holds exactly one.
type Store struct {
	db       *gorm.DB
	notifier LogoutNotifier
	logger   zerolog.Logger
}

// NewStore creates a session store backed by db
func NewStore(db *gorm.DB, notifier LogoutNotifier, logger zerolog.Logger) (*Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sessions table: %w", err)
	}
	return &Store{db: db, notifier: notifier, logger: logger}, nil
}

// New mints an unauthenticated session with a fresh ULID. Nothing is
// persisted until the first SetToken or SetUser.
func (s *Store) New() *Session {
	return &Session{SID: ulid.Make().String(), Initialized: true}
}

// Rehydrate loads the persisted session for sid. A missing row, an
// unreadable user payload, or a database error all degrade to a
// logged-out session; the load still counts as completed, so the returned
// session always has Initialized set.
func (s *Store) Rehydrate(ctx context.Context, sid string) *Session {
	sess := &Session{SID: sid, Initialized: true}

	var rec Record
	if err := s.db.WithContext(ctx).Where("sid = ?", sid).First(&rec).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("sid", sid).Msg("Failed to load session, treating as logged out")
		}
		return sess
	}

	sess.Token = rec.Token
	if rec.UserJSON != "" {
		if err := json.Unmarshal([]byte(rec.UserJSON), &sess.User); err != nil {
			s.logger.Warn().Err(err).Str("sid", sid).Msg("Discarding unreadable cached user")
			sess.User = User{}
		}
	}
	return sess
}

// SetToken stores the bearer token. The token is opaque; no shape
// validation happens here.
func (s *Store) SetToken(ctx context.Context, sess *Session, token string) error {
	sess.Token = token
	sess.Initialized = true
	return s.persist(ctx, sess)
}

// SetUser replaces the cached user wholesale, not as a merge. Callers
// supply data as complete as they have it.
func (s *Store) SetUser(ctx context.Context, sess *Session, user User) error {
	sess.User = user
	return s.persist(ctx, sess)
}

// ClearAuth ends the session. The backend logout call is best effort: the
// local reset and row deletion run regardless of its outcome. Cookie
// erasure and navigation are the HTTP layer's half of logout and run
// unconditionally after this returns.
func (s *Store) ClearAuth(ctx context.Context, sess *Session) {
	token := sess.Token

	defer func() {
		sess.Token = ""
		sess.User = User{}
		sess.Initialized = true
		if sess.SID == "" {
			return
		}
		if err := s.db.WithContext(ctx).Delete(&Record{}, "sid = ?", sess.SID).Error; err != nil {
			s.logger.Error().Err(err).Str("sid", sess.SID).Msg("Failed to delete session record")
		}
	}()

	if token == "" || s.notifier == nil {
		return
	}
	if err := s.notifier.Logout(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("Backend logout failed, clearing session anyway")
	}
}

func (s *Store) persist(ctx context.Context, sess *Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	rec := Record{SID: sess.SID, Token: sess.Token, UserJSON: string(userJSON)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sid"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "user_json", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		s.logger.Error().Err(err).Str("sid", sess.SID).Msg("Failed to persist session")
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
