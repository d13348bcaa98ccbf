package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const statusRowID = 1

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError wraps persistence failures with a dotted operation code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew   = "voting.service.new"
	opListPhotos   = "voting.list_photos"
	opAddPhoto     = "voting.add_photo"
	opCastVote     = "voting.cast_vote"
	opGetStatus    = "voting.get_status"
	opUpdateStatus = "voting.update_status"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// IDProvider issues identifiers for photos and vote rows.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig wires the voting service dependencies.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service owns photos, votes and the voting status flags.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

// NewService validates configuration and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// ListPhotos returns all photos ordered by vote count descending, with
// HasVoted computed against the caller's IP. Tie order is whatever the
// store returns.
func (s *Service) ListPhotos(ctx context.Context, voterIP string) ([]PhotoView, error) {
	if s.db == nil {
		return nil, newServiceError(opListPhotos, "missing_database", errMissingDatabase)
	}

	var photos []Photo
	if err := s.db.WithContext(ctx).
		Order("vote_count DESC").
		Find(&photos).Error; err != nil {
		s.logError(opListPhotos, "query_failed", err)
		return nil, newServiceError(opListPhotos, "query_failed", err)
	}

	voted := map[string]bool{}
	if voterIP != "" {
		var votes []Vote
		if err := s.db.WithContext(ctx).
			Where("voter_ip = ?", voterIP).
			Find(&votes).Error; err != nil {
			s.logError(opListPhotos, "votes_query_failed", err, zap.String("voter_ip", voterIP))
			return nil, newServiceError(opListPhotos, "votes_query_failed", err)
		}
		for _, vote := range votes {
			voted[vote.PhotoID] = true
		}
	}

	views := make([]PhotoView, 0, len(photos))
	for _, photo := range photos {
		views = append(views, PhotoView{
			Photo:    photo,
			ImageURL: photo.FilePath,
			HasVoted: voted[photo.ID],
		})
	}
	return views, nil
}

// AddPhoto records an uploaded photo with a zero vote count.
func (s *Service) AddPhoto(ctx context.Context, input NewPhoto) (PhotoView, error) {
	if s.db == nil {
		return PhotoView{}, newServiceError(opAddPhoto, "missing_database", errMissingDatabase)
	}

	photoID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opAddPhoto, "id_generation_failed", err)
		return PhotoView{}, newServiceError(opAddPhoto, "id_generation_failed", err)
	}

	now := s.clock().UTC().Unix()
	photo := Photo{
		ID:               photoID,
		Filename:         input.Filename,
		OriginalFilename: input.OriginalFilename,
		FilePath:         input.FilePath,
		UploaderIP:       input.UploaderIP,
		VoteCount:        0,
		CreatedAtSeconds: now,
		UpdatedAtSeconds: now,
	}
	if err := s.db.WithContext(ctx).Create(&photo).Error; err != nil {
		s.logError(opAddPhoto, "insert_failed", err, zap.String("photo_id", photoID))
		return PhotoView{}, newServiceError(opAddPhoto, "insert_failed", err)
	}

	return PhotoView{Photo: photo, ImageURL: photo.FilePath}, nil
}

// CastVote records one ballot for a photo from the given IP. The vote row
// and the counter increment happen in a single transaction: either both
// land or neither does. A duplicate from the same IP surfaces as
// ErrAlreadyVoted with no state change; the gate flags are checked inside
// the same transaction.
func (s *Service) CastVote(ctx context.Context, photoID, voterIP string) (PhotoView, error) {
	if s.db == nil {
		return PhotoView{}, newServiceError(opCastVote, "missing_database", errMissingDatabase)
	}

	var updated Photo
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status, err := loadStatus(tx)
		if err != nil {
			return newServiceError(opCastVote, "status_load_failed", err)
		}
		if !status.Accepting() {
			return ErrVotingClosed
		}

		var photo Photo
		if err := tx.Where("id = ?", photoID).Take(&photo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPhotoNotFound
			}
			return newServiceError(opCastVote, "photo_select_failed", err)
		}

		voteID, err := s.idProvider.NewID()
		if err != nil {
			return newServiceError(opCastVote, "id_generation_failed", err)
		}

		// ON CONFLICT DO NOTHING against the (photo_id, voter_ip)
		// unique index; zero rows affected means this IP already voted.
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "photo_id"}, {Name: "voter_ip"}},
			DoNothing: true,
		}).Create(&Vote{ID: voteID, PhotoID: photoID, VoterIP: voterIP})
		if insert.Error != nil {
			return newServiceError(opCastVote, "vote_insert_failed", insert.Error)
		}
		if insert.RowsAffected == 0 {
			return ErrAlreadyVoted
		}

		now := s.clock().UTC().Unix()
		if err := tx.Model(&Photo{}).
			Where("id = ?", photoID).
			Updates(map[string]interface{}{
				"vote_count":   gorm.Expr("vote_count + 1"),
				"updated_at_s": now,
			}).Error; err != nil {
			return newServiceError(opCastVote, "count_update_failed", err)
		}

		return tx.Where("id = ?", photoID).Take(&updated).Error
	})
	if txErr != nil {
		if !errors.Is(txErr, ErrVotingClosed) && !errors.Is(txErr, ErrAlreadyVoted) && !errors.Is(txErr, ErrPhotoNotFound) {
			s.logError(opCastVote, "transaction_failed", txErr,
				zap.String("photo_id", photoID),
				zap.String("voter_ip", voterIP))
		}
		return PhotoView{}, txErr
	}

	return PhotoView{Photo: updated, ImageURL: updated.FilePath, HasVoted: true}, nil
}

// VotingStatus returns the current flag pair, creating the singleton row
// with both flags off on first read.
func (s *Service) VotingStatus(ctx context.Context) (Status, error) {
	if s.db == nil {
		return Status{}, newServiceError(opGetStatus, "missing_database", errMissingDatabase)
	}

	status, err := loadStatus(s.db.WithContext(ctx))
	if err != nil {
		s.logError(opGetStatus, "load_failed", err)
		return Status{}, newServiceError(opGetStatus, "load_failed", err)
	}
	return status, nil
}

// UpdateStatus applies a partial flag update; nil leaves a flag unchanged.
func (s *Service) UpdateStatus(ctx context.Context, enabled, stopped *bool) (Status, error) {
	if s.db == nil {
		return Status{}, newServiceError(opUpdateStatus, "missing_database", errMissingDatabase)
	}

	var status Status
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loaded, err := loadStatus(tx)
		if err != nil {
			return err
		}
		if enabled != nil {
			loaded.VotingEnabled = *enabled
		}
		if stopped != nil {
			loaded.VotingStopped = *stopped
		}
		if err := tx.Save(&loaded).Error; err != nil {
			return err
		}
		status = loaded
		return nil
	})
	if txErr != nil {
		s.logError(opUpdateStatus, "transaction_failed", txErr)
		return Status{}, newServiceError(opUpdateStatus, "transaction_failed", txErr)
	}

	return status, nil
}

func loadStatus(db *gorm.DB) (Status, error) {
	status := Status{ID: statusRowID}
	err := db.Where(Status{ID: statusRowID}).FirstOrCreate(&status).Error
	return status, err
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("voting service error", attrs...)
}
