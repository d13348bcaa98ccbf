package voting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type sequenceIDGenerator struct {
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:voting_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Photo{}, &Vote{}, &Status{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      func() time.Time { return time.Unix(1760000000, 0).UTC() },
		IDProvider: &sequenceIDGenerator{},
	})
	if err != nil {
		t.Fatalf("failed to construct voting service: %v", err)
	}
	return service, db
}

func openVoting(t *testing.T, service *Service) {
	t.Helper()
	enabled := true
	stopped := false
	if _, err := service.UpdateStatus(context.Background(), &enabled, &stopped); err != nil {
		t.Fatalf("failed to open voting: %v", err)
	}
}

func addPhoto(t *testing.T, service *Service, uploader string) PhotoView {
	t.Helper()
	photo, err := service.AddPhoto(context.Background(), NewPhoto{
		Filename:         "photo-1.jpg",
		OriginalFilename: "party.jpg",
		FilePath:         "/uploads/photo-1.jpg",
		UploaderIP:       uploader,
	})
	if err != nil {
		t.Fatalf("failed to add photo: %v", err)
	}
	return photo
}

func TestCastVoteIncrementsCountAndMarksVoter(t *testing.T) {
	service, db := newTestService(t)
	openVoting(t, service)
	photo := addPhoto(t, service, "10.0.0.9")

	voted, err := service.CastVote(context.Background(), photo.ID, "10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if voted.VoteCount != 1 {
		t.Fatalf("expected vote count 1, got %d", voted.VoteCount)
	}
	if !voted.HasVoted {
		t.Fatalf("expected HasVoted for the voter")
	}

	var voteRows int64
	if err := db.Model(&Vote{}).Count(&voteRows).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if voteRows != 1 {
		t.Fatalf("expected exactly one vote row, got %d", voteRows)
	}
}

func TestCastVoteDeduplicatesByPhotoAndIP(t *testing.T) {
	service, db := newTestService(t)
	openVoting(t, service)
	photo := addPhoto(t, service, "10.0.0.9")

	if _, err := service.CastVote(context.Background(), photo.ID, "10.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := service.CastVote(context.Background(), photo.ID, "10.0.0.1")
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	// The counter moved by exactly one in total.
	var stored Photo
	if err := db.Where("id = ?", photo.ID).Take(&stored).Error; err != nil {
		t.Fatalf("failed to load photo: %v", err)
	}
	if stored.VoteCount != 1 {
		t.Fatalf("expected vote count 1 after duplicate, got %d", stored.VoteCount)
	}
	var voteRows int64
	if err := db.Model(&Vote{}).Count(&voteRows).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if voteRows != 1 {
		t.Fatalf("expected one vote row after duplicate, got %d", voteRows)
	}

	// A different IP still votes freely.
	voted, err := service.CastVote(context.Background(), photo.ID, "10.0.0.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if voted.VoteCount != 2 {
		t.Fatalf("expected vote count 2, got %d", voted.VoteCount)
	}
}

func TestCastVoteRejectedWhenStoppedEvenIfEnabled(t *testing.T) {
	service, db := newTestService(t)
	enabled := true
	stopped := true
	if _, err := service.UpdateStatus(context.Background(), &enabled, &stopped); err != nil {
		t.Fatalf("failed to set status: %v", err)
	}
	photo := addPhoto(t, service, "10.0.0.9")

	_, err := service.CastVote(context.Background(), photo.ID, "10.0.0.1")
	if !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed, got %v", err)
	}

	var voteRows int64
	if err := db.Model(&Vote{}).Count(&voteRows).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if voteRows != 0 {
		t.Fatalf("expected no state change, got %d vote rows", voteRows)
	}
}

func TestCastVoteRejectedWhenVotingNeverEnabled(t *testing.T) {
	service, _ := newTestService(t)
	photo := addPhoto(t, service, "10.0.0.9")

	_, err := service.CastVote(context.Background(), photo.ID, "10.0.0.1")
	if !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed with default flags, got %v", err)
	}
}

func TestCastVoteUnknownPhoto(t *testing.T) {
	service, _ := newTestService(t)
	openVoting(t, service)

	_, err := service.CastVote(context.Background(), "missing", "10.0.0.1")
	if !errors.Is(err, ErrPhotoNotFound) {
		t.Fatalf("expected ErrPhotoNotFound, got %v", err)
	}
}

func TestListPhotosOrdersByVoteCountWithHasVoted(t *testing.T) {
	service, _ := newTestService(t)
	openVoting(t, service)
	ctx := context.Background()

	first := addPhoto(t, service, "10.0.0.9")
	second := addPhoto(t, service, "10.0.0.9")

	// Two votes for the second photo, one for the first.
	if _, err := service.CastVote(ctx, second.ID, "10.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CastVote(ctx, second.ID, "10.0.0.2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.CastVote(ctx, first.ID, "10.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	views, err := service.ListPhotos(ctx, "10.0.0.2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(views))
	}
	if views[0].ID != second.ID || views[0].VoteCount != 2 {
		t.Fatalf("expected highest tally first: %+v", views[0])
	}
	if !views[0].HasVoted {
		t.Fatalf("expected HasVoted true for 10.0.0.2 on the leading photo")
	}
	if views[1].HasVoted {
		t.Fatalf("expected HasVoted false for 10.0.0.2 on the other photo")
	}
	if views[0].ImageURL != views[0].FilePath {
		t.Fatalf("expected image url to mirror file path")
	}
}

func TestUpdateStatusAppliesPartialChanges(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	status, err := service.VotingStatus(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.VotingEnabled || status.VotingStopped {
		t.Fatalf("expected both flags off initially: %+v", status)
	}

	enabled := true
	status, err = service.UpdateStatus(ctx, &enabled, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.VotingEnabled || status.VotingStopped {
		t.Fatalf("expected only enabled to flip: %+v", status)
	}

	stopped := true
	status, err = service.UpdateStatus(ctx, nil, &stopped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.VotingEnabled || !status.VotingStopped {
		t.Fatalf("expected stopped to flip with enabled untouched: %+v", status)
	}
	if status.Accepting() {
		t.Fatalf("expected gate closed while stopped")
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(ServiceConfig{}); err == nil {
		t.Fatalf("expected error for missing database")
	}
	db, err := gorm.Open(sqlite.Open("file:voting_cfg_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if _, err := NewService(ServiceConfig{Database: db}); err == nil {
		t.Fatalf("expected error for missing id provider")
	}
}
