package voting

import "errors"

var (
	// ErrVotingClosed indicates the global gate rejected the vote.
	ErrVotingClosed = errors.New("voting: voting is closed")
	// ErrAlreadyVoted indicates this IP already voted for the photo.
	ErrAlreadyVoted = errors.New("voting: already voted")
	// ErrPhotoNotFound indicates the vote referenced an unknown photo.
	ErrPhotoNotFound = errors.New("voting: photo not found")
)

// Photo is an uploaded gallery entry with its running vote tally.
type Photo struct {
	ID               string `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Filename         string `gorm:"column:filename;size:255;not null" json:"filename"`
	OriginalFilename string `gorm:"column:original_filename;size:255;not null" json:"originalFilename"`
	FilePath         string `gorm:"column:file_path;size:255;not null" json:"filePath"`
	UploaderIP       string `gorm:"column:uploader_ip;size:64;not null" json:"uploaderIp"`
	VoteCount        int    `gorm:"column:vote_count;not null;default:0" json:"voteCount"`
	CreatedAtSeconds int64  `gorm:"column:created_at_s;not null" json:"createdAt"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Photo) TableName() string {
	return "party_photos"
}

// Vote records one ballot. The unique index on (photo_id, voter_ip) is the
// dedup guarantee: enforcement lives in the storage layer, not in a
// check-then-insert in application code.
type Vote struct {
	ID      string `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	PhotoID string `gorm:"column:photo_id;size:190;not null;uniqueIndex:idx_votes_photo_voter,priority:1" json:"photoId"`
	VoterIP string `gorm:"column:voter_ip;size:64;not null;uniqueIndex:idx_votes_photo_voter,priority:2" json:"voterIp"`
}

// TableName provides the explicit table binding for GORM.
func (Vote) TableName() string {
	return "photo_votes"
}

// Status is the singleton flag pair gating the vote flow. VotingEnabled is
// the master switch, VotingStopped freezes ballots for tallying.
type Status struct {
	ID            int  `gorm:"column:id;primaryKey" json:"-"`
	VotingEnabled bool `gorm:"column:voting_enabled;not null;default:false" json:"votingEnabled"`
	VotingStopped bool `gorm:"column:voting_stopped;not null;default:false" json:"votingStopped"`
}

// TableName provides the explicit table binding for GORM.
func (Status) TableName() string {
	return "voting_status"
}

// Accepting reports whether a vote may currently be cast.
func (s Status) Accepting() bool {
	return s.VotingEnabled && !s.VotingStopped
}

// PhotoView is the API shape of a photo: the stored record plus fields
// computed per caller.
type PhotoView struct {
	Photo
	ImageURL string `json:"imageUrl"`
	HasVoted bool   `json:"hasVoted"`
}

// NewPhoto carries the upload attributes for a photo record.
type NewPhoto struct {
	Filename         string
	OriginalFilename string
	FilePath         string
	UploaderIP       string
}
