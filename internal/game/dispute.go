package game

import "time"

// DisputeStatus is the referee-assigned lifecycle state of a dispute.
type DisputeStatus string

const (
	DisputePending    DisputeStatus = "pending"
	DisputeSuccessful DisputeStatus = "successful"
	DisputeFailed     DisputeStatus = "failed"
)

// Dispute is a challenge filed by one agent against another agent's valid
// finding during a review phase. At most one dispute may exist per
// (finding, disputer) pair.
type Dispute struct {
	ID            int64
	GameID        string
	FindingID     int64
	DisputerID    string
	Round         int
	Reason        string
	Status        DisputeStatus
	Verdict       string
	PointsAwarded int
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

// NewDispute creates a pending dispute for the current round.
func NewDispute(gameID string, findingID int64, disputerID string, round int, reason string, now time.Time) *Dispute {
	return &Dispute{
		GameID:     gameID,
		FindingID:  findingID,
		DisputerID: disputerID,
		Round:      round,
		Reason:     reason,
		Status:     DisputePending,
		CreatedAt:  now,
	}
}

// Resolve applies the referee's verdict. Returns the points awarded to the
// disputer.
func (d *Dispute) Resolve(successful bool, verdict string, now time.Time) (int, error) {
	if d.Status != DisputePending {
		return 0, ErrInvalidState
	}
	d.Verdict = verdict
	d.ResolvedAt = &now
	if successful {
		d.Status = DisputeSuccessful
		d.PointsAwarded = PointsDisputeWon
	} else {
		d.Status = DisputeFailed
		d.PointsAwarded = PointsDisputeLost
	}
	return d.PointsAwarded, nil
}
