package game

import "time"

// FindingStatus is the referee-assigned lifecycle state of a finding.
type FindingStatus string

const (
	FindingPending   FindingStatus = "pending"
	FindingValid     FindingStatus = "valid"
	FindingFalseFlag FindingStatus = "false_flag"
	FindingDuplicate FindingStatus = "duplicate"
)

// VerificationStatus tracks the optional second-pass adjudication of a
// finding the referee marked as uncertain.
type VerificationStatus string

const (
	VerificationNone       VerificationStatus = "none"
	VerificationPending    VerificationStatus = "pending"
	VerificationConfirmed  VerificationStatus = "confirmed"
	VerificationOverridden VerificationStatus = "overridden"
)

// Confidence is the referee's stated confidence in a verdict.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Finding is a single issue report submitted by an agent during a hunt.
// IDs are assigned by the store and increase monotonically per game, which
// gives "earliest duplicate wins" a total order.
type Finding struct {
	ID              int64
	GameID          string
	AgentID         string
	Round           int
	FilePath        string
	LineStart       int
	LineEnd         int
	Description     string
	CodeSnippet     string // optional evidence; required for doc_drift
	PatternHash     string
	Status          FindingStatus
	DuplicateOf     *int64 // set iff Status == FindingDuplicate
	Verdict         string
	Confidence      Confidence
	ConfidenceScore *int // optional, 0..100
	PointsAwarded   int
	Verification    VerificationStatus
	VerifierNote    string
	IssueType       string
	ImpactTier      string
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewFinding creates a pending finding for the given agent and round.
// The pattern hash is computed by the caller before persisting.
func NewFinding(gameID, agentID string, round int, filePath string, lineStart, lineEnd int, description, snippet string, now time.Time) (*Finding, error) {
	if lineEnd < lineStart {
		return nil, ErrLineRange
	}
	return &Finding{
		GameID:       gameID,
		AgentID:      agentID,
		Round:        round,
		FilePath:     filePath,
		LineStart:    lineStart,
		LineEnd:      lineEnd,
		Description:  description,
		CodeSnippet:  snippet,
		Status:       FindingPending,
		Verification: VerificationNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsValid reports whether the finding currently stands as valid.
func (f *Finding) IsValid() bool {
	return f.Status == FindingValid
}

// Validate applies a VALID referee verdict. When needsVerification is set the
// finding enters verification and no points are awarded until the verifier
// resolves it. Returns the points awarded now.
func (f *Finding) Validate(verdict string, conf Confidence, score *int, issueType, impactTier string, needsVerification bool, now time.Time) (int, error) {
	if f.Status != FindingPending {
		return 0, ErrInvalidState
	}
	f.Status = FindingValid
	f.Verdict = verdict
	f.Confidence = conf
	f.ConfidenceScore = score
	f.IssueType = issueType
	f.ImpactTier = impactTier
	f.UpdatedAt = now
	if needsVerification {
		f.Verification = VerificationPending
		f.PointsAwarded = 0
		return 0, nil
	}
	f.Verification = VerificationNone
	f.PointsAwarded = PointsValidFinding
	return PointsValidFinding, nil
}

// MarkFalse applies a FALSE referee verdict. Returns the penalty points.
func (f *Finding) MarkFalse(verdict, rejectionReason string, now time.Time) (int, error) {
	if f.Status != FindingPending {
		return 0, ErrInvalidState
	}
	f.Status = FindingFalseFlag
	f.Verdict = verdict
	f.RejectionReason = rejectionReason
	f.PointsAwarded = PointsFalseFlag
	f.Verification = VerificationNone
	f.UpdatedAt = now
	return PointsFalseFlag, nil
}

// MarkDuplicate applies a DUPLICATE referee verdict referencing the earlier
// finding that owns the pattern. Returns the penalty points.
func (f *Finding) MarkDuplicate(verdict string, duplicateOf int64, now time.Time) (int, error) {
	if f.Status != FindingPending {
		return 0, ErrInvalidState
	}
	f.Status = FindingDuplicate
	f.Verdict = verdict
	f.DuplicateOf = &duplicateOf
	f.PointsAwarded = PointsDuplicate
	f.Verification = VerificationNone
	f.UpdatedAt = now
	return PointsDuplicate, nil
}

// RevokeValidation transitions a valid finding to false_flag after a
// successful dispute. Verification is forced back to none so a pending
// verifier pass cannot resurrect the finding afterwards.
func (f *Finding) RevokeValidation(verdict string, now time.Time) error {
	if f.Status != FindingValid {
		return ErrInvalidState
	}
	f.Status = FindingFalseFlag
	f.Verdict = verdict
	f.PointsAwarded = PointsFalseFlag
	f.Verification = VerificationNone
	f.UpdatedAt = now
	return nil
}

// ApplyVerification resolves a pending verification. Confirmation awards the
// withheld valid points; rejection overrides the referee and flips the
// finding to false_flag with the standard penalty. Returns the points applied.
func (f *Finding) ApplyVerification(confirmed bool, explanation, overriddenType, rejectionReason string, now time.Time) (int, error) {
	if f.Verification != VerificationPending {
		return 0, ErrInvalidState
	}
	f.VerifierNote = explanation
	f.UpdatedAt = now
	if confirmed {
		f.Verification = VerificationConfirmed
		f.PointsAwarded = PointsValidFinding
		return PointsValidFinding, nil
	}
	f.Verification = VerificationOverridden
	f.Status = FindingFalseFlag
	if overriddenType != "" {
		f.IssueType = overriddenType
	}
	f.RejectionReason = rejectionReason
	f.PointsAwarded = PointsFalseFlag
	return PointsFalseFlag, nil
}
