package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/score"
)

var validateCmd = &cobra.Command{
	Use:   "validate <game-id> <finding-id> <VALID|FALSE|DUPLICATE> <explanation>",
	Short: "Record a referee verdict on a finding",
	Long:  "Validate applies a referee verdict to a pending finding and updates the submitter's score in the same transaction. A VALID verdict may still land as DUPLICATE when an earlier valid finding owns the same pattern.",
	Args:  cobra.ExactArgs(4),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().String("confidence", string(game.ConfidenceHigh), "verdict confidence: high, medium, low")
	validateCmd.Flags().Int("confidence-score", -1, "optional 0-100 confidence score")
	validateCmd.Flags().Int64("duplicate-of", 0, "earlier finding id; required for DUPLICATE")
	validateCmd.Flags().String("issue-type", "", "issue classification, e.g. logic_error or race_condition")
	validateCmd.Flags().String("impact-tier", "", "impact tier, e.g. high, medium, low")
	validateCmd.Flags().String("rejection-reason", "", "why the finding is rejected; used with FALSE")
	validateCmd.Flags().Bool("needs-verification", false, "hold points until a verifier second-checks the finding")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	gameID := args[0]
	findingID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("finding id must be a number, got %q", args[1])
	}

	verdict := score.Verdict(args[2])
	switch verdict {
	case score.VerdictValid, score.VerdictFalse, score.VerdictDuplicate:
	default:
		return fmt.Errorf("verdict must be VALID, FALSE or DUPLICATE, got %q", args[2])
	}

	confidence, _ := cmd.Flags().GetString("confidence")
	switch game.Confidence(confidence) {
	case game.ConfidenceHigh, game.ConfidenceMedium, game.ConfidenceLow:
	default:
		return fmt.Errorf("confidence must be high, medium or low, got %q", confidence)
	}

	in := score.ValidationInput{
		Verdict:     verdict,
		Explanation: args[3],
		Confidence:  game.Confidence(confidence),
	}
	if cs, _ := cmd.Flags().GetInt("confidence-score"); cs >= 0 {
		if cs > 100 {
			return fmt.Errorf("confidence-score must be 0-100, got %d", cs)
		}
		in.ConfidenceScore = &cs
	}
	if dup, _ := cmd.Flags().GetInt64("duplicate-of"); dup > 0 {
		in.DuplicateOf = &dup
	}
	if verdict == score.VerdictDuplicate && in.DuplicateOf == nil {
		return fmt.Errorf("--duplicate-of is required for a DUPLICATE verdict")
	}
	in.IssueType, _ = cmd.Flags().GetString("issue-type")
	in.ImpactTier, _ = cmd.Flags().GetString("impact-tier")
	in.RejectionReason, _ = cmd.Flags().GetString("rejection-reason")
	in.NeedsVerification, _ = cmd.Flags().GetBool("needs-verification")

	return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
		result, err := orch.Submissions.ValidateFinding(ctx, gameID, findingID, in)
		if err != nil {
			return nil, err
		}
		return struct {
			FindingID   int64  `json:"finding_id"`
			Verdict     string `json:"verdict"`
			DuplicateOf *int64 `json:"duplicate_of,omitempty"`
			Points      int    `json:"points"`
		}{
			FindingID:   findingID,
			Verdict:     string(result.Verdict),
			DuplicateOf: result.DuplicateOf,
			Points:      result.Points,
		}, nil
	})
}
