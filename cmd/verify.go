package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/engine"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <game-id> <finding-id> <CONFIRMED|OVERRIDDEN> <explanation>",
	Short: "Resolve a finding's pending verification",
	Long:  "Verify settles a finding the referee flagged as uncertain. CONFIRMED awards the withheld points; OVERRIDDEN flips the finding to a false flag with the standard penalty.",
	Args:  cobra.ExactArgs(4),
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().String("overridden-type", "", "corrected issue type when overriding")
	verifyCmd.Flags().String("rejection-reason", "", "why the finding does not hold up; used with OVERRIDDEN")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	gameID := args[0]
	findingID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("finding id must be a number, got %q", args[1])
	}

	var confirmed bool
	switch args[2] {
	case "CONFIRMED":
		confirmed = true
	case "OVERRIDDEN":
		confirmed = false
	default:
		return fmt.Errorf("verdict must be CONFIRMED or OVERRIDDEN, got %q", args[2])
	}

	overriddenType, _ := cmd.Flags().GetString("overridden-type")
	rejectionReason, _ := cmd.Flags().GetString("rejection-reason")

	return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
		points, err := orch.Submissions.VerifyFinding(ctx, gameID, findingID, confirmed, args[3], overriddenType, rejectionReason)
		if err != nil {
			return nil, err
		}
		return struct {
			FindingID int64  `json:"finding_id"`
			Verdict   string `json:"verdict"`
			Points    int    `json:"points"`
		}{FindingID: findingID, Verdict: args[2], Points: points}, nil
	})
}
