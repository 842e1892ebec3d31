package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ems/internal/domain/audit"
	"ems/internal/domain/drafts"
	"ems/internal/domain/profile"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Review employee profile drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts with their change counts",
	Args:  cobra.NoArgs,
	Run:   runDraftsList,
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <employeeID>",
	Short: "Show the comparison of an open draft",
	Args:  cobra.ExactArgs(1),
	Run:   runDraftsShow,
}

var draftsApproveCmd = &cobra.Command{
	Use:   "approve <employeeID>",
	Short: "Approve a draft and write it to the live record",
	Args:  cobra.ExactArgs(1),
	Run:   runDraftsApprove,
}

var draftsRejectCmd = &cobra.Command{
	Use:   "reject <employeeID>",
	Short: "Reject a draft, leaving the live record untouched",
	Args:  cobra.ExactArgs(1),
	Run:   runDraftsReject,
}

var (
	draftsTenant   string
	draftsReviewer string
	draftsStatus   string
	draftsLimit    int
	rejectComment  string
)

func init() {
	draftsCmd.PersistentFlags().StringVar(&draftsTenant, "tenant", os.Getenv("EMS_TENANT_ID"), "Tenant id (EMS_TENANT_ID)")
	draftsCmd.PersistentFlags().StringVar(&draftsReviewer, "reviewer", os.Getenv("EMS_REVIEWER_ID"), "Reviewer user id (EMS_REVIEWER_ID)")
	draftsListCmd.Flags().StringVar(&draftsStatus, "status", profile.DraftStatusPending, "Filter by status (draft, pending, approved, rejected, or empty for all)")
	draftsListCmd.Flags().IntVar(&draftsLimit, "limit", drafts.DefaultListLimit, "Maximum rows to show")
	draftsRejectCmd.Flags().StringVarP(&rejectComment, "comment", "m", "", "Review comment shown to the author")

	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsShowCmd)
	draftsCmd.AddCommand(draftsApproveCmd)
	draftsCmd.AddCommand(draftsRejectCmd)
}

func newBoard(c *cmdContext, needReviewer bool) *drafts.ReviewBoard {
	if strings.TrimSpace(draftsTenant) == "" {
		c.Close()
		exitError("--tenant is required")
	}
	if needReviewer && strings.TrimSpace(draftsReviewer) == "" {
		c.Close()
		exitError("--reviewer is required")
	}
	return drafts.NewReviewBoard(c.Manager, draftsTenant, draftsReviewer, drafts.ListFilter{Status: draftsStatus, Limit: draftsLimit})
}

func parseEmployeeID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		exitError("invalid employee id %q", raw)
	}
	return id
}

func runDraftsList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	c := initContext(ctx)
	defer c.Close()

	board := newBoard(c, false)
	if err := board.Reload(ctx); err != nil {
		exitError("failed to list drafts: %v", err)
	}
	list, total := board.Drafts()
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No drafts")
		return
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLOYEE\tNAME\tSTATUS\tCHANGES\tSECTIONS\tUPDATED")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", s.EmployeeID, s.FullName, s.Status, s.ChangeCount, strings.Join(s.ChangedSections, ","), s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
	if total > len(list) {
		fmt.Fprintf(cmd.OutOrStdout(), "showing %d of %d\n", len(list), total)
	}
}

func runDraftsShow(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	employeeID := parseEmployeeID(args[0])
	c := initContext(ctx)
	defer c.Close()

	review, err := newBoard(c, false).Open(ctx, employeeID)
	if err != nil {
		exitError("failed to open draft: %v", err)
	}
	bold := color.New(color.Bold)
	bold.Fprintf(cmd.OutOrStdout(), "%s (#%d), draft %s\n\n", review.Employee.FullName, review.Employee.ID, review.Draft.Status)
	renderDiff(cmd.OutOrStdout(), review.Comparison, false)
}

func runDraftsApprove(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	employeeID := parseEmployeeID(args[0])
	c := initContext(ctx)
	defer c.Close()

	board := newBoard(c, true)
	if err := board.Approve(ctx, employeeID); err != nil {
		exitError("approve failed: %v", err)
	}
	recordDecision(ctx, c, audit.ActionDraftApproved, employeeID, map[string]string{"status": profile.DraftStatusApproved})
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "approved draft for employee %d\n", employeeID)
	if err := board.ListErr(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: draft list reload failed: %v\n", err)
	}
}

func runDraftsReject(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	employeeID := parseEmployeeID(args[0])
	comment := strings.TrimSpace(rejectComment)
	c := initContext(ctx)
	defer c.Close()

	board := newBoard(c, true)
	if err := board.Reject(ctx, employeeID, comment); err != nil {
		exitError("reject failed: %v", err)
	}
	recordDecision(ctx, c, audit.ActionDraftRejected, employeeID, map[string]string{"status": profile.DraftStatusRejected, "comment": comment})
	color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "rejected draft for employee %d\n", employeeID)
	if err := board.ListErr(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: draft list reload failed: %v\n", err)
	}
}

func recordDecision(ctx context.Context, c *cmdContext, action string, employeeID int64, after any) {
	err := c.Audit.Record(ctx, draftsTenant, draftsReviewer, action, audit.EntityEmployeeDraft, strconv.FormatInt(employeeID, 10), "", "", nil, after)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit record failed: %v\n", err)
	}
}
