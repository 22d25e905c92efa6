package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/socialflow/socialflow/internal/api"
	"github.com/socialflow/socialflow/internal/client"
	"github.com/socialflow/socialflow/internal/store"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Generate, approve, and schedule content",
}

var (
	generatePageID   int
	generatePrompt   string
	generateType     string
	generateTone     string
	generateAudience string
	generateHashtags bool
	generateImage    bool
	generateTopics   []string
)

var contentGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate content with AI",
	Long: `Generate one content item from --prompt, or one item per topic when
--topics is given (bulk generation). Each item consumes AI credits.`,
	RunE: runContentGenerate,
}

var (
	listOffset   int
	listLimit    int
	listApproved bool
)

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated content",
	Long: `List generated content for the default page (or --page). With
--offset the new rows are appended to the mirror instead of replacing it,
matching how the feed paginates.`,
	RunE: runContentList,
}

var approveFeedback string

var contentApproveCmd = &cobra.Command{
	Use:   "approve <content-id>",
	Short: "Approve a content item for scheduling",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentApprove,
}

var scheduleAt string

var contentScheduleCmd = &cobra.Command{
	Use:   "schedule <content-id>",
	Short: "Schedule approved content",
	Long: `Schedule an approved content item. Without --at the server picks the
next optimal posting slot for the page's region.`,
	RunE: runContentSchedule,
	Args: cobra.ExactArgs(1),
}

var contentScheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "List scheduled posts for a page",
	RunE:  runContentScheduled,
}

var (
	optimizeGoals  []string
	optimizeTarget float64
)

var contentOptimizeCmd = &cobra.Command{
	Use:   "optimize <content-id>",
	Short: "Get improvement suggestions for a content item",
	Long: `Ask the server for optimization suggestions and predicted improvements
for a content item. Suggestions are advisory; the item itself is unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runContentOptimize,
}

var contentDeleteCmd = &cobra.Command{
	Use:   "delete <content-id>",
	Short: "Delete a content item",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentDelete,
}

var contentPageID int

func init() {
	contentCmd.PersistentFlags().IntVar(&contentPageID, "page", 0, "page ID (default from config defaults.page_id)")

	contentGenerateCmd.Flags().IntVar(&generatePageID, "for-page", 0, "deprecated alias for --page")
	contentGenerateCmd.Flags().StringVar(&generatePrompt, "prompt", "", "generation prompt")
	contentGenerateCmd.Flags().StringSliceVar(&generateTopics, "topics", nil, "bulk: one item per topic")
	contentGenerateCmd.Flags().StringVar(&generateType, "type", string(api.ContentTypeText), "content type: text, image, or mixed")
	contentGenerateCmd.Flags().StringVar(&generateTone, "tone", "engaging", "writing tone")
	contentGenerateCmd.Flags().StringVar(&generateAudience, "audience", "", "target audience")
	contentGenerateCmd.Flags().BoolVar(&generateHashtags, "hashtags", true, "include hashtags")
	contentGenerateCmd.Flags().BoolVar(&generateImage, "image", false, "include a generated image")

	contentListCmd.Flags().IntVar(&listOffset, "offset", 0, "pagination offset")
	contentListCmd.Flags().IntVar(&listLimit, "limit", 20, "page size")
	contentListCmd.Flags().BoolVar(&listApproved, "approved", false, "only approved items")

	contentApproveCmd.Flags().StringVar(&approveFeedback, "feedback", "", "approval feedback")

	contentScheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "posting time, RFC 3339 (default: next optimal slot)")

	contentOptimizeCmd.Flags().StringSliceVar(&optimizeGoals, "goals", []string{"engagement"}, "optimization goals: engagement, reach, clicks, shares, comments")
	contentOptimizeCmd.Flags().Float64Var(&optimizeTarget, "target", 0.2, "target improvement, 0.1 to 1.0")

	contentCmd.AddCommand(contentGenerateCmd)
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentApproveCmd)
	contentCmd.AddCommand(contentScheduleCmd)
	contentCmd.AddCommand(contentScheduledCmd)
	contentCmd.AddCommand(contentOptimizeCmd)
	contentCmd.AddCommand(contentDeleteCmd)
	rootCmd.AddCommand(contentCmd)
}

// resolvePageID picks the page from --page, falling back to the configured
// default. Zero means "no page", which most content commands reject.
func resolvePageID(c *client.Client) int {
	if contentPageID > 0 {
		return contentPageID
	}
	return c.Config().Defaults.PageID
}

func runContentGenerate(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	pageID := generatePageID
	if pageID == 0 {
		pageID = resolvePageID(c)
	}
	if pageID == 0 {
		return fmt.Errorf("no page: pass --page or set defaults.page_id")
	}

	if len(generateTopics) > 0 {
		req := api.BulkGenerateRequest{
			FacebookPageID:  pageID,
			Topics:          generateTopics,
			ContentType:     api.ContentType(generateType),
			Tone:            generateTone,
			IncludeHashtags: generateHashtags,
			IncludeImages:   generateImage,
		}
		if !c.Content.BulkGenerate(cmd.Context(), req) {
			return storeFailure(c.Content.Err())
		}
		fmt.Fprintf(os.Stderr, "Generated %d items.\n", len(generateTopics))
		return nil
	}

	if generatePrompt == "" {
		return fmt.Errorf("no prompt: pass --prompt or --topics")
	}
	req := api.GenerateRequest{
		FacebookPageID:  pageID,
		AIPrompt:        generatePrompt,
		ContentType:     api.ContentType(generateType),
		TargetAudience:  generateAudience,
		Tone:            generateTone,
		IncludeHashtags: generateHashtags,
		IncludeImage:    generateImage,
	}
	if !c.Content.Generate(cmd.Context(), req) {
		return storeFailure(c.Content.Err())
	}

	items := c.Content.Items()
	if len(items) > 0 {
		return printJSON(items[0])
	}
	return nil
}

func runContentList(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	c.Content.SetFilter(store.ContentFilter{
		PageID:       resolvePageID(c),
		ApprovedOnly: listApproved,
	})
	if !c.Content.Fetch(cmd.Context(), listOffset, listLimit) {
		return storeFailure(c.Content.Err())
	}

	items := c.Content.Items()
	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "No content.")
		return nil
	}
	for _, item := range items {
		status := "pending"
		if item.IsApproved {
			status = "approved"
		}
		caption := item.GeneratedCaption
		if len(caption) > 60 {
			caption = caption[:57] + "..."
		}
		fmt.Printf("%d\t[%s]\t%s\t%s\n", item.ID, status, item.ContentType, caption)
	}
	return nil
}

func runContentApprove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "content id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	if !c.Content.Approve(cmd.Context(), id, approveFeedback) {
		return storeFailure(c.Content.Err())
	}
	fmt.Fprintf(os.Stderr, "Content %d approved.\n", id)
	return nil
}

func runContentSchedule(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "content id")
	if err != nil {
		return err
	}

	var at *time.Time
	if scheduleAt != "" {
		t, err := time.Parse(time.RFC3339, scheduleAt)
		if err != nil {
			return fmt.Errorf("invalid --at %q: %w", scheduleAt, err)
		}
		at = &t
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	// The mirror needs the item loaded so the schedule call can resolve its
	// page for the scheduled-posts refetch.
	c.Content.SetFilter(store.ContentFilter{PageID: resolvePageID(c)})
	if !c.Content.Fetch(cmd.Context(), 0, 0) {
		return storeFailure(c.Content.Err())
	}

	if !c.Content.Schedule(cmd.Context(), id, at) {
		return storeFailure(c.Content.Err())
	}
	if at != nil {
		fmt.Fprintf(os.Stderr, "Content %d scheduled for %s.\n", id, at.Format(time.RFC3339))
	} else {
		fmt.Fprintf(os.Stderr, "Content %d scheduled for the next optimal slot.\n", id)
	}
	return nil
}

func runContentScheduled(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	pageID := resolvePageID(c)
	if pageID == 0 {
		return fmt.Errorf("no page: pass --page or set defaults.page_id")
	}
	if !c.Content.FetchScheduled(cmd.Context(), pageID) {
		return storeFailure(c.Content.Err())
	}

	posts := c.Content.Scheduled()
	if len(posts) == 0 {
		fmt.Fprintln(os.Stderr, "No scheduled posts.")
		return nil
	}
	for _, p := range posts {
		when := p.ScheduledTime.Format(time.RFC3339)
		if p.ActualPostedTime != nil {
			when = p.ActualPostedTime.Format(time.RFC3339)
		}
		fmt.Printf("%d\t%s\t%s\t%s\n", p.ID, p.Status, when, p.PostURL)
	}
	return nil
}

func runContentOptimize(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "content id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	result, ok := c.Content.Optimize(cmd.Context(), id, optimizeGoals, optimizeTarget)
	if !ok {
		return storeFailure(c.Content.Err())
	}
	return printJSON(result)
}

func runContentDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "content id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	if !c.Content.Delete(cmd.Context(), id) {
		return storeFailure(c.Content.Err())
	}
	fmt.Fprintf(os.Stderr, "Content %d deleted.\n", id)
	return nil
}
