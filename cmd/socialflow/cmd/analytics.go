package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/socialflow/socialflow/internal/client"
	"github.com/socialflow/socialflow/internal/store"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Engagement analytics for connected pages",
}

var (
	analyticsPageID int
	analyticsStart  string
	analyticsEnd    string
)

var analyticsDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the analytics dashboard",
	Long: `Show the composite dashboard: ranged summary, recent post
performance, and optimization insights. Repeated calls within the cache TTL
are served locally.`,
	RunE: runAnalyticsDashboard,
}

var analyticsSummaryCmd = &cobra.Command{
	Use:   "summary <page-id>",
	Short: "Show one page's ranged summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyticsSummary,
}

var analyticsPostCmd = &cobra.Command{
	Use:   "post <post-id>",
	Short: "Show one post's engagement record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyticsPost,
}

var analyticsTimelineCmd = &cobra.Command{
	Use:   "timeline <page-id>",
	Short: "Show a page's engagement timeline",
	Long:  `Show the hour-by-hour engagement breakdown, peak hours, and best days.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyticsTimeline,
}

var (
	compareDaysCurrent  int
	compareDaysPrevious int
)

var analyticsCompareCmd = &cobra.Command{
	Use:   "compare <page-id>",
	Short: "Compare a page's current period to the previous one",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyticsCompare,
}

var analyticsRegionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Compare the US and UK page fleets",
	RunE:  runAnalyticsRegions,
}

var analyticsContentCmd = &cobra.Command{
	Use:   "content-analysis <page-id>",
	Short: "Break down what drives a page's engagement",
	Long: `Analyze which content attributes (type, caption length, hashtags,
sentiment, imagery) drive a page's engagement. Needs posting history; sparse
pages get defaults with a note.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyticsContentAnalysis,
}

var analyticsCollectCmd = &cobra.Command{
	Use:   "collect <page-id>",
	Short: "Pull fresh metrics from Facebook",
	Long: `Ask the server to collect fresh metrics from the Facebook Graph API
for a page, then refetch the dashboard past the local cache.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyticsCollect,
}

func init() {
	analyticsCmd.PersistentFlags().IntVar(&analyticsPageID, "page", 0, "page ID (default from config defaults.page_id)")
	analyticsCmd.PersistentFlags().StringVar(&analyticsStart, "start", "", "range start, YYYY-MM-DD")
	analyticsCmd.PersistentFlags().StringVar(&analyticsEnd, "end", "", "range end, YYYY-MM-DD")

	analyticsCompareCmd.Flags().IntVar(&compareDaysCurrent, "days-current", 0, "current window in days (server default 30)")
	analyticsCompareCmd.Flags().IntVar(&compareDaysPrevious, "days-previous", 0, "previous window in days (server default 30)")

	analyticsCmd.AddCommand(analyticsDashboardCmd)
	analyticsCmd.AddCommand(analyticsSummaryCmd)
	analyticsCmd.AddCommand(analyticsPostCmd)
	analyticsCmd.AddCommand(analyticsTimelineCmd)
	analyticsCmd.AddCommand(analyticsCompareCmd)
	analyticsCmd.AddCommand(analyticsRegionsCmd)
	analyticsCmd.AddCommand(analyticsContentCmd)
	analyticsCmd.AddCommand(analyticsCollectCmd)
	rootCmd.AddCommand(analyticsCmd)
}

// applyRange sets the query window from the --start/--end flags.
func applyRange(c *client.Client) {
	if analyticsStart != "" || analyticsEnd != "" {
		c.Analytics.SetDateRange(store.DateRange{Start: analyticsStart, End: analyticsEnd})
	}
}

func runAnalyticsDashboard(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	applyRange(c)

	pageID := analyticsPageID
	if pageID == 0 {
		pageID = c.Config().Defaults.PageID
	}
	if !c.Analytics.FetchDashboard(cmd.Context(), pageID) {
		return storeFailure(c.Analytics.Err())
	}

	dash := c.Analytics.Dashboard()
	if dash == nil {
		fmt.Fprintln(os.Stderr, "No analytics yet.")
		return nil
	}
	return printJSON(dash)
}

func runAnalyticsSummary(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "page id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	applyRange(c)

	summary, ok := c.Analytics.FetchPageSummary(cmd.Context(), id)
	if !ok {
		return storeFailure(c.Analytics.Err())
	}
	return printJSON(summary)
}

func runAnalyticsPost(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "post id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	if !c.Analytics.FetchPostAnalytics(cmd.Context(), id) {
		return storeFailure(c.Analytics.Err())
	}
	for _, record := range c.Analytics.Posts() {
		if record.ID == id || record.ScheduledPostID == id {
			return printJSON(record)
		}
	}
	return fmt.Errorf("post %d has no analytics record", id)
}

func runAnalyticsTimeline(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "page id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	applyRange(c)

	timeline, ok := c.Analytics.FetchTimeline(cmd.Context(), id)
	if !ok {
		return storeFailure(c.Analytics.Err())
	}
	return printJSON(timeline)
}

func runAnalyticsCompare(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "page id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	cmp, ok := c.Analytics.Compare(cmd.Context(), id, compareDaysCurrent, compareDaysPrevious)
	if !ok {
		return storeFailure(c.Analytics.Err())
	}
	return printJSON(cmp)
}

func runAnalyticsRegions(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	applyRange(c)

	cmp, ok := c.Analytics.CompareRegions(cmd.Context())
	if !ok {
		return storeFailure(c.Analytics.Err())
	}
	return printJSON(cmp)
}

func runAnalyticsContentAnalysis(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "page id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	applyRange(c)

	analysis, ok := c.Analytics.FetchContentAnalysis(cmd.Context(), id)
	if !ok {
		return storeFailure(c.Analytics.Err())
	}
	return printJSON(analysis)
}

func runAnalyticsCollect(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "page id")
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	applyRange(c)

	if !c.Analytics.Collect(cmd.Context(), id) {
		return storeFailure(c.Analytics.Err())
	}
	fmt.Fprintf(os.Stderr, "Collection started for page %d; dashboard refreshed.\n", id)
	return nil
}
