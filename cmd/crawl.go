package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/crawl4ai-client/internal/client"
	"github.com/JakeFAU/crawl4ai-client/internal/preview"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which submits
// one crawl job and prints the results or, for deferred jobs, polls the
// task until it terminates.
func newCrawlCmd() *cobra.Command {
	var priority int
	cmd := &cobra.Command{
		Use:   "crawl [url ...]",
		Short: "Submits a crawl job and prints content previews",
		Long: `Submits the given URLs (or the configured default list) to the crawl
service in a single job. Synchronous responses are previewed immediately;
deferred ones are polled until the task completes or fails.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, args, priority)
		},
	}
	cmd.Flags().IntVar(&priority, "priority", 0, "job priority (default from config, normally 10)")
	return cmd
}

func runCrawl(cmd *cobra.Command, args []string, priority int) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}

	urls := args
	if len(urls) == 0 {
		urls = rt.cfg.Crawl.URLs
	}
	if len(urls) == 0 {
		return errors.New("no URLs: pass them as arguments or set crawl.urls")
	}
	if !cmd.Flags().Changed("priority") {
		priority = rt.cfg.Crawl.Priority
	}

	cli := client.New(client.Config{
		BaseURL:      rt.cfg.Service.BaseURL,
		APIToken:     rt.cfg.Service.APIToken,
		PollInterval: rt.cfg.PollInterval(),
		MaxWait:      rt.cfg.MaxWait(),
		Timeout:      rt.cfg.RequestTimeout(),
	}, rt.logger.Named("client"))
	defer cli.Close()

	// Crawl output is user-facing text on stdout; diagnostics go through zap
	// on stderr.
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Crawling via %s\n", rt.cfg.Service.BaseURL)
	fmt.Fprintf(out, "Crawling URLs: %v\n", urls)
	fmt.Fprintln(out, strings.Repeat("-", 50))

	resp, err := cli.Submit(cmd.Context(), client.CrawlRequest{URLs: urls, Priority: priority})
	if err != nil {
		var submitErr *client.SubmissionError
		var protoErr *client.ProtocolError
		switch {
		case errors.As(err, &submitErr):
			fmt.Fprintf(out, "Failed to submit crawl job: %d\n", submitErr.StatusCode)
			fmt.Fprintf(out, "Response: %s\n", submitErr.Body)
			return nil
		case errors.As(err, &protoErr):
			fmt.Fprintf(out, "Unexpected submit response: %s\n", protoErr.Body)
			return nil
		}
		return fmt.Errorf("submit crawl job: %w", err)
	}

	if resp.Immediate() {
		fmt.Fprintln(out, "Crawl job completed. Results:")
		for _, r := range resp.Results {
			preview.Render(out, r)
		}
		return nil
	}

	fmt.Fprintf(out, "Crawl job submitted. Task ID: %s\n", resp.TaskID)
	results, err := cli.WaitForTask(cmd.Context(), resp.TaskID, func(*client.TaskStatus) {
		fmt.Fprintln(out, "Task still running...")
	})
	if err != nil {
		var pollErr *client.PollError
		var taskErr *client.TaskFailure
		switch {
		case errors.As(err, &pollErr):
			fmt.Fprintf(out, "Failed to get task status: %d\n", pollErr.StatusCode)
			return nil
		case errors.As(err, &taskErr):
			fmt.Fprintf(out, "Task failed or unknown status: %s\n", taskErr.Raw)
			return nil
		}
		return fmt.Errorf("wait for task: %w", err)
	}

	fmt.Fprintln(out, "\nTask completed!")
	for _, r := range results {
		preview.Summary(out, r)
	}
	return nil
}
