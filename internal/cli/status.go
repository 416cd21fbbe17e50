package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rohmanhakim/newsfeed/internal/newscache"
	"github.com/rohmanhakim/newsfeed/pkg/hashutil"
	"github.com/rohmanhakim/newsfeed/pkg/timeutil"
	"github.com/spf13/cobra"
)

var (
	colorLabel = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorFresh = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorStale = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}

	labelStyle = lipgloss.NewStyle().Foreground(colorLabel)
	freshStyle = lipgloss.NewStyle().Foreground(colorFresh).Bold(true)
	staleStyle = lipgloss.NewStyle().Foreground(colorStale).Bold(true)
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the age and freshness of the cached news list without fetching.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError(environ)
		if err != nil {
			return err
		}
		a, err := newApp(cfg, cmd.ErrOrStderr(), nowFunc)
		if err != nil {
			return err
		}
		defer a.close()

		writeStatus(cmd.OutOrStdout(), a.cache.Status(a.now), string(cfg.StoreBackend()))
		return nil
	},
}

func writeStatus(w io.Writer, status newscache.Status, backend string) {
	line := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
	}

	line("key", newscache.CacheKey)
	line("backend", backend)
	line("window", timeutil.HumanizeDuration(status.Window))

	switch {
	case !status.Present:
		line("state", staleStyle.Render("absent"))
		return
	case status.Malformed:
		line("state", staleStyle.Render("malformed"))
	case status.Fresh:
		line("state", freshStyle.Render("fresh"))
	default:
		line("state", staleStyle.Render("stale"))
	}

	if !status.Malformed {
		line("fetched", status.FetchedAt.Format("2006-01-02 15:04:05 MST"))
		line("age", timeutil.HumanizeDuration(status.Age))
		line("articles", fmt.Sprintf("%d", status.ArticleCount))
	}

	// the hash only fails for unknown algorithms
	digest, _ := hashutil.HashBytes([]byte(status.Raw), hashutil.HashAlgoBLAKE3)
	line("digest", digest)
}
