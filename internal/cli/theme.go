package cmd

import (
	"fmt"

	"github.com/rohmanhakim/newsfeed/internal/theme"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|toggle]",
	Short:     "Show or change the stored display theme.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(theme.Dark), string(theme.Light), "toggle"},
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

		current := a.preference.Get()
		if len(args) == 1 {
			if current, err = applyTheme(a.preference, args[0]); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\n", current)
		return nil
	},
}

func applyTheme(preference *theme.Preference, arg string) (theme.Theme, error) {
	if arg == "toggle" {
		next, err := preference.Toggle()
		if err != nil {
			return "", err
		}
		return next, nil
	}

	next, err := theme.Parse(arg)
	if err != nil {
		return "", err
	}
	if setErr := preference.Set(next); setErr != nil {
		return "", setErr
	}
	return next, nil
}
