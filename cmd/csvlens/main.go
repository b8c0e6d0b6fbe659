package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"csvlens/internal/config"
	"csvlens/internal/ui"
	"csvlens/internal/util/logx"
	"csvlens/internal/version"
)

// usageError marks a command-line mistake, which exits 2 rather than 1.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

func main() {
	logx.SetLevelFromEnv()
	cfg := config.New()

	// Errors raised before RunE starts are cobra's own flag and argument
	// parse failures.
	parsed := false
	root := &cobra.Command{
		Use:   "csvlens [file]",
		Short: "An interactive CSV file viewer for the terminal",
		Long: "csvlens pages through CSV and TSV files the way less pages through text:\n" +
			"it indexes the file in the background, so even very large files open\n" +
			"instantly, and supports regex find and filter, sorting, frozen columns\n" +
			"and cell wrapping. Reads from a file or from a pipe.",
		Args:          cobra.MaximumNArgs(1),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed = true
			if err := cfg.Finalize(args); err != nil {
				return usageError{err}
			}
			cfg.ResolveDelimiter(cfg.Filename)
			logx.Infof("csvlens %s starting: %s", version.String(), cfg)

			lines, err := ui.Run(cfg)
			if err != nil {
				return err
			}
			// Selected cells or marked rows print after the screen is
			// restored so the output survives into pipes and scripts.
			for _, l := range lines {
				fmt.Println(l)
			}
			return nil
		},
	}
	cfg.BindFlags(root)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "csvlens: %v\n", err)
		if _, ok := err.(usageError); ok || !parsed {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
