package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Avaneesh16/Travel-Genie/plugin/ai/aitime"
	aischedule "github.com/Avaneesh16/Travel-Genie/plugin/ai/schedule"
	"github.com/Avaneesh16/Travel-Genie/server/timezone"
)

func newParseCmd() *cobra.Command {
	var (
		output string
		at     string
	)
	cmd := &cobra.Command{
		Use:   "parse <message>",
		Short: "Print the intent a message classifies to, without touching any calendar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := timezone.ParseTimezone(v.GetString("timezone"))
			if err != nil {
				return err
			}
			now := time.Now().In(loc)
			if at != "" {
				if now, err = time.ParseInLocation("2006-01-02T15:04", at, loc); err != nil {
					return fmt.Errorf("invalid --now %q, want 2006-01-02T15:04: %w", at, err)
				}
			}
			classifier := aischedule.NewIntentClassifier(aitime.NewParserWithClock(loc, func() time.Time { return now }))
			intent, matcher := classifier.ClassifyAt(strings.Join(args, " "), now)
			return writeIntent(cmd.OutOrStdout(), intent, matcher, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&at, "now", "", "reference time as 2006-01-02T15:04 in the configured zone")
	return cmd
}

type parseOutput struct {
	aischedule.Tagged `yaml:",inline"`
	Matcher           string `json:"matcher" yaml:"matcher"`
}

func writeIntent(w io.Writer, intent aischedule.Intent, matcher, format string) error {
	out := parseOutput{Tagged: aischedule.Tag(intent), Matcher: matcher}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
