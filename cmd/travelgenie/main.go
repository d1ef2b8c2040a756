package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Avaneesh16/Travel-Genie/internal/profile"
)

var (
	configFile string
	v          *viper.Viper

	rootCmd = &cobra.Command{
		Use:   "travelgenie",
		Short: "A calendar and trip planning assistant that understands plain English.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			v, err = loadViper(cmd)
			return err
		},
		SilenceUsage: true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to a YAML config file")
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver (sqlite or postgres)")
	flags.String("dsn", "", "database source name")
	flags.String("timezone", "America/Denver", "zone every date phrase is resolved in")
	flags.String("calendar-backend", profile.BackendStore, "calendar backend: store, google or ics")
	flags.String("ics-path", "", "ICS file used by the ics backend")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")

	rootCmd.AddCommand(newServeCmd(), newChatCmd(), newParseCmd())
}

// flagKeys maps flag names to profile keys.
var flagKeys = map[string]string{
	"mode":             "mode",
	"data":             "data",
	"driver":           "driver",
	"dsn":              "dsn",
	"timezone":         "timezone",
	"calendar-backend": "calendar_backend",
	"ics-path":         "ics_path",
	"log-level":        "log_level",
	"log-format":       "log_format",
	"addr":             "addr",
	"port":             "port",
}

func loadViper(cmd *cobra.Command) (*viper.Viper, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	vp, err := profile.NewViper(configFile)
	if err != nil {
		return nil, err
	}
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := vp.BindPFlag(key, f); err != nil {
			return nil, err
		}
	}
	return vp, nil
}

// loadProfile decodes and validates the profile and installs the logger.
func loadProfile() (*profile.Profile, error) {
	p, err := profile.FromViper(v)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(os.Stderr, p))
	return p, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
