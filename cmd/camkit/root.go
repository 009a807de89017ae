package main

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/camkit/camkit"
	"github.com/camkit/camkit/api"
	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/logging"
	"github.com/camkit/camkit/store"
)

var (
	cfgFile    string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "camkit",
	Short: "Interact with the camera management service",
	Long: `List devices and structures, watch the event feed and export event
media cached by the feed watcher.

Credentials are read from flags, environment variables prefixed with CAMKIT_
(a .env file is honored) or the config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.camkit.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	rootCmd.PersistentFlags().String("project", "", "project id")
	rootCmd.PersistentFlags().String("token", "", "API bearer token")
	rootCmd.PersistentFlags().String("base-url", api.DefaultBaseURL, "management API base URL")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() error {
	// A .env file beside the binary is convenient during development.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".camkit")
	}
	viper.SetEnvPrefix("CAMKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return err
		}
	}
	return nil
}

func newLogger() logging.Logger {
	return logging.NewSlogLogger(logging.ParseLogLevel(viper.GetString("log_level")), "text", false)
}

// newKit builds the façade from the resolved configuration. mediaDB, when
// non-empty, backs the media cache with a SQLite store the export command
// can read later.
func newKit(feedURL, mediaDB string, prefetch bool) (*camkit.CamKit, func(), error) {
	var mediaStore core.MediaStore = store.NewInMemoryStore()
	cleanup := func() {}
	if mediaDB != "" {
		s, err := store.NewSQLiteStore(mediaDB)
		if err != nil {
			return nil, nil, err
		}
		mediaStore = s
		cleanup = func() { _ = s.Close() }
	}

	kit := camkit.New(viper.GetString("project"),
		api.StaticTokenProvider(viper.GetString("token")),
		func(o *camkit.Options) {
			o.BaseURL = viper.GetString("base_url")
			o.FeedURL = feedURL
			o.Store = mediaStore
			o.Prefetch = prefetch
			o.Logger = newLogger()
		})
	return kit, cleanup, nil
}
