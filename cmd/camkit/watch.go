package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/camkit/camkit/core"
)

var (
	watchDB       string
	watchPrefetch bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the event feed and print device events",
	Long: `Connects to the event feed and prints every event as it arrives.
With --prefetch the associated media is downloaded immediately and, when
--db is set, persisted so it can be exported later with 'camkit media get'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		feedURL := viper.GetString("feed_url")
		if feedURL == "" {
			return fmt.Errorf("feed URL not configured (--feed-url or CAMKIT_FEED_URL)")
		}

		kit, cleanup, err := newKit(feedURL, watchDB, watchPrefetch)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if err := kit.Start(ctx); err != nil {
			return err
		}
		defer kit.Stop()

		for name, d := range kit.Devices().Devices() {
			d.AddEventCallback(func(msg *core.EventMessage) {
				for _, rec := range msg.Events {
					fmt.Printf("%s  %s  %s  session=%s\n",
						rec.Timestamp.Format(time.RFC3339), name, rec.Type, rec.SessionID)
				}
			})
		}
		fmt.Printf("watching %d devices, ctrl-c to stop\n", len(kit.Devices().Devices()))

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-ctx.Done():
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("feed-url", "", "websocket event feed URL")
	watchCmd.Flags().StringVar(&watchDB, "db", "", "persist fetched media to this SQLite file")
	watchCmd.Flags().BoolVar(&watchPrefetch, "prefetch", true, "download media as events arrive")
	_ = viper.BindPFlag("feed_url", watchCmd.Flags().Lookup("feed-url"))
}
