package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/store"
)

var (
	mediaDB     string
	mediaDevice string
	mediaOut    string
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Export event media cached by the watch command",
}

var mediaGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Write the media of an event session to a file",
	Example: `  camkit media get CjY5Y3VK... \
    --device enterprises/proj/devices/cam --db camkit.db --output event.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.NewSQLiteStore(mediaDB)
		if err != nil {
			return err
		}
		defer s.Close()

		key := core.DefaultStoreKey(mediaDevice, core.EventRecord{SessionID: args[0]})
		data, err := s.Load(key)
		if err != nil {
			return fmt.Errorf("load media for session %q: %w", args[0], err)
		}
		if err := os.WriteFile(mediaOut, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes to %s\n", len(data), mediaOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mediaCmd)
	mediaCmd.AddCommand(mediaGetCmd)

	mediaGetCmd.Flags().StringVar(&mediaDB, "db", "camkit.db", "SQLite media store path")
	mediaGetCmd.Flags().StringVar(&mediaDevice, "device", "", "full device resource name")
	mediaGetCmd.Flags().StringVar(&mediaOut, "output", "media.jpg", "output filename")
	_ = mediaGetCmd.MarkFlagRequired("device")
}
