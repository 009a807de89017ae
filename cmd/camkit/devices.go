package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/camkit/camkit/device"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List and inspect devices",
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all devices of the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		kit, cleanup, err := newKit("", "", false)
		if err != nil {
			return err
		}
		defer cleanup()

		devices, err := kit.Client().GetDevices(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(devices)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tROOM\tTRAITS")
		for _, d := range devices {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				d.Name, d.Type, roomOf(d), strings.Join(traitNames(d), ","))
		}
		return w.Flush()
	},
}

var devicesGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show a single device by its full resource name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kit, cleanup, err := newKit("", "", false)
		if err != nil {
			return err
		}
		defer cleanup()

		data, err := kit.Client().GetDevice(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(data)
	},
}

var structuresCmd = &cobra.Command{
	Use:   "structures",
	Short: "List all structures of the project",
	RunE: func(cmd *cobra.Command, args []string) error {
		kit, cleanup, err := newKit("", "", false)
		if err != nil {
			return err
		}
		defer cleanup()

		structures, err := kit.Client().GetStructures(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(structures)
		}
		for _, s := range structures {
			fmt.Println(s.Name)
		}
		return nil
	},
}

func roomOf(d device.Data) string {
	for _, rel := range d.ParentRelations {
		if rel.DisplayName != "" {
			return rel.DisplayName
		}
	}
	return ""
}

func traitNames(d device.Data) []string {
	names := make([]string, 0, len(d.Traits))
	for name := range d.Traits {
		names = append(names, strings.TrimPrefix(name, "cam.traits."))
	}
	sort.Strings(names)
	return names
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesGetCmd)
	rootCmd.AddCommand(structuresCmd)
}
