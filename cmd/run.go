package cmd

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/encodeous/rayon/core"
	"github.com/encodeous/rayon/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [asn neighbor...]",
	Short: "Run the route processor",
	Long: `This will run the route processor on the current host. Neighbors may come
from the configuration file, or be given inline as an ASN followed by
port-neighborIP-relation descriptors, e.g.:

  rayon run 7 7833-192.0.0.2-cust 7834-172.0.0.2-peer`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var cfg state.Cfg
		if len(args) > 0 {
			parsed, err := parseInlineConfig(args)
			if err != nil {
				panic(err)
			}
			cfg = *parsed
		} else {
			file, err := os.ReadFile(state.ConfigPath)
			if err != nil {
				panic(err)
			}
			err = yaml.Unmarshal(file, &cfg)
			if err != nil {
				panic(err)
			}
		}

		err := state.ConfigValidator(&cfg)
		if err != nil {
			panic(err)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		err = core.Start(cfg, level)
		if err != nil {
			panic(err)
		}
	},
}

func parseInlineConfig(args []string) (*state.Cfg, error) {
	asn, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return nil, err
	}
	cfg := state.Cfg{ASN: uint32(asn)}
	for _, desc := range args[1:] {
		nc, err := state.ParseNeighbourDescriptor(desc)
		if err != nil {
			return nil, err
		}
		cfg.Neighbours = append(cfg.Neighbours, nc)
	}
	return &cfg, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().BoolVarP(&state.DBG_log_route_table, "ltable", "t", false, "Outputs route table to the console")
	runCmd.Flags().BoolVarP(&state.DBG_log_messages, "lmsg", "m", false, "Outputs control messages to the console")
}
