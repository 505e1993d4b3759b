package commands

import (
	"github.com/pimukthee/dist-challenge/src/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RootCmd is the root command for rumor
var RootCmd = &cobra.Command{
	Use:              "rumor",
	Short:            "rumor gossip node",
	Long:             "rumor speaks line-delimited JSON on stdin/stdout and logs to stderr",
	TraverseChildren: true,
}

func init() {
	AddConfigFlags(RootCmd.PersistentFlags(), _config)
}

// AddConfigFlags adds the node configuration flags, defaulting to conf
func AddConfigFlags(f *pflag.FlagSet, conf *config.Config) {
	f.String("log", conf.LogLevel, "debug, info, warn, error, fatal, panic")
	f.String("log-file", conf.LogFile, "Also write JSON log entries to this file")
	f.String("config", "", "Optional config file (toml, json, yaml)")

	f.Duration("heartbeat", conf.HeartbeatTimeout, "Time between gossips")
	f.Int("gossip-limit", conf.GossipLimit, "Max number of values per gossip, 0 for no limit")

	f.StringP("service-listen", "s", conf.ServiceAddr, "Listen IP:Port for HTTP service, empty to disable")
}
