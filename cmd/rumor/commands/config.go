package commands

import (
	"strings"

	"github.com/pimukthee/dist-challenge/src/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var _config = config.NewDefaultConfig()

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd, viper.GetViper(), _config); err != nil {
		return err
	}

	_config.Logger().WithFields(logrus.Fields{
		"LogLevel":         _config.LogLevel,
		"LogFile":          _config.LogFile,
		"HeartbeatTimeout": _config.HeartbeatTimeout,
		"GossipLimit":      _config.GossipLimit,
		"ServiceAddr":      _config.ServiceAddr,
		"ConfigFile":       viper.ConfigFileUsed(),
	}).Debug("RUN")

	return nil
}

// Bind all flags and read the config into conf. Precedence is flags, then
// RUMOR_* environment variables, then the config file, then defaults.
func bindFlagsLoadViper(cmd *cobra.Command, v *viper.Viper, conf *config.Config) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	v.SetEnvPrefix("rumor")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	return v.Unmarshal(conf)
}
