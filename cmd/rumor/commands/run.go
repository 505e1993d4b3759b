package commands

import (
	"io"
	"os"

	"github.com/pimukthee/dist-challenge/src/broadcast"
	"github.com/pimukthee/dist-challenge/src/config"
	"github.com/pimukthee/dist-challenge/src/echo"
	"github.com/pimukthee/dist-challenge/src/net"
	"github.com/pimukthee/dist-challenge/src/node"
	"github.com/pimukthee/dist-challenge/src/service"
	"github.com/pimukthee/dist-challenge/src/telemetry"
	"github.com/pimukthee/dist-challenge/src/unique"
	"github.com/pimukthee/dist-challenge/src/version"
	"github.com/spf13/cobra"
)

type factoryBuilder func(conf *config.Config) node.HandlerFactory

// NewBroadcastCmd returns the command that runs a broadcast node
func NewBroadcastCmd() *cobra.Command {
	return newNodeCmd("broadcast", "Run a gossip broadcast node", broadcast.NewHandlerFactory)
}

// NewEchoCmd returns the command that runs an echo node
func NewEchoCmd() *cobra.Command {
	return newNodeCmd("echo", "Run an echo node", echo.NewHandlerFactory)
}

// NewUniqueIDsCmd returns the command that runs a unique-id node
func NewUniqueIDsCmd() *cobra.Command {
	return newNodeCmd("unique-ids", "Run a unique-id node", unique.NewHandlerFactory)
}

func newNodeCmd(use, short string, builder factoryBuilder) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    cobra.NoArgs,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(_config, builder, os.Stdin, os.Stdout)
		},
	}
}

// runNode serves one node over r and w until r ends. A fatal error is logged
// and returned, which makes the process exit non-zero.
func runNode(conf *config.Config, builder factoryBuilder, r io.Reader, w io.Writer) error {
	telemetry.SetBuildInfo(version.Version)

	trans := net.NewStdioTransport(r, w, conf.Logger())

	n := node.NewNode(conf, trans, builder(conf))

	if conf.ServiceAddr != "" {
		go service.NewService(conf.ServiceAddr, n, conf.Logger()).Serve()
	}

	if err := n.Run(); err != nil {
		conf.Logger().WithError(err).Error("Node stopped")
		return err
	}

	return nil
}
