package command

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/weavenet/weaver/src/weaver"
)

// NewRunCmd returns the command that starts the node.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the weaver node",
		RunE:  runWeaver,
	}

	cmd.Flags().Uint16P("port", "p", conf.Port, "HTTP listening port")
	cmd.Flags().StringSlice("peers", conf.Peers, "Initial remote peers (a.b.c.d:port)")
	cmd.Flags().Int("max-peers", conf.MaxPeers, "Maximum number of remote peers to maintain")
	cmd.Flags().Int("cache-size", conf.CacheSize, "Number of processed ids to remember")
	cmd.Flags().Duration("get-more-peers-time", conf.GetMorePeersTime, "Interval between peer-list refreshes")
	cmd.Flags().Duration("ignore-peers-time", conf.IgnorePeersTime, "How long an ignored peer stays suppressed")
	cmd.Flags().Duration("net-timeout", conf.NetTimeout, "Timeout of outbound calls to remote peers")
	cmd.Flags().String("firewall-dir", conf.FirewallDir, "Directory containing firewall signature files")
	cmd.Flags().Bool("no-service", conf.NoService, "Disable the local HTTP interface")
	cmd.Flags().Bool("allow-unsigned-txs", conf.AllowUnsignedTxs, "DEBUG ONLY: let unsigned transactions verify")
	cmd.Flags().Bool("strict-ledger", conf.StrictLedger, "Fail verification against an empty wallet ledger")
	cmd.Flags().String("moniker", conf.Moniker, "Friendly name of this node")

	return cmd
}

func runWeaver(cmd *cobra.Command, args []string) error {
	conf.Logger().WithFields(logrus.Fields{
		"datadir":             conf.DataDir,
		"port":                conf.Port,
		"peers":               conf.Peers,
		"max-peers":           conf.MaxPeers,
		"cache-size":          conf.CacheSize,
		"get-more-peers-time": conf.GetMorePeersTime,
		"ignore-peers-time":   conf.IgnorePeersTime,
		"net-timeout":         conf.NetTimeout,
		"firewall-dir":        conf.FirewallDir,
		"moniker":             conf.Moniker,
	}).Debug("RUN")

	engine := weaver.NewWeaver(conf)

	if err := engine.Init(); err != nil {
		return err
	}

	// Relay SIGINT to a clean shutdown
	sigintCh := make(chan os.Signal, 1)
	signal.Notify(sigintCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigintCh
		conf.Logger().Debug("Reacting to SIGINT - shutdown")
		engine.Shutdown()
		os.Exit(0)
	}()

	engine.Run()

	return nil
}
