// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package commands

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hbak/talkward/pkg/gateway"
)

// gatewayCmd represents the gateway command
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run a local frame gateway for development",
	Long: `Runs a local gateway speaking the client's frame protocol.

It accepts any login and serves empty member rosters; its purpose is to
give a talkward client something to connect to without the production
service.`,
	RunE: runGateway,
}

func init() {
	RootCmd.AddCommand(gatewayCmd)

	gatewayCmd.Flags().StringP("listen", "l", "127.0.0.1:5228", "host:port to listen on")
	viper.BindPFlag("gateway.listen", gatewayCmd.Flags().Lookup("listen"))
}

func runGateway(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = new(logrus.TextFormatter)
	if level, err := logrus.ParseLevel(viper.GetString("log.level")); err == nil {
		log.Level = level
	}

	g := gateway.New(gateway.Config{Log: log})
	return g.ListenAndServe(viper.GetString("gateway.listen"))
}
