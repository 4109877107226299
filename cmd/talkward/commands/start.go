// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/howeyc/gopass"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hbak/talkward/pkg/client"
	"github.com/hbak/talkward/pkg/talk"
)

var (
	log            *logrus.Logger
	promptForToken bool
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Connect to the gateway and run the sync engine",
	RunE:  runClient,
}

func init() {
	RootCmd.AddCommand(startCmd)

	startCmd.Flags().StringP("gateway", "g", "127.0.0.1:5228", "Gateway host:port to connect to")
	viper.BindPFlag("gateway.addr", startCmd.Flags().Lookup("gateway"))
	startCmd.Flags().Int64P("user-id", "u", 0, "Account user id")
	viper.BindPFlag("session.userId", startCmd.Flags().Lookup("user-id"))
	startCmd.Flags().BoolVarP(&promptForToken, "prompt-token", "p", false, "Prompt for the access token instead of reading it from the config")
	startCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", startCmd.Flags().Lookup("log-level"))

	viper.SetDefault("session.deviceUuid", "")
	viper.SetDefault("session.accessToken", "")
}

func runClient(cmd *cobra.Command, args []string) error {
	log = logrus.New()
	log.Out = os.Stderr
	log.Formatter = new(logrus.TextFormatter)
	if level, err := logrus.ParseLevel(viper.GetString("log.level")); err == nil {
		log.Level = level
	}

	creds := talk.Credentials{
		DeviceUUID:  viper.GetString("session.deviceUuid"),
		UserID:      viper.GetInt64("session.userId"),
		AccessToken: viper.GetString("session.accessToken"),
	}
	if creds.UserID == 0 {
		return fmt.Errorf("a user id is required (--user-id or session.userId)")
	}
	if creds.DeviceUUID == "" {
		creds.DeviceUUID = uuid.NewString()
		log.WithFields(logrus.Fields{
			"device_uuid": creds.DeviceUUID,
		}).Warn("No device UUID configured; generated one for this run")
	}
	if promptForToken || creds.AccessToken == "" {
		fmt.Printf("Access token: ")
		token, err := gopass.GetPasswd()
		if err != nil {
			return err
		}
		creds.AccessToken = string(token)
	}

	cli := client.New(log, viper.GetString("gateway.addr"), nil)
	engine := talk.New(talk.Config{
		Log:         log,
		SelfID:      creds.UserID,
		Credentials: creds,
		Transport:   cli,
		Users:       cli,
	})
	logEvents(engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting talkward")
	err := cli.Run(ctx, engine, creds)
	engine.Flush()
	if err == context.Canceled {
		return nil
	}
	return err
}

// logEvents subscribes the host-side listeners. This stands in for a
// real bot: every domain event the engine publishes ends up in the log.
func logEvents(engine *talk.Engine) {
	engine.On(talk.EventLogin, func(args ...interface{}) {
		log.Info("Session established")
	})
	engine.On(talk.EventMessage, func(args ...interface{}) {
		chat := args[0].(*talk.Chat)
		log.WithFields(logrus.Fields{
			"channel_id": chat.Channel.ID(),
			"sender_id":  chat.SenderID,
			"log_id":     chat.LogID,
		}).Info("Message")
	})
	engine.On(talk.EventFeed, func(args ...interface{}) {
		chat := args[0].(*talk.Chat)
		fd, err := chat.Feed()
		if err != nil {
			return
		}
		log.WithFields(logrus.Fields{
			"channel_id": chat.Channel.ID(),
			"feed_type":  fd.Type,
		}).Info("Feed")
	})
	engine.On(talk.EventMessageRead, func(args ...interface{}) {
		ch := args[0].(*talk.Channel)
		reader := args[1].(*talk.User)
		log.WithFields(logrus.Fields{
			"channel_id": ch.ID(),
			"reader_id":  reader.ID,
			"watermark":  args[2],
		}).Debug("Message read")
	})
	engine.On(talk.EventMessageDeleted, func(args ...interface{}) {
		log.WithFields(logrus.Fields{
			"log_id": args[0],
			"hidden": args[1],
		}).Info("Message deleted")
	})
	engine.On(talk.EventJoinChannel, func(args ...interface{}) {
		ch := args[0].(*talk.Channel)
		log.WithFields(logrus.Fields{
			"channel_id": ch.ID(),
		}).Info("Joined channel")
	})
	engine.On(talk.EventLeftChannel, func(args ...interface{}) {
		ch := args[0].(*talk.Channel)
		log.WithFields(logrus.Fields{
			"channel_id": ch.ID(),
		}).Info("Left channel")
	})
	engine.On(talk.EventUserLeft, func(args ...interface{}) {
		user := args[0].(*talk.User)
		log.WithFields(logrus.Fields{
			"user_id": user.ID,
		}).Info("User left")
	})
	engine.On(talk.EventDisconnected, func(args ...interface{}) {
		log.WithFields(logrus.Fields{
			"reason": args[0],
		}).Warn("Disconnected")
	})
}
