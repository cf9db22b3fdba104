package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/cloudkeeper/internal/auth"
	"github.com/dmitrijs2005/cloudkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/cli"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/config"
	"github.com/dmitrijs2005/cloudkeeper/internal/logging"
	"github.com/dmitrijs2005/cloudkeeper/internal/server"
	ufcli "github.com/urfave/cli/v3"
)

func main() {
	root := &ufcli.Command{
		Name:    "cloudkeeper",
		Usage:   "browse, search and upload files of a cloud storage account",
		Version: buildinfo.Version(),
		Flags:   config.Flags(),
		Action:  runClient,
		Commands: []*ufcli.Command{
			{
				Name:   "serve",
				Usage:  "run the backend as a standalone HTTP gateway and gRPC health service",
				Flags:  config.Flags(),
				Action: runServer,
			},
			{
				Name:   "token",
				Usage:  "print a session token for the configured account and owner",
				Flags:  config.Flags(),
				Action: printToken,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Run(ctx, os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func runClient(ctx context.Context, cmd *ufcli.Command) error {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func runServer(ctx context.Context, cmd *ufcli.Command) error {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	app, err := server.NewApp(ctx, server.Config{
		HTTPAddr:       cfg.ListenAddr,
		GRPCAddr:       cfg.GRPCAddr,
		RequireAuth:    true,
		HealthInterval: cfg.HealthInterval,
		Backend:        cfg.BackendConfig(),
	}, logging.New(cfg.LogLevel, os.Stderr))
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func printToken(ctx context.Context, cmd *ufcli.Command) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	s := auth.Session{AccountID: cfg.AccountID, OwnerID: cfg.OwnerID, OwnerName: cfg.OwnerName}
	token, err := auth.GenerateToken(s, []byte(cfg.Server.SecretKey), cfg.Server.SessionTTL)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}
