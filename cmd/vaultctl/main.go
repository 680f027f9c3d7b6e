package main

import (
	"CloudVault/config"
	"CloudVault/internal/repo"
	"CloudVault/internal/service"
	"CloudVault/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "vaultctl",
		Usage: "CloudVault administration",
		Commands: []*cli.Command{
			cleanupCmd(),
			createAdminCmd(),
		},
	}
}

func initStores() {
	config.InitConfig()
	repo.InitDB()
}

func cleanupCmd() *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Remove orphaned blobs, rows with missing blobs or empty folders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Aliases:  []string{"t"},
				Required: true,
				Usage:    "one of " + service.CleanupOrphanedFiles + ", " + service.CleanupMissingFiles + ", " + service.CleanupEmptyFolders,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			initStores()
			storage.Init()
			res, err := service.Cleanup(ctx, c.String("type"))
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(res, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
}

func createAdminCmd() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create the admin account if it does not exist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Sources: cli.EnvVars("ADMIN_USERNAME"),
				Name:    "username",
				Value:   "admin",
			},
			&cli.StringFlag{
				Sources:  cli.EnvVars("ADMIN_EMAIL"),
				Name:     "email",
				Required: true,
			},
			&cli.StringFlag{
				Sources:  cli.EnvVars("ADMIN_PASSWORD"),
				Name:     "password",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			initStores()
			config.AppConfig.AdminUsername = c.String("username")
			config.AppConfig.AdminEmail = c.String("email")
			config.AppConfig.AdminPassword = c.String("password")
			created, err := service.BootstrapAdmin(ctx)
			if err != nil {
				return err
			}
			if !created {
				fmt.Println("an account with that email already exists")
				return nil
			}
			fmt.Println("admin created:", c.String("username"))
			return nil
		},
	}
}
