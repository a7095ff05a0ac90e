package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/faqbase/internal/auth"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin credentials",
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Replace the stored admin password",
	Long: `Set-password hashes a new admin password and stores it, replacing the
current one. The password is read from --password or, if that is empty, from
the first line of stdin.`,
	RunE: runSetPassword,
}

func init() {
	setPasswordCmd.Flags().String("password", "", "new admin password")
	adminCmd.AddCommand(setPasswordCmd)
	rootCmd.AddCommand(adminCmd)
}

func runSetPassword(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password given on --password or stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	ctx := context.Background()
	db, err := openStore(ctx, cfg.DatabaseURL, slog.Default())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := auth.New(db, cfg.JWTSecret, cfg.TokenTTL).SetPassword(ctx, password); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Admin password updated")
	return nil
}
