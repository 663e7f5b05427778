// Command usersctl administers the user directory from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/udla/user-directory/internal/app"
	"github.com/udla/user-directory/internal/infrastructure/db"
	"github.com/udla/user-directory/internal/infrastructure/db/redis"
	"github.com/udla/user-directory/internal/pkg/config"
	"github.com/udla/user-directory/pkg/logger"
)

var (
	cli = kingpin.New("usersctl", "User directory administration.")

	adminCmd         = cli.Command("admin", "Manage admin accounts.")
	adminCreate      = adminCmd.Command("create", "Create an admin account.")
	adminCreateName  = adminCreate.Arg("username", "Username of the new admin.").Required().String()
	adminCreateEmail = adminCreate.Arg("email", "Institutional email address.").Required().String()
	adminCreatePass  = adminCreate.Arg("password", "Password. Read from the terminal when omitted.").String()

	migrateCmd = cli.Command("migrate", "Create tables and indexes in the configured store.")

	flagsCmd    = cli.Command("flags", "Manage feature flags in Redis.")
	flagsSet    = flagsCmd.Command("set", "Set the default value of a flag for everyone.")
	flagsSetKey = flagsSet.Arg("key", "Flag key.").Required().String()
	flagsSetOn  = flagsSet.Arg("value", "true or false.").Required().Bool()
)

func main() {
	cli.HelpFlag.Short('h')
	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	kingpin.FatalIfError(err, "")

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "usersctl", Output: os.Stderr})

	if command == flagsSet.FullCommand() {
		kingpin.FatalIfError(setFlag(ctx, cfg, *flagsSetKey, *flagsSetOn), "flags set")
		fmt.Printf("flag %q set to %t\n", *flagsSetKey, *flagsSetOn)
		return
	}

	store, err := db.Open(ctx, cfg)
	kingpin.FatalIfError(err, "open store")
	defer func() { _ = store.Close(context.Background()) }()

	kingpin.FatalIfError(store.Migrate(ctx), "migrate")

	switch command {
	case migrateCmd.FullCommand():
		fmt.Printf("schema applied to %s store\n", store.Driver)

	case adminCreate.FullCommand():
		password := *adminCreatePass
		if password == "" {
			password, err = readPassword()
			kingpin.FatalIfError(err, "read password")
		}

		services, err := app.NewServices(cfg, store, log)
		kingpin.FatalIfError(err, "build services")

		user, err := services.Registration.Bootstrap(ctx, app.BootstrapInput(*adminCreateName, *adminCreateEmail, password))
		kingpin.FatalIfError(err, "create admin")
		fmt.Printf("admin %q created (id %s)\n", user.Username, user.ID)
	}
}

func setFlag(ctx context.Context, cfg *config.Config, key string, on bool) error {
	if cfg.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is not set")
	}
	client, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	return redis.NewFlagStore(client).Set(ctx, key, on)
}

// readPassword prompts twice on the controlling terminal without echo.
func readPassword() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", errors.New("no password given and stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Password (again): ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if strings.TrimSpace(string(first)) == "" {
		return "", errors.New("password must not be empty")
	}
	return string(first), nil
}
