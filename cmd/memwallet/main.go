package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/memwallet/memwallet/internal/profile"
	"github.com/memwallet/memwallet/internal/version"
	"github.com/memwallet/memwallet/server"
	"github.com/memwallet/memwallet/server/auth"
	"github.com/memwallet/memwallet/store"
	"github.com/memwallet/memwallet/store/db"
)

const greetingBanner = `
                                              _  _        _
 _ __ ___    ___  _ __ ___  __      __  __ _ | || |  ___ | |_
| '_ ` + "`" + ` _ \  / _ \| '_ ` + "`" + ` _ \ \ \ /\ / / / _` + "`" + ` || || | / _ \| __|
| | | | | ||  __/| | | | | | \ V  V / | (_| || || ||  __/| |_
|_| |_| |_| \___||_| |_| |_|  \_/\_/   \__,_||_||_| \___| \__|
`

var rootCmd = &cobra.Command{
	Use:   "memwallet",
	Short: "A personal memory wallet with context pack generation",
	Run:   runServer,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the memory wallet daemon",
	Run:   runServer,
}

func runServer(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(context.Background())
	instanceProfile := loadProfile()
	if err := instanceProfile.Validate(); err != nil {
		cancel()
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return
	}
	if instanceProfile.SecretKey == "" {
		key, err := store.LoadOrCreateKey(instanceProfile.Data)
		if err != nil {
			cancel()
			slog.Error("failed to load secret key", slog.String("error", err.Error()))
			return
		}
		instanceProfile.SecretKey = key
	}

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		cancel()
		slog.Error("failed to create db driver", slog.String("error", err.Error()))
		return
	}

	storeInstance, err := store.New(dbDriver, instanceProfile)
	if err != nil {
		cancel()
		slog.Error("failed to create store", slog.String("error", err.Error()))
		return
	}
	if err := storeInstance.Migrate(ctx); err != nil {
		cancel()
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		return
	}

	s, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		cancel()
		slog.Error("failed to create server", slog.String("error", err.Error()))
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-c
		slog.Info("signal received", slog.String("signal", sig.String()))
		s.Shutdown(ctx)
		cancel()
	}()

	printGreetings(instanceProfile)

	if err := s.Start(ctx); err != nil {
		if err != http.ErrServerClosed {
			slog.Error("failed to start server", slog.String("error", err.Error()))
			cancel()
		}
	}

	<-ctx.Done()
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API access token for the given persona",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile := loadProfile()
		if instanceProfile.JWTSecret == "" {
			return fmt.Errorf("no jwt secret configured, set MEMWALLET_JWT_SECRET")
		}

		persona, _ := cmd.Flags().GetString("persona")
		expires, _ := cmd.Flags().GetDuration("expires")
		var expiresAt time.Time
		if expires > 0 {
			expiresAt = time.Now().Add(expires)
		}

		token, err := auth.GenerateAccessToken(persona, expiresAt, []byte(instanceProfile.JWTSecret))
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		fmt.Println(token)
		return nil
	},
}

// loadProfile builds the server profile from flags and environment,
// with flags taking precedence.
func loadProfile() *profile.Profile {
	instanceProfile := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Persona: viper.GetString("persona"),
		Version: version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	return instanceProfile
}

func printGreetings(instanceProfile *profile.Profile) {
	fmt.Print(greetingBanner)
	fmt.Printf("Version %s has been started on port %d\n", instanceProfile.Version, instanceProfile.Port)
	fmt.Printf("Mode %s, driver %s, persona %s\n", instanceProfile.Mode, instanceProfile.Driver, instanceProfile.Persona)
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "127.0.0.1")
	viper.SetDefault("port", 8787)
	viper.SetDefault("persona", "Personal")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "127.0.0.1", "binding address of server")
	rootCmd.PersistentFlags().Int("port", 8787, "binding port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("persona", "Personal", "default persona for requests that name none")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("memwallet")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	tokenCmd.Flags().String("persona", "Personal", "persona the token grants access to")
	tokenCmd.Flags().Duration("expires", 0, "token lifetime, zero for a non-expiring token")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
