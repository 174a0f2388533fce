package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/ponyo877/salachat/linerpc"
	"github.com/ponyo877/salachat/server/adaptor"
	"github.com/ponyo877/salachat/server/domain"
	"github.com/ponyo877/salachat/server/repository"
	"github.com/ponyo877/salachat/server/usecase"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

const (
	listenAddressKey   = "listen_address"
	grpcAddressKey     = "grpc_address"
	historyBackendKey  = "history.backend"
	historyDirKey      = "history.dir"
	sqlitePathKey      = "history.sqlite_path"
	listHistoryKey     = "rooms.list_history"
	outboxSizeKey      = "session.outbox_size"
	logLevelKey        = "log.level"
	logPrettyKey       = "log.pretty"
	shutdownTimeoutKey = "shutdown_timeout"
)

var cfgFile string

type historyStore interface {
	usecase.HistoryRepository
	io.Closer
}

var rootCmd = &cobra.Command{
	Use:   "salachat-server",
	Short: "Room-oriented line chat server.",
	Long: `Starts the chat server. Clients connect over plain TCP (one line per
message) or over the gRPC LineService, pick a display name and use
/join, /sair, /salas, /usuarios, /pesquisar and @user to talk.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogger(cfg)
		return run(cfg)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := domain.NewConfig()
	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.salachat-server.yaml)")
	flags.String("listen", defaults.ListenAddress, "TCP address for line clients")
	flags.String("grpc", defaults.GRPCAddress, "gRPC address for LineService clients (empty disables)")
	flags.String("history-backend", string(defaults.HistoryBackend), "history storage: file or sqlite")
	flags.String("history-dir", defaults.HistoryDir, "directory holding <room>.txt logs")
	flags.String("sqlite-path", defaults.SQLitePath, "database file for the sqlite backend")
	flags.Bool("list-history-rooms", false, "also list rooms that only have history in /salas")
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")

	viper.BindPFlag(listenAddressKey, flags.Lookup("listen"))
	viper.BindPFlag(grpcAddressKey, flags.Lookup("grpc"))
	viper.BindPFlag(historyBackendKey, flags.Lookup("history-backend"))
	viper.BindPFlag(historyDirKey, flags.Lookup("history-dir"))
	viper.BindPFlag(sqlitePathKey, flags.Lookup("sqlite-path"))
	viper.BindPFlag(listHistoryKey, flags.Lookup("list-history-rooms"))
	viper.BindPFlag(logLevelKey, flags.Lookup("log-level"))

	viper.SetDefault(outboxSizeKey, defaults.OutboxSize)
	viper.SetDefault(logPrettyKey, defaults.LogPretty)
	viper.SetDefault(shutdownTimeoutKey, defaults.ShutdownTimeout)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".salachat-server")
	}

	viper.SetEnvPrefix("salachat")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

func loadConfig() domain.Config {
	return domain.Config{
		ListenAddress:    viper.GetString(listenAddressKey),
		GRPCAddress:      viper.GetString(grpcAddressKey),
		HistoryBackend:   domain.HistoryBackend(viper.GetString(historyBackendKey)),
		HistoryDir:       viper.GetString(historyDirKey),
		SQLitePath:       viper.GetString(sqlitePathKey),
		ListHistoryRooms: viper.GetBool(listHistoryKey),
		OutboxSize:       viper.GetInt(outboxSizeKey),
		LogLevel:         viper.GetString(logLevelKey),
		LogPretty:        viper.GetBool(logPrettyKey),
		ShutdownTimeout:  viper.GetDuration(shutdownTimeoutKey),
	}.Sanitize()
}

func setupLogger(cfg domain.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}
}

func openHistory(cfg domain.Config) (historyStore, error) {
	switch cfg.HistoryBackend {
	case domain.HistoryBackendSQLite:
		log.Info().Str("module", "history.sqlite").Str("path", cfg.SQLitePath).Msg("opening history database")
		return repository.OpenSQLiteHistory(cfg.SQLitePath)
	default:
		log.Info().Str("module", "history.file").Str("dir", cfg.HistoryDir).Msg("using history directory")
		return repository.NewFileHistory(cfg.HistoryDir)
	}
}

func run(cfg domain.Config) error {
	history, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	registry := domain.NewRoomRegistry()
	directory := domain.NewUserDirectory(registry)
	uc := usecase.NewSessionUsecase(registry, directory, history,
		usecase.WithHistoryRoomListing(cfg.ListHistoryRooms))

	tcpLis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		history.Close()
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	tcp := adaptor.NewTCPAdaptor(uc, cfg.OutboxSize)
	g.Go(func() error {
		return tcp.Serve(gctx, tcpLis)
	})

	var (
		grpcServer  *grpc.Server
		grpcAdaptor *adaptor.GRPCAdaptor
	)
	if cfg.GRPCAddress != "" {
		grpcLis, err := net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			cancel()
			g.Wait()
			history.Close()
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddress, err)
		}
		grpcServer = grpc.NewServer()
		grpcAdaptor = adaptor.NewGRPCAdaptor(uc, cfg.OutboxSize)
		linerpc.RegisterLineServiceServer(grpcServer, grpcAdaptor)
		reflection.Register(grpcServer)
		g.Go(func() error {
			log.Info().Str("module", "transport.grpc").Str("addr", grpcLis.Addr().String()).Msg("listening")
			return grpcServer.Serve(grpcLis)
		})
	}

	failed := make(chan error, 1)
	go func() {
		if err := g.Wait(); err != nil {
			failed <- err
		}
	}()

	// drain ends every session through its Closed transition before the
	// history store goes away.
	drain := func(ctx context.Context) error {
		cancel()
		if grpcServer != nil {
			if err := grpcAdaptor.Shutdown(ctx); err != nil {
				log.Warn().Err(err).Str("module", "transport.grpc").Msg("sessions still open at shutdown deadline")
			}
			stopGRPC(ctx, grpcServer)
		}
		// TCP sessions are drained once Serve returns.
		if err := g.Wait(); err != nil {
			log.Error().Err(err).Msg("listener error during shutdown")
		}
		return history.Close()
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"salachat": func(ctx context.Context) error {
				log.Info().Msg("shutting down")
				return drain(ctx)
			},
		},
	)

	select {
	case err := <-failed:
		ctx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer stop()
		drain(ctx)
		return fmt.Errorf("listener stopped: %w", err)
	case code := <-wait:
		log.Info().Int("code", code).Msg("server exited")
		if code != 0 {
			return fmt.Errorf("shutdown finished with code %d", code)
		}
		return nil
	}
}

// stopGRPC lets streams end on their own until ctx expires, then forces them.
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
