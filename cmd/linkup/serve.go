package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/linkup/internal/platform/tui"
	"github.com/vovakirdan/linkup/internal/platform/ws"
	"github.com/vovakirdan/linkup/internal/storage"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Link-Up over SSH and websockets",
	Long: `Start an SSH server for terminal play and a websocket server for
browser or scripted clients. Both share one leaderboard.

Pass an empty address to disable a server.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade/host_key

Websocket protocol (JSON, one object per message, endpoint /ws):
  -> {"type":"new_game","difficulty":"easy","player":"ann"}
  -> {"type":"select","row":1,"col":2}
  -> {"type":"hint"}  {"type":"end"}
  <- session_started, selection, match_animate, match_committed,
     reshuffle, win, ended, hint, error

Examples:
  linkup serve                      # SSH on :23234, websockets on :8080
  linkup serve --ssh :2222 --ws ""  # SSH only
  linkup serve --db ./linkup.db`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (empty to disable)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", ":8080", "Websocket server address (empty to disable)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagSSHAddr == "" && flagWSAddr == "" {
		return errors.New("nothing to serve: both --ssh and --ws are empty")
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening results database: %w", err)
	}
	defer store.Close()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "linkup",
		Level:           log.GetLevel(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var servers []func(context.Context) error

	if flagSSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = flagSSHAddr
		sshCfg.HostKeyPath = flagHostKey
		sshCfg.Store = store
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		sshCfg.TickRate = flagFPS
		sshCfg.Linkup = linkupCfg
		sshCfg.Logger = logger.WithPrefix("linkup-ssh")

		sshServer, err := tui.NewSSHServer(sshCfg)
		if err != nil {
			return fmt.Errorf("creating SSH server: %w", err)
		}
		servers = append(servers, sshServer.Serve)
		fmt.Printf("SSH: connect with ssh localhost -p %s\n", portOf(flagSSHAddr))
	}

	if flagWSAddr != "" {
		wsCfg := ws.DefaultServerConfig()
		wsCfg.Address = flagWSAddr
		wsCfg.Store = store
		wsCfg.Linkup = linkupCfg
		wsCfg.Logger = logger.WithPrefix("linkup-ws")

		servers = append(servers, ws.NewServer(wsCfg).Serve)
		fmt.Printf("Websocket: ws://localhost:%s/ws\n", portOf(flagWSAddr))
	}

	fmt.Println("Press Ctrl+C to stop")

	// The first server to fail stops the others
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(servers))
	for _, serve := range servers {
		go func() {
			err := serve(ctx)
			cancel()
			errCh <- err
		}()
	}

	var errs []error
	for range servers {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// portOf returns the port of a host:port address.
func portOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i+1:]
		}
	}
	return addr
}
