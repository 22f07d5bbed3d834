package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/server"
	"github.com/xdg/sslexec/internal/term"
	"github.com/xdg/sslexec/internal/token"
	"github.com/xdg/sslexec/internal/version"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// shutdown signal before their openssl processes are killed.
const shutdownTimeout = 10 * time.Second

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve openssl runs over HTTP until interrupted (SIGINT/SIGTERM).

Endpoints:
  GET  /health       liveness, version and openssl binary
  GET  /v1/actions   expected stderr patterns
  POST /v1/exec      run an action

Requests and responses are JSON, or CBOR with Content-Type application/cbor.
When server.token_file is set, /v1 requests must carry the token in an
"Authorization: Bearer" or X-Sslexec-Token header (see "sslexec token").

Logs go to the log file only.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationDaemon: "true"},
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "address to listen on (overrides server.listen)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadedConfig

	client, err := newClient("api")
	if err != nil {
		return err
	}

	srv := server.New(client)
	srv.Addr = listenAddr(cfg.Server.Listen, serveListen)
	srv.MaxConnections = cfg.Server.MaxConnections
	srv.MaxBodyBytes = cfg.Server.MaxBodyBytes
	srv.Version = version.String()

	if cfg.Server.TokenFile != "" {
		tok, err := token.ReadFile(cfg.Server.TokenFile)
		if err != nil {
			return fmt.Errorf("server token: %w", err)
		}
		srv.Token = tok
	} else if !isLoopback(srv.Addr) {
		term.Warn("serving on %s without a token; any host that can connect can run openssl", srv.Addr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(); err != nil {
		return err
	}
	clog.Info("serve: listening on %s (binary %s, auth %t)", srv.ListenAddr(), client.Binary(), srv.Token != "")
	term.Printf("Listening on %s\n", srv.ListenAddr())

	<-ctx.Done()
	clog.Info("serve: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// listenAddr picks the --listen flag over the configured address and falls
// back to the server default.
func listenAddr(configured, flag string) string {
	switch {
	case flag != "":
		return flag
	case configured != "":
		return configured
	}
	return server.DefaultAddr
}

// isLoopback reports whether addr only accepts local connections.
func isLoopback(addr string) bool {
	if strings.HasPrefix(addr, "unix:") {
		return true
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
