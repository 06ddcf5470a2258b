package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/tmpl/pkg/client"
)

// Mode selects how the MCP server is exposed.
type Mode string

const (
	ModeStdio Mode = "stdio"
	ModeHTTP  Mode = "http"
)

// ParseMode accepts "stdio" or "http". The empty string is stdio.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeStdio:
		return ModeStdio, nil
	case ModeHTTP:
		return ModeHTTP, nil
	}
	return "", fmt.Errorf("unknown MCP mode %q, want stdio or http", s)
}

// Runner serves the template tools and resources to MCP clients.
type Runner struct {
	Transport client.Transport
	Logger    *slog.Logger
	Version   string

	Mode Mode
	// Addr and Path are used in ModeHTTP. Serving TLS needs both CertFile
	// and KeyFile.
	Addr     string
	Path     string
	CertFile string
	KeyFile  string
	// Listening, when set, is called with the bound address before the HTTP
	// server accepts connections.
	Listening func(net.Addr)
}

// Do executes the runner until ctx is done or the transport closes.
func (r Runner) Do(ctx context.Context) error {
	if r.Transport == nil {
		return ErrNoTransport
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := r.newServer()

	switch r.Mode {
	case "", ModeStdio:
		logger.Debug("serving MCP over stdio")
		return server.ServeStdio(srv)
	case ModeHTTP:
		return r.serveHTTP(ctx, srv, logger)
	default:
		return fmt.Errorf("unknown MCP mode %q", r.Mode)
	}
}

func (r Runner) newServer() *server.MCPServer {
	version := r.Version
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		"tmpl MCP",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("List, read, create, update and delete message templates."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	svc := NewService(r.Transport)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer, logger *slog.Logger) error {
	if (r.CertFile == "") != (r.KeyFile == "") {
		return errors.New("mcp: tls needs both a certificate and a key")
	}
	addr := r.Addr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	path := "/" + strings.TrimPrefix(r.Path, "/")
	if path == "/" {
		path = "/mcp"
	}

	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", addr, err)
	}
	logger.Info("serving MCP over http", "addr", ln.Addr().String(), "path", path, "tls", r.CertFile != "")
	if r.Listening != nil {
		r.Listening(ln.Addr())
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if r.CertFile != "" {
		err = httpSrv.ServeTLS(ln, r.CertFile, r.KeyFile)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
