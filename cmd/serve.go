package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"reelist/internal/server"
)

// Serve runs the in-memory demo backend. Intended for local development and
// trying out the client without a real deployment.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	port := r.config.Server.Port

	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	if cmd.Int("port") != 0 {
		port = int(cmd.Int("port"))
	}

	store := server.NewDemoStore()
	router := server.NewDemoRouter(store, r.logger)

	addr := fmt.Sprintf("%s:%d", host, port)
	r.logger.Info("starting demo backend", "addr", addr)
	r.writePlain("Demo backend listening on http://%s\n", addr)
	r.writePlain("Point the client at it with api.origin = \"http://%s\"\n", addr)

	if err := http.ListenAndServe(addr, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
