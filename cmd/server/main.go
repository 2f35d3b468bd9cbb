package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/thereayou/codecollab/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	srv, err := NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("server init: %v", err)
	}

	go func() {
		if err := srv.Run(); err != nil {
			srv.Logger.Error("server run error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"server": func(ctx context.Context) error {
				srv.Logger.Info("graceful shutdown initiated")
				return srv.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	srv.Logger.Info("server exited", "code", exitCode)
	os.Exit(exitCode)
}
