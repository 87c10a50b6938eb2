package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/restage/restage"
)

const defaultListen = "127.0.0.1:8553"

// Serve runs the HTTP daemon until SIGINT or SIGTERM.
func (c *command) Serve(f ServeFlags) error {
	fc, err := c.loadConfig()
	if err != nil {
		return err
	}
	listen := f.Listen
	if listen == "" {
		listen = fc.Server.Listen
	}
	if listen == "" {
		listen = defaultListen
	}
	basePath := f.BasePath
	if basePath == "" {
		basePath = fc.Server.BasePath
	}

	eng, err := restage.NewFromConfig(fc)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if err := restage.RegisterMetricsDefault(); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	srv, err := restage.NewHTTPServer(listen, basePath, eng)
	if err != nil {
		return err
	}
	fmt.Printf("restage daemon listening on %s\n", listen)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
