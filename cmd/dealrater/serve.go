package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	dealgin "github.com/fwojciec/dealrater/gin"
)

// shutdownTimeout bounds how long in-flight requests may finish after
// an interrupt.
const shutdownTimeout = 10 * time.Second

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := &dealgin.Server{
		Rater:       deps.Rater,
		Reports:     deps.Reports,
		Cache:       deps.Cache,
		Registry:    deps.Registry,
		Logger:      deps.Logger,
		ScrapeLimit: c.ScrapeLimit,
		StaticDir:   c.StaticDir,
	}

	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	if err := server.Open(addr); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Listening on http://%s\n", server.Addr())

	<-deps.Ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Close(ctx)
}
