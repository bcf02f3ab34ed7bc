// Command synapse-sandbox serves the in-memory repository and authentication
// services over HTTP so that the CLI and SDK can run without a deployment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/devseed"
	"github.com/Sage-Bionetworks/synapse_sdk_go/pkg/synapse/mock"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("synapse-sandbox", flag.ContinueOnError)
	addr := fs.String("addr", ":8787", "listen address")
	seed := fs.String("seed", "", "path to a JSON seed file with users and entities")
	latency := fs.Duration("latency", 0, "artificial latency to inject per request")
	fail := fs.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	polls := fs.Int("daemon-polls", mock.DefaultDaemonPolls, "status polls a daemon reports STARTED before finishing")
	level := fs.String("log-level", "info", "log level: trace, debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "synapse-sandbox",
		Level: hclog.LevelFromString(*level),
	})

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		log.Error("parse fail flag", "error", err)
		return 1
	}

	m := mock.New(mock.WithLogger(log.Named("mock")), mock.WithDaemonPolls(*polls))
	if *seed != "" {
		s, err := devseed.LoadSeed(*seed)
		if err != nil {
			log.Error("load seed", "path", *seed, "error", err)
			return 1
		}
		if err := m.Seed(s); err != nil {
			log.Error("apply seed", "path", *seed, "error", err)
			return 1
		}
		log.Info("seed applied", "users", len(s.Users), "entities", len(s.Entities))
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           withMiddleware(log, *latency, failCfg, rand.New(rand.NewSource(time.Now().UnixNano())), m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("listening", "addr", *addr)
	fmt.Println()
	for _, line := range exports(*addr, m) {
		fmt.Println(line)
	}
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "error", err)
			return 1
		}
	}
	return 0
}

// exports renders the environment a client needs to reach the sandbox.
func exports(addr string, m *mock.Server) []string {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return []string{
		"export SYNAPSE_RUNTIME_MODE=http",
		fmt.Sprintf("export SYNAPSE_REPO_ENDPOINT=http://%s%s", host, m.RepoPrefix()),
		fmt.Sprintf("export SYNAPSE_AUTH_ENDPOINT=http://%s%s", host, m.AuthPrefix()),
	}
}
