package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

type failConfig struct {
	rate float64
	code int
}

// withMiddleware logs every request and injects latency and random failures
// in front of next.
func withMiddleware(log hclog.Logger, delay time.Duration, failCfg failConfig, rng *rand.Rand, next http.Handler) http.Handler {
	var mu sync.Mutex
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("request", "method", r.Method, "path", r.URL.Path)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failCfg.rate > 0 {
			mu.Lock()
			roll := rng.Float64()
			mu.Unlock()
			if roll < failCfg.rate {
				status := failCfg.code
				if status == 0 {
					status = http.StatusInternalServerError
				}
				log.Info("failure injected", "method", r.Method, "path", r.URL.Path, "status", status)
				http.Error(w, "failure injected", status)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "rate":
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return failConfig{}, err
			}
			if rate < 0 || rate > 1 {
				return failConfig{}, fmt.Errorf("fail rate must be within [0, 1], got %v", rate)
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(value)
			if err != nil {
				return failConfig{}, err
			}
			if code < 400 || code > 599 {
				return failConfig{}, fmt.Errorf("fail code must be an HTTP error status, got %d", code)
			}
			cfg.code = code
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", key)
		}
	}
	return cfg, nil
}
