// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/respond"
)

// checkTimeout bounds each readiness check.
const checkTimeout = 2 * time.Second

// DependencyCheck pings one dependency.
type DependencyCheck func(context.Context) error

// HealthDependencies holds the injectable dependency checkers for the /ready
// endpoint. Nil checks are skipped.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase DependencyCheck

	// CheckCache pings the Redis client.
	CheckCache DependencyCheck
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (liveness).
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// readiness handles GET /ready (readiness). Dependencies are checked
// concurrently; any failure answers 503.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	targets := []struct {
		name  string
		check DependencyCheck
	}{
		{"postgres", handler.dependencies.CheckDatabase},
		{"redis", handler.dependencies.CheckCache},
	}

	results := make([]checkResult, len(targets))
	group, groupContext := errgroup.WithContext(request.Context())

	for index, entry := range targets {
		if entry.check == nil {
			continue
		}
		group.Go(func() error {
			checkContext, cancel := context.WithTimeout(groupContext, checkTimeout)
			defer cancel()

			result := checkResult{Name: entry.name, IsOK: true}
			if err := entry.check(checkContext); err != nil {
				result.IsOK = false
				result.Error = err.Error()
				handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
					slog.String("dependency", entry.name),
					slog.Any("error", err),
				)
			}
			results[index] = result
			return nil
		})
	}
	_ = group.Wait()

	checks := make([]checkResult, 0, len(results))
	isSystemReady := true
	for _, result := range results {
		if result.Name == "" {
			continue
		}
		isSystemReady = isSystemReady && result.IsOK
		checks = append(checks, result)
	}

	body := map[string]any{
		constants.FieldStatus: "ready",
		constants.FieldChecks: checks,
	}

	if !isSystemReady {
		body[constants.FieldStatus] = "degraded"
		respond.Status(writer, http.StatusServiceUnavailable, body)
		return
	}

	respond.OK(writer, body)
}
