// Copyright (c) 2026 TaskForge. All rights reserved.

package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/taskforge/taskforge/internal/platform/config"
	"github.com/taskforge/taskforge/internal/platform/constants"
)

/*
CORS builds the cross-origin policy for the browser client.

In development every origin is allowed so the SPA dev server can talk to the
API without ceremony. In production only the first-party origins plus any
EXTRA_ORIGINS entries pass.

AllowCredentials must stay enabled: the refresh token travels in a cookie.
*/
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	allowedOrigins := []string{
		"https://taskforge.app",
		"https://*.taskforge.app",
	}
	allowedOrigins = append(allowedOrigins, cfg.ExtraOrigins...)

	options := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept", "Content-Type", "Content-Length",
			"Authorization", constants.HeaderXRequestID,
		},
		ExposedHeaders:   []string{"Content-Length", constants.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}

	if cfg.IsDevelopment() {
		options.AllowOriginFunc = func(request *http.Request, origin string) bool {
			return true
		}
	}

	return cors.Handler(options)
}
