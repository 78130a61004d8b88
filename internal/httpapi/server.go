package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kernelprovider/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ProviderID() string
	KernelSpecs() []types.KernelSpecInfo
	LaunchKernel(ctx context.Context, req types.LaunchRequest) (types.KernelInfo, error)
	List() []types.KernelInfo
	Get(id string) (types.KernelInfo, error)
	Shutdown(ctx context.Context, id string) error
}

// NewMux builds the HTTP router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: orDefault(corsAllowedMethods, []string{"GET", "POST", "DELETE", "OPTIONS"}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type", "Authorization"}),
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/kernelspecs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.KernelSpecsResponse{ProviderID: svc.ProviderID(), KernelSpecs: svc.KernelSpecs()})
	})

	r.Get("/kernels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.KernelsResponse{Kernels: svc.List()})
	})

	r.Get("/kernels/{id}", func(w http.ResponseWriter, r *http.Request) {
		ki, err := svc.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ki)
	})

	r.Post("/kernels", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeServiceError(w, r, requestError{http.StatusUnsupportedMediaType, "Content-Type must be application/json"})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.LaunchRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				writeServiceError(w, r, requestError{http.StatusRequestEntityTooLarge, "request body too large"})
				return
			}
			writeServiceError(w, r, requestError{http.StatusBadRequest, "invalid JSON body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeServiceError(w, r, requestError{http.StatusBadRequest, err.Error()})
			return
		}
		ki, err := svc.LaunchKernel(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Location", "/kernels/"+ki.ID)
		writeJSON(w, http.StatusCreated, ki)
	})

	r.Delete("/kernels/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Shutdown(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
