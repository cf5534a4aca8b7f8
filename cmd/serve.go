package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vero-group/fleet-cli/internal/fetcher"
	"github.com/vero-group/fleet-cli/internal/model"
	"github.com/vero-group/fleet-cli/internal/pipeline"
	"github.com/vero-group/fleet-cli/pkg/baubuddy"
)

var servePort int

// vehiclesResponse is the JSON body for both success and failure replies;
// failures carry an empty vehicle list.
type vehiclesResponse struct {
	Message  string          `json:"message"`
	Vehicles []model.Vehicle `json:"vehicles"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vehicle upload and reconciliation server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		source := baubuddy.NewClient(baubuddy.Credentials{
			Username: cfg.Baubuddy.Username,
			Password: cfg.Baubuddy.Password,
			AuthKey:  cfg.Baubuddy.AuthKey,
		},
			baubuddy.WithBaseURL(cfg.Baubuddy.BaseURL),
			baubuddy.WithLabelRate(cfg.Baubuddy.LabelRate),
		)

		pipe := pipeline.New(source, fetcher.CSVOptions{
			Delimiter: cfg.CSV.DelimiterRune(),
			Charset:   cfg.CSV.Charset,
		}, model.FillMissing)

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"name":    appName,
				"version": appVersion,
			})
		})

		r.Post("/vehicles", func(w http.ResponseWriter, req *http.Request) {
			handleVehicles(w, req, pipe)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// handleVehicles runs the reconciliation pipeline on an uploaded CSV file.
func handleVehicles(w http.ResponseWriter, req *http.Request, pipe *pipeline.Pipeline) {
	log := zap.L().With(zap.String("run_id", uuid.NewString()))
	log.Info("vehicles request received")

	file, _, err := req.FormFile("file")
	if err != nil {
		log.Error("no CSV file provided", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, vehiclesResponse{Message: "No CSV file provided", Vehicles: []model.Vehicle{}})
		return
	}
	defer file.Close()

	vehicles, err := pipe.Process(req.Context(), file)
	if err != nil {
		log.Error("vehicles processing failed", zap.Error(err))
		writeJSON(w, statusFor(err), vehiclesResponse{Message: eris.Cause(err).Error(), Vehicles: []model.Vehicle{}})
		return
	}

	log.Info("vehicles processing completed", zap.Int("vehicles", len(vehicles)))
	writeJSON(w, http.StatusOK, vehiclesResponse{Message: "OK", Vehicles: vehicles})
}

// statusFor maps pipeline failures to HTTP statuses: client-side input
// problems are 400, upstream source trouble is 503.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fetcher.ErrMalformedInput),
		errors.Is(err, pipeline.ErrNoInput),
		errors.Is(err, pipeline.ErrNoSurvivors):
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
