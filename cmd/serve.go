package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TheeNate/JobPilot/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the matching webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /api/match", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				JobType       string `json:"job_type"`
				Location      string `json:"location"`
				ScheduledDate string `json:"scheduled_date"`
				ScheduledTime string `json:"scheduled_time"`
				Subject       string `json:"subject"`
				Body          string `json:"body"`
				TechsNeeded   int    `json:"techs_needed"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if req.Subject == "" && req.JobType == "" {
				http.Error(w, `{"error":"job_type or subject is required"}`, http.StatusBadRequest)
				return
			}

			job := model.JobRequirement{
				JobType:       req.JobType,
				Location:      req.Location,
				ScheduledTime: req.ScheduledTime,
				Subject:       req.Subject,
				BodyPlain:     req.Body,
				TechsNeeded:   req.TechsNeeded,
			}
			if req.ScheduledDate != "" {
				d, err := time.Parse("2006-01-02", req.ScheduledDate)
				if err != nil {
					http.Error(w, `{"error":"scheduled_date must be YYYY-MM-DD"}`, http.StatusBadRequest)
					return
				}
				job.ScheduledDate = &d
			}

			candidates := env.Engine.CandidatesForJob(r.Context(), env.Directory, job)
			analysis := env.Engine.GenerateMatchAnalysis(r.Context(), job, candidates)

			if err := env.Store.SaveAnalysis(r.Context(), job, analysis); err != nil {
				zap.L().Warn("failed to persist analysis",
					zap.String("analysis_id", analysis.ID),
					zap.Error(err),
				)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(analysis)
		})

		mux.HandleFunc("GET /api/matches", func(w http.ResponseWriter, r *http.Request) {
			limit := 20
			if q := r.URL.Query().Get("limit"); q != "" {
				if n, err := strconv.Atoi(q); err == nil && n > 0 {
					limit = n
				}
			}

			records, err := env.Store.RecentAnalyses(r.Context(), limit)
			if err != nil {
				zap.L().Error("failed to list analyses", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(records)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
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

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
