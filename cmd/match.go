package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TheeNate/JobPilot/internal/model"
)

var (
	matchJobFile string
	matchJobType string
	matchLoc     string
	matchDate    string
	matchTime    string
	matchSubject string
	matchBody    string
	matchTechs   int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run one matching request and print the analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		job, err := loadJob()
		if err != nil {
			return err
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		candidates := env.Engine.CandidatesForJob(ctx, env.Directory, job)
		zap.L().Info("candidates resolved", zap.Int("count", len(candidates)))

		analysis := env.Engine.GenerateMatchAnalysis(ctx, job, candidates)

		if err := env.Store.SaveAnalysis(ctx, job, analysis); err != nil {
			zap.L().Warn("failed to persist analysis", zap.Error(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(analysis), "match: encode analysis")
	},
}

// loadJob builds the job requirement from --job-file when given, otherwise
// from the individual flags.
func loadJob() (model.JobRequirement, error) {
	var job model.JobRequirement

	if matchJobFile != "" {
		data, err := os.ReadFile(matchJobFile)
		if err != nil {
			return job, eris.Wrapf(err, "match: read job file %s", matchJobFile)
		}
		if err := json.Unmarshal(data, &job); err != nil {
			return job, eris.Wrap(err, "match: parse job file")
		}
		return job, nil
	}

	job = model.JobRequirement{
		JobType:       matchJobType,
		Location:      matchLoc,
		ScheduledTime: matchTime,
		Subject:       matchSubject,
		BodyPlain:     matchBody,
		TechsNeeded:   matchTechs,
	}
	if matchDate != "" {
		d, err := time.Parse("2006-01-02", matchDate)
		if err != nil {
			return job, eris.Wrapf(err, "match: parse date %s", matchDate)
		}
		job.ScheduledDate = &d
	}
	if job.Subject == "" && job.JobType == "" {
		return job, eris.New("match: provide --job-file or at least --type/--subject")
	}
	return job, nil
}

func init() {
	matchCmd.Flags().StringVar(&matchJobFile, "job-file", "", "path to a JSON job requirement")
	matchCmd.Flags().StringVar(&matchJobType, "type", "", "job type, e.g. 'UT Inspection'")
	matchCmd.Flags().StringVar(&matchLoc, "location", "", "job site location")
	matchCmd.Flags().StringVar(&matchDate, "date", "", "scheduled date (YYYY-MM-DD)")
	matchCmd.Flags().StringVar(&matchTime, "time", "", "scheduled time of day")
	matchCmd.Flags().StringVar(&matchSubject, "subject", "", "request subject line")
	matchCmd.Flags().StringVar(&matchBody, "body", "", "request body text")
	matchCmd.Flags().IntVar(&matchTechs, "techs", 1, "technicians needed")
	rootCmd.AddCommand(matchCmd)
}
