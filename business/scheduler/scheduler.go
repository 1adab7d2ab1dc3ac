package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"profileHub/business/profile"
	"profileHub/domain"
	"profileHub/pkg/logger"
)

// JobLocker gives a job cluster-wide mutual exclusion. TryAcquire returning
// false means another instance runs this job right now.
type JobLocker interface {
	TryAcquire(ctx context.Context, key string, wait, lease time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type EventRepository interface {
	FindUnprocessed(ctx context.Context) ([]domain.UserEvent, error)
	MarkProcessed(ctx context.Context, ids []uint) error
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ProfileUpdater interface {
	All(ctx context.Context) ([]domain.UserProfile, error)
	RecalculateScore(ctx context.Context, userID uint) (*domain.UserProfile, error)
	UpdateLoyalty(ctx context.Context, userID uint, loyaltyScore float64) error
	UpdateInterests(ctx context.Context, userID uint, weights map[string]float64) error
}

type Analytics interface {
	InterestWeights(ctx context.Context, userID uint) (map[string]float64, error)
	RFM(ctx context.Context, userID uint) (domain.RFMResult, error)
	ChurnRisk(ctx context.Context, userID uint) (domain.ChurnRisk, error)
}

type Segments interface {
	RefreshDynamicSegments(ctx context.Context) error
}

type Tags interface {
	DeactivateExpired(ctx context.Context) (int, error)
}

const eventRetentionDays = 180

// Scheduler wires the periodic profile maintenance jobs onto cron triggers.
// Every job runs under a redis lease so only one instance of the service
// executes it at a time; losing the race is a quiet skip, not an error.
type Scheduler struct {
	cron      *cron.Cron
	locker    JobLocker
	eventRepo EventRepository
	profiles  ProfileUpdater
	analytics Analytics
	segments  Segments
	tags      Tags
}

func NewScheduler(
	locker JobLocker,
	eventRepo EventRepository,
	profiles ProfileUpdater,
	analytics Analytics,
	segments Segments,
	tags Tags,
) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		locker:    locker,
		eventRepo: eventRepo,
		profiles:  profiles,
		analytics: analytics,
		segments:  segments,
		tags:      tags,
	}
}

// Start registers the job table and launches the cron loop.
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec  string
		name  string
		lease time.Duration
		run   func(ctx context.Context) error
	}{
		{"0 * * * *", "update-from-events", time.Hour, s.UpdateFromEvents},
		{"0 2 * * *", "recalculate-all", 2 * time.Hour, s.RecalculateAll},
		{"0 8 * * *", "churn-identification", time.Hour, s.IdentifyChurnRisk},
		{"0 9 * * 1", "weekly-report", 30 * time.Minute, s.WeeklyReport},
		{"0 3 1 * *", "event-cleanup", time.Hour, s.CleanupOldEvents},
		{"0 4 * * *", "tag-expiry", 30 * time.Minute, s.ExpireTags},
	}

	for _, j := range jobs {
		j := j
		if _, err := s.cron.AddFunc(j.spec, func() {
			s.runLocked(j.name, j.lease, j.run)
		}); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
	}

	s.cron.Start()
	logger.Info("scheduler started", "jobs", len(jobs))
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("scheduler stopped")
}

// runLocked runs a job under its distributed lock. Failing to get the lock
// means a peer instance is already on it, so the run is skipped quietly.
func (s *Scheduler) runLocked(name string, lease time.Duration, run func(ctx context.Context) error) {
	ctx := context.Background()

	acquired, err := s.locker.TryAcquire(ctx, name, 0, lease)
	if err != nil {
		logger.Error("job lock error", "job", name, "error", err)
		JobRunsTotal.WithLabelValues(name, "error").Inc()
		return
	}
	if !acquired {
		logger.Debug("job lock held elsewhere, skipping", "job", name)
		JobRunsTotal.WithLabelValues(name, "skipped").Inc()
		return
	}
	defer func() {
		if err := s.locker.Release(ctx, name); err != nil {
			logger.Warn("job lock release failed", "job", name, "error", err)
		}
	}()

	start := time.Now()
	if err := run(ctx); err != nil {
		logger.Error("job failed", "job", name, "error", err)
		JobRunsTotal.WithLabelValues(name, "error").Inc()
		return
	}

	JobRunsTotal.WithLabelValues(name, "ok").Inc()
	logger.Info("job finished", "job", name, "duration", time.Since(start).String())
}

// UpdateFromEvents drains the unprocessed event pool: per user it refreshes
// interest weights, backfills loyalty from the RFM score and rescores the
// profile. Users without a profile are skipped and their events left for the
// initializer to catch up. One user's failure never aborts the batch.
func (s *Scheduler) UpdateFromEvents(ctx context.Context) error {
	events, err := s.eventRepo.FindUnprocessed(ctx)
	if err != nil {
		return fmt.Errorf("load unprocessed events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	byUser := make(map[uint][]uint)
	for _, e := range events {
		byUser[e.UserID] = append(byUser[e.UserID], e.ID)
	}

	var processedIDs []uint
	processed, skipped := 0, 0

	for userID, eventIDs := range byUser {
		if err := s.updateUserFromEvents(ctx, userID); err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				logger.Debug("no profile yet, leaving events", "user_id", userID)
			} else {
				logger.Error("profile update failed", "user_id", userID, "error", err)
			}
			skipped++
			BatchUsersSkipped.Inc()
			continue
		}

		processedIDs = append(processedIDs, eventIDs...)
		processed++
		BatchUsersProcessed.Inc()
	}

	if len(processedIDs) > 0 {
		if err := s.eventRepo.MarkProcessed(ctx, processedIDs); err != nil {
			return fmt.Errorf("mark events processed: %w", err)
		}
	}

	logger.Info("event batch complete",
		"events", len(events), "users_processed", processed, "users_skipped", skipped)
	return nil
}

func (s *Scheduler) updateUserFromEvents(ctx context.Context, userID uint) error {
	interests, err := s.analytics.InterestWeights(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.profiles.UpdateInterests(ctx, userID, interests); err != nil {
		return err
	}

	rfm, err := s.analytics.RFM(ctx, userID)
	if err != nil {
		return err
	}
	// RFM total is 3..15; stretch onto the 0..100 loyalty scale
	loyalty := float64(rfm.Score) * 100.0 / 15.0
	if err := s.profiles.UpdateLoyalty(ctx, userID, loyalty); err != nil {
		return err
	}

	if _, err := s.profiles.RecalculateScore(ctx, userID); err != nil {
		return err
	}
	return nil
}

// RecalculateAll rescores every profile and then re-evaluates the dynamic
// segments against the fresh scores.
func (s *Scheduler) RecalculateAll(ctx context.Context) error {
	profiles, err := s.profiles.All(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	failed := 0
	for _, p := range profiles {
		if _, err := s.profiles.RecalculateScore(ctx, p.UserID); err != nil {
			logger.Error("rescore failed", "user_id", p.UserID, "error", err)
			failed++
		}
	}
	logger.Info("full recalculation complete", "profiles", len(profiles), "failed", failed)

	if err := s.segments.RefreshDynamicSegments(ctx); err != nil {
		return fmt.Errorf("refresh dynamic segments: %w", err)
	}
	return nil
}

// IdentifyChurnRisk scans all profiles and flags high-risk users in the log.
func (s *Scheduler) IdentifyChurnRisk(ctx context.Context) error {
	profiles, err := s.profiles.All(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	highRisk := 0
	for _, p := range profiles {
		risk, err := s.analytics.ChurnRisk(ctx, p.UserID)
		if err != nil {
			logger.Error("churn analysis failed", "user_id", p.UserID, "error", err)
			continue
		}
		if risk.Risk == "high" {
			highRisk++
			logger.Warn("high churn risk",
				"user_id", p.UserID, "score", risk.Score, "reasons", risk.Reasons)
		}
	}

	logger.Info("churn identification complete", "profiles", len(profiles), "high_risk", highRisk)
	return nil
}

// WeeklyReport logs aggregate profile health numbers.
func (s *Scheduler) WeeklyReport(ctx context.Context) error {
	profiles, err := s.profiles.All(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	var totalScore float64
	highValue := 0
	for _, p := range profiles {
		totalScore += p.ProfileScore
		if p.ProfileScore >= 80 {
			highValue++
		}
	}

	avg := 0.0
	if len(profiles) > 0 {
		avg = totalScore / float64(len(profiles))
	}

	logger.Info("weekly profile report",
		"total_profiles", len(profiles),
		"average_score", fmt.Sprintf("%.2f", avg),
		"high_value_users", highValue)
	return nil
}

// CleanupOldEvents drops processed events past the retention window.
func (s *Scheduler) CleanupOldEvents(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -eventRetentionDays)
	deleted, err := s.eventRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete old events: %w", err)
	}

	logger.Info("event cleanup complete", "deleted", deleted, "cutoff", cutoff.Format("2006-01-02"))
	return nil
}

// ExpireTags deactivates tags whose expiry has passed.
func (s *Scheduler) ExpireTags(ctx context.Context) error {
	count, err := s.tags.DeactivateExpired(ctx)
	if err != nil {
		return fmt.Errorf("deactivate expired tags: %w", err)
	}
	if count > 0 {
		logger.Info("tag expiry complete", "deactivated", count)
	}
	return nil
}
