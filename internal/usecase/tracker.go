// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/naka-gawa/game-center/internal/domain"
)

// Store defines the persistence the tracker reads from and writes to.
type Store interface {
	LoadGameInfo(gameID string) (*domain.GameInfo, bool, error)
	SaveGameInfo(gameID string, info *domain.GameInfo) error
	LoadRegistry() (*domain.Registry, error)
	SaveRegistry(reg *domain.Registry) error
}

// TrackResult reports what happened to each affected game.
type TrackResult struct {
	Affected       []string
	Updated        []string
	Skipped        []string
	Failed         map[string]error
	RegistrySynced []string
}

// Tracker is the use case for recording a merged pull request in the
// metadata of every game it touched.
type Tracker struct {
	store    Store
	gamesDir string
	logger   *zap.Logger
	now      func() time.Time
}

// NewTracker creates a new Tracker instance.
func NewTracker(store Store, gamesDir string, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:    store,
		gamesDir: gamesDir,
		logger:   logger,
		now:      time.Now,
	}
}

// Track appends pr to the record of every game whose directory appears in
// changedFiles and syncs the registry's prCount. Games are processed
// independently: a failure on one game is logged and recorded in the result
// while the others proceed. The only error returned is a cancelled context.
func (t *Tracker) Track(ctx context.Context, pr domain.MergedPR, changedFiles []string) (*TrackResult, error) {
	pr = pr.WithDefaults(t.now())
	result := &TrackResult{
		Affected: domain.AffectedGames(t.gamesDir, changedFiles),
		Failed:   make(map[string]error),
	}
	if len(result.Affected) == 0 {
		t.logger.Info("no game directories changed, nothing to update", zap.Int("pr", pr.Number))
		return result, nil
	}
	t.logger.Info("updating games", zap.Int("pr", pr.Number), zap.Strings("games", result.Affected))

	for _, gameID := range result.Affected {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		log := t.logger.With(zap.String("game", gameID), zap.Int("pr", pr.Number))

		total, updated, err := t.recordPR(gameID, pr)
		if err != nil {
			log.Error("failed to update game", zap.Error(err))
			result.Failed[gameID] = err
			continue
		}
		if !updated {
			log.Info("pull request already recorded, skipping")
			result.Skipped = append(result.Skipped, gameID)
			continue
		}
		result.Updated = append(result.Updated, gameID)

		if t.syncRegistry(gameID, total, log) {
			result.RegistrySynced = append(result.RegistrySynced, gameID)
		}
	}

	t.logger.Info("pull request tracking complete",
		zap.Int("updated", len(result.Updated)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// recordPR adds pr to the game's record and persists it, returning the new
// total. It reports false when the record already contains the pull request.
func (t *Tracker) recordPR(gameID string, pr domain.MergedPR) (int, bool, error) {
	info, ok, err := t.store.LoadGameInfo(gameID)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		t.logger.Debug("creating new game record", zap.String("game", gameID))
		info = domain.NewGameInfo(gameID, pr.MergedAt)
	}
	if !info.AddPR(pr.Record()) {
		return info.Stats.TotalPRs, false, nil
	}
	if err := t.store.SaveGameInfo(gameID, info); err != nil {
		return 0, false, err
	}
	return info.Stats.TotalPRs, true, nil
}

// syncRegistry copies the game's total PR count into the registry. Games
// missing from the registry are left alone.
func (t *Tracker) syncRegistry(gameID string, total int, log *zap.Logger) bool {
	reg, err := t.store.LoadRegistry()
	if err != nil {
		log.Warn("registry not updated", zap.Error(err))
		return false
	}
	if !reg.SyncPRCount(gameID, total) {
		log.Info("game not listed in registry, prCount not updated")
		return false
	}
	if err := t.store.SaveRegistry(reg); err != nil {
		log.Warn("registry not updated", zap.Error(err))
		return false
	}
	log.Debug("registry prCount updated", zap.Int("prCount", total))
	return true
}
