package store

import (
	"go.uber.org/zap"

	"github.com/naka-gawa/game-center/internal/domain"
)

// DryRunStore reads through a FileStore and logs writes instead of
// performing them.
type DryRunStore struct {
	*FileStore
	logger *zap.Logger
}

// NewDryRunStore wraps s so that nothing is written.
func NewDryRunStore(s *FileStore, logger *zap.Logger) *DryRunStore {
	return &DryRunStore{FileStore: s, logger: logger}
}

// SaveGameInfo encodes info and logs where it would be written.
func (d *DryRunStore) SaveGameInfo(gameID string, info *domain.GameInfo) error {
	if _, err := EncodeGameInfo(info); err != nil {
		return err
	}
	d.logger.Info("dry run: would write game record",
		zap.String("path", d.GameInfoPath(gameID)),
		zap.Int("total_prs", info.Stats.TotalPRs),
	)
	return nil
}

// SaveRegistry encodes reg and logs where it would be written.
func (d *DryRunStore) SaveRegistry(reg *domain.Registry) error {
	if _, err := EncodeRegistry(reg); err != nil {
		return err
	}
	d.logger.Info("dry run: would write registry",
		zap.String("path", d.RegistryPath()),
		zap.Int("games", len(reg.Games)),
	)
	return nil
}
