package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/game-center/internal/domain"
)

func intPtr(n int) *int { return &n }

func TestAggregator_Aggregate(t *testing.T) {
	testCases := []struct {
		name           string
		registry       *domain.Registry
		registryErr    error
		records        map[string]*domain.GameInfo
		recordErr      error
		expectedResult *domain.Summary
		expectError    bool
	}{
		{
			name: "happy path - aggregates records across games",
			registry: &domain.Registry{Games: []domain.Game{
				{ID: "snake", Name: "Snake", PRCount: intPtr(3)},
				{ID: "pong", Name: "Pong", PRCount: intPtr(2)},
				{ID: "chess", Name: "Chess"},
			}},
			records: map[string]*domain.GameInfo{
				"snake": {Stats: domain.GameStats{TotalPRs: 3, FirstPRDate: "2025-01-01", LastPRDate: "2025-03-01"}},
				"pong":  {Stats: domain.GameStats{TotalPRs: 1, FirstPRDate: "2025-02-01", LastPRDate: "2025-02-01"}},
			},
			expectedResult: &domain.Summary{
				Games: []*domain.GameSummary{
					{ID: "chess", Name: "Chess", InSync: true},
					{ID: "pong", Name: "Pong", TotalPRs: 1, FirstPRDate: "2025-02-01", LastPRDate: "2025-02-01", RegistryPRCount: intPtr(2), InSync: false},
					{ID: "snake", Name: "Snake", TotalPRs: 3, FirstPRDate: "2025-01-01", LastPRDate: "2025-03-01", RegistryPRCount: intPtr(3), InSync: true},
				},
				Aggregate: domain.Aggregate{Games: 3, TotalPRs: 4, Mean: 4.0 / 3.0, Median: 1, Max: 3},
			},
		},
		{
			name:     "empty case - registry without games",
			registry: &domain.Registry{},
			expectedResult: &domain.Summary{
				Games:     []*domain.GameSummary{},
				Aggregate: domain.Aggregate{},
			},
		},
		{
			name:        "error case - registry cannot be read",
			registryErr: errors.New("failed to read games.json"),
			expectError: true,
		},
		{
			name:        "error case - record cannot be parsed",
			registry:    &domain.Registry{Games: []domain.Game{{ID: "snake"}}},
			recordErr:   errors.New("failed to parse game-info.yaml for snake"),
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := new(mockStore)
			if tc.registry != nil || tc.registryErr != nil {
				s.On("LoadRegistry").Return(tc.registry, tc.registryErr)
			}
			if tc.registry != nil {
				for _, game := range tc.registry.Games {
					if tc.recordErr != nil {
						s.On("LoadGameInfo", game.ID).Return(nil, false, tc.recordErr)
						continue
					}
					if info, ok := tc.records[game.ID]; ok {
						s.On("LoadGameInfo", game.ID).Return(info, true, nil)
					} else {
						s.On("LoadGameInfo", game.ID).Return(nil, false, nil)
					}
				}
			}

			result, err := NewAggregator(s, zap.NewNop()).Aggregate(context.Background())

			if tc.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedResult, result)
			s.AssertExpectations(t)
		})
	}
}
