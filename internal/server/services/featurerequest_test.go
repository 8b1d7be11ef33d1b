package services

import (
	"context"
	"testing"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/logging"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureRequestService(t *testing.T) {
	ctx := context.Background()
	m := newFakeRepoManager()
	s := NewFeatureRequestService(nil, m, logging.NopLogger{})

	t.Run("create starts pending", func(t *testing.T) {
		fr, err := s.Create(ctx, "u1", FeatureRequestInput{
			Category:    "search",
			Title:       "Filter by professor",
			Description: "Papers set by the same professor repeat patterns.",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, fr.ID)
		assert.Equal(t, models.FeatureStatusPending, fr.Status)
		assert.Equal(t, "u1", fr.RequesterID)
	})

	t.Run("missing fields are reported per field", func(t *testing.T) {
		_, err := s.Create(ctx, "u1", FeatureRequestInput{})
		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 3)
	})

	t.Run("list mine only returns own requests", func(t *testing.T) {
		_, err := s.Create(ctx, "u2", FeatureRequestInput{
			Category:    "ui",
			Title:       "Dark mode",
			Description: "Late night revision is blinding.",
		})
		require.NoError(t, err)

		mine, err := s.ListMine(ctx, "u2")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "Dark mode", mine[0].Title)
	})
}
