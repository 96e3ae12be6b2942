package repository

import (
	"testing"

	"github.com/deppfellow/vistual/internal/model/garment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListFilter(t *testing.T) {
	userID := uuid.New()

	t.Run("owner only", func(t *testing.T) {
		q := &garment.ListGarmentsQuery{}
		require.NoError(t, q.Validate())

		where, args := buildListFilter(userID, q)
		assert.Equal(t, "user_id = @user_id", where)
		assert.Equal(t, userID, args["user_id"])
	})

	t.Run("all filters", func(t *testing.T) {
		q := &garment.ListGarmentsQuery{Type: "bottom", Color: "negro", Search: "50%_off"}
		require.NoError(t, q.Validate())

		where, args := buildListFilter(userID, q)
		assert.Equal(t, `user_id = @user_id AND category = ANY(@categories) AND color = @color AND name ILIKE @search ESCAPE '\'`, where)
		assert.Equal(t, []string{"pants", "skirt"}, args["categories"])
		assert.Equal(t, "black", args["color"])
		assert.Equal(t, `%50\%\_off%`, args["search"])
	})

	t.Run("conflicting category and type match nothing", func(t *testing.T) {
		q := &garment.ListGarmentsQuery{Category: "shirt", Type: "shoes"}
		require.NoError(t, q.Validate())

		_, args := buildListFilter(userID, q)
		assert.Equal(t, []string{}, args["categories"])
	})
}

func TestListOrder(t *testing.T) {
	assert.Equal(t, "created_at DESC, id DESC", listOrder(garment.SortNewest))
	assert.Equal(t, "created_at ASC, id ASC", listOrder(garment.SortOldest))
	assert.Equal(t, "LOWER(name) ASC, created_at DESC", listOrder(garment.SortName))
}
