package reservation

import (
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/internal/database"
	"tableside/internal/errs"
	"tableside/internal/models"
	"tableside/pkg/logger"
)

func testWaitlist(t *testing.T) (*Waitlist, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	return NewWaitlist(db, 10, logger.Discard()), db
}

func TestWaitlistJoinValidation(t *testing.T) {
	w, _ := testWaitlist(t)

	_, err := w.Join("", "081", 2)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = w.Join("Somchai", "081", 0)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = w.Join("Somchai", "081", 11)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	entry, err := w.Join("Somchai", "081", 4)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.PublicID)
}

func TestWaitlistFIFO(t *testing.T) {
	w, db := testWaitlist(t)
	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	names := []string{"Somchai", "Malee", "Anan"}
	for i, name := range names {
		entry := models.WaitlistEntry{
			PublicID:     name, // distinct id is all that matters here
			CustomerName: name,
			PartySize:    2,
		}
		entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&entry).Error)
	}

	for _, want := range names {
		entry, err := w.Next()
		require.NoError(t, err)
		assert.Equal(t, want, entry.CustomerName)
	}

	_, err := w.Next()
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestWaitlistRemove(t *testing.T) {
	w, _ := testWaitlist(t)

	first, err := w.Join("Somchai", "081", 2)
	require.NoError(t, err)
	second, err := w.Join("Malee", "082", 3)
	require.NoError(t, err)

	require.NoError(t, w.Remove(first.PublicID))

	entries, err := w.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second.PublicID, entries[0].PublicID)

	assert.Equal(t, errs.KindNotFound, errs.KindOf(w.Remove("missing")))
}
