package faharasa

import (
	"encoding/binary"
	"errors"
	"path"
	"testing"

	"github.com/jobala/faharasa/catalog"
	"github.com/jobala/faharasa/config"
	"github.com/jobala/faharasa/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB(t *testing.T) {
	t.Run("builds and scans an index end to end", func(t *testing.T) {
		db, err := Open(testConfig(t))
		require.NoError(t, err)
		defer db.Close()

		users, err := db.CreateRelation("users")
		require.NoError(t, err)

		for i := range 500 {
			_, err := users.InsertRecord(userRecord(int32(i)))
			require.NoError(t, err)
		}

		idx, err := db.BuildIndex("users", 4, index.INTEGER)
		require.NoError(t, err)

		assert.Equal(t, 99, countRange(t, idx, 100, 200))
	})

	t.Run("an index survives closing and reopening the database", func(t *testing.T) {
		cfg := testConfig(t)

		db, err := Open(cfg)
		require.NoError(t, err)

		users, err := db.CreateRelation("users")
		require.NoError(t, err)
		for i := range 100 {
			_, err := users.InsertRecord(userRecord(int32(i)))
			require.NoError(t, err)
		}

		_, err = db.BuildIndex("users", 4, index.INTEGER)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		reopened, err := Open(cfg)
		require.NoError(t, err)
		defer reopened.Close()

		// the existing index file is validated and reused
		idx, err := reopened.BuildIndex("users", 4, index.INTEGER)
		require.NoError(t, err)

		assert.Equal(t, 100, countRange(t, idx, -1, 100))
	})

	t.Run("indexing an unknown relation fails", func(t *testing.T) {
		db, err := Open(testConfig(t))
		require.NoError(t, err)
		defer db.Close()

		_, err = db.BuildIndex("ghost", 4, index.INTEGER)
		var notFound *catalog.FileNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

// countRange counts the rids produced by an exclusive (low, high) scan.
func countRange(t *testing.T, idx *index.BTreeIndex, lowVal, highVal int32) int {
	t.Helper()

	err := idx.StartScan(lowVal, index.GT, highVal, index.LT)
	var noKey *index.NoSuchKeyFoundError
	if errors.As(err, &noKey) {
		return 0
	}
	require.NoError(t, err)

	count := 0
	for {
		if _, err := idx.ScanNext(); err != nil {
			var done *index.IndexScanCompletedError
			require.ErrorAs(t, err, &done)
			break
		}
		count += 1
	}

	require.NoError(t, idx.EndScan())
	return count
}

func userRecord(key int32) []byte {
	record := make([]byte, 12)
	binary.LittleEndian.PutUint32(record[4:], uint32(key))
	return record
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.Dir = path.Join(t.TempDir(), "data")
	return cfg
}
