package disk

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageFile(t *testing.T) {
	t.Run("creating an existing file fails", func(t *testing.T) {
		name := path.Join(t.TempDir(), "test.db")

		file, err := Create(name)
		require.NoError(t, err)
		defer file.Close()

		_, err = Create(name)
		assert.Error(t, err)
	})

	t.Run("page numbers start at 1", func(t *testing.T) {
		file, err := Create(path.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer file.Close()

		first, err := file.AllocatePage()
		require.NoError(t, err)
		second, err := file.AllocatePage()
		require.NoError(t, err)

		assert.Equal(t, PageID(1), first)
		assert.Equal(t, PageID(2), second)
		assert.Equal(t, uint32(2), file.NumPages())
	})

	t.Run("pages round trip through disk", func(t *testing.T) {
		file, err := Create(path.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer file.Close()

		pageNo, err := file.AllocatePage()
		require.NoError(t, err)

		data := make([]byte, PAGE_SIZE)
		copy(data, []byte("hello world"))
		require.NoError(t, file.WritePage(pageNo, data))

		buf := make([]byte, PAGE_SIZE)
		require.NoError(t, file.ReadPage(pageNo, buf))
		assert.Equal(t, data, buf)
	})

	t.Run("open recovers the page count", func(t *testing.T) {
		name := path.Join(t.TempDir(), "test.db")

		file, err := Create(name)
		require.NoError(t, err)
		_, err = file.AllocatePage()
		require.NoError(t, err)
		_, err = file.AllocatePage()
		require.NoError(t, err)
		require.NoError(t, file.Close())

		reopened, err := Open(name)
		require.NoError(t, err)
		defer reopened.Close()

		assert.Equal(t, uint32(2), reopened.NumPages())
	})

	t.Run("exists and remove", func(t *testing.T) {
		name := path.Join(t.TempDir(), "test.db")
		assert.False(t, Exists(name))

		file, err := Create(name)
		require.NoError(t, err)
		require.NoError(t, file.Close())
		assert.True(t, Exists(name))

		require.NoError(t, Remove(name))
		assert.False(t, Exists(name))
	})

	t.Run("every open file gets a distinct id", func(t *testing.T) {
		first, err := Create(path.Join(t.TempDir(), "a.db"))
		require.NoError(t, err)
		defer first.Close()

		second, err := Create(path.Join(t.TempDir(), "b.db"))
		require.NoError(t, err)
		defer second.Close()

		assert.NotEqual(t, first.Id(), second.Id())
	})
}

func TestDiskScheduler(t *testing.T) {
	t.Run("serializes reads and writes", func(t *testing.T) {
		file, err := Create(path.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer file.Close()

		pageNo, err := file.AllocatePage()
		require.NoError(t, err)

		scheduler := NewScheduler()
		defer scheduler.Close()

		data := make([]byte, PAGE_SIZE)
		copy(data, []byte("scheduled write"))

		resp := <-scheduler.Schedule(NewRequest(file, pageNo, data, true))
		require.NoError(t, resp.Err)

		resp = <-scheduler.Schedule(NewRequest(file, pageNo, nil, false))
		require.NoError(t, resp.Err)
		assert.Equal(t, data, resp.Data)
	})

	t.Run("reading a page that does not exist fails", func(t *testing.T) {
		file, err := Create(path.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer file.Close()

		scheduler := NewScheduler()
		defer scheduler.Close()

		resp := <-scheduler.Schedule(NewRequest(file, 1, nil, false))
		assert.Error(t, resp.Err)
	})
}
