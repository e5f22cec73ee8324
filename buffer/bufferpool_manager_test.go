package buffer

import (
	"path"
	"testing"

	"github.com/jobala/faharasa/storage/disk"
	"github.com/jobala/faharasa/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferpoolManager(t *testing.T) {
	t.Run("reads a page from disk", func(t *testing.T) {
		file, bpm := createBpm(t, 5)

		_, err := file.AllocatePage()
		require.NoError(t, err)

		data := make([]byte, disk.PAGE_SIZE)
		copy(data, []byte("hello, world!"))
		require.NoError(t, file.WritePage(1, data))

		frame, err := bpm.ReadPage(file, 1)
		require.NoError(t, err)

		assert.Equal(t, data, frame.Data)
		require.NoError(t, bpm.UnpinPage(file, 1, false))
	})

	t.Run("allocated pages are zeroed, pinned and dirty", func(t *testing.T) {
		file, bpm := createBpm(t, 5)

		pageNo, frame, err := bpm.AllocatePage(file)
		require.NoError(t, err)

		assert.Equal(t, disk.PageID(1), pageNo)
		assert.Equal(t, 1, frame.PinCount())
		assert.Equal(t, make([]byte, disk.PAGE_SIZE), frame.Data)
		assert.Equal(t, 1, bpm.PinnedFrames())

		require.NoError(t, bpm.UnpinPage(file, pageNo, true))
		assert.Equal(t, 0, bpm.PinnedFrames())
	})

	t.Run("evicting a dirty page writes it back", func(t *testing.T) {
		file, bpm := createBpm(t, 2)

		pageNo, frame, err := bpm.AllocatePage(file)
		require.NoError(t, err)
		copy(frame.Data, []byte("dirty page"))
		require.NoError(t, bpm.UnpinPage(file, pageNo, true))

		// fill the pool so the dirty page gets evicted
		for range 2 {
			no, _, err := bpm.AllocatePage(file)
			require.NoError(t, err)
			require.NoError(t, bpm.UnpinPage(file, no, false))
		}

		buf := make([]byte, disk.PAGE_SIZE)
		require.NoError(t, file.ReadPage(pageNo, buf))
		assert.Equal(t, []byte("dirty page"), buf[:10])

		// and reading it again round trips through disk
		frame, err = bpm.ReadPage(file, pageNo)
		require.NoError(t, err)
		assert.Equal(t, []byte("dirty page"), frame.Data[:10])
		require.NoError(t, bpm.UnpinPage(file, pageNo, false))
	})

	t.Run("fails when every frame is pinned", func(t *testing.T) {
		file, bpm := createBpm(t, 2)

		for range 2 {
			_, _, err := bpm.AllocatePage(file)
			require.NoError(t, err)
		}

		_, _, err := bpm.AllocatePage(file)
		var exhausted *util.BufferpoolExhaustedError
		assert.ErrorAs(t, err, &exhausted)
	})

	t.Run("a page pinned twice needs two unpins", func(t *testing.T) {
		file, bpm := createBpm(t, 2)

		pageNo, _, err := bpm.AllocatePage(file)
		require.NoError(t, err)

		frame, err := bpm.ReadPage(file, pageNo)
		require.NoError(t, err)
		assert.Equal(t, 2, frame.PinCount())

		require.NoError(t, bpm.UnpinPage(file, pageNo, false))
		assert.Equal(t, 1, bpm.PinnedFrames())

		require.NoError(t, bpm.UnpinPage(file, pageNo, true))
		assert.Equal(t, 0, bpm.PinnedFrames())
	})

	t.Run("unpinning an unpinned page is an error", func(t *testing.T) {
		file, bpm := createBpm(t, 2)

		pageNo, _, err := bpm.AllocatePage(file)
		require.NoError(t, err)
		require.NoError(t, bpm.UnpinPage(file, pageNo, false))

		assert.Error(t, bpm.UnpinPage(file, pageNo, false))
	})

	t.Run("flushFile writes dirty pages and clears pins", func(t *testing.T) {
		file, bpm := createBpm(t, 5)

		pageNo, frame, err := bpm.AllocatePage(file)
		require.NoError(t, err)
		copy(frame.Data, []byte("flush me"))

		require.NoError(t, bpm.FlushFile(file))
		assert.Equal(t, 0, bpm.PinnedFrames())

		buf := make([]byte, disk.PAGE_SIZE)
		require.NoError(t, file.ReadPage(pageNo, buf))
		assert.Equal(t, []byte("flush me"), buf[:8])
	})
}

func createBpm(t *testing.T, size int) (*disk.PageFile, *BufferpoolManager) {
	t.Helper()

	file, err := disk.Create(path.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = file.Close()
	})

	scheduler := disk.NewScheduler()
	t.Cleanup(scheduler.Close)

	replacer := NewLrukReplacer(size, 2)
	return file, NewBufferpoolManager(size, replacer, scheduler, nil)
}
