package upload

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/notice"
	"github.com/paperiq/dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() (*Manager, *testutil.MockStorage) {
	store := testutil.NewMockStorage()
	return NewManager(DefaultValidator(), store, nil), store
}

func TestManager_Accept(t *testing.T) {
	m, store := newTestManager()
	board := notice.NewBoard()

	var reported *models.FileInfo
	info, err := m.Accept(context.Background(), Candidate{
		Name:    "paper.pdf",
		Size:    5,
		Content: strings.NewReader("hello"),
		Source:  models.SourceDrop,
	}, board, func(f *models.FileInfo) { reported = f })

	require.NoError(t, err)
	require.NotNil(t, reported)
	assert.Equal(t, info, reported)
	assert.Equal(t, models.SourceDrop, info.Source)
	assert.Equal(t, 1, store.GetFileCount())
	assert.Empty(t, board.Pending())
}

func TestManager_RejectsBadExtension(t *testing.T) {
	for _, name := range []string{"notes.txt", "image.png", "paper.pdf.exe", "noext"} {
		t.Run(name, func(t *testing.T) {
			m, store := newTestManager()
			board := notice.NewBoard()
			called := false

			_, err := m.Accept(context.Background(), Candidate{
				Name:    name,
				Size:    3,
				Content: strings.NewReader("abc"),
				Source:  models.SourceBrowse,
			}, board, func(*models.FileInfo) { called = true })

			var rej *RejectError
			require.True(t, errors.As(err, &rej))
			assert.False(t, called, "upload callback must not run")
			assert.Equal(t, 0, store.GetFileCount())

			notices := board.Drain()
			require.Len(t, notices, 1)
			assert.Equal(t, models.NoticeError, notices[0].Level)
			assert.Equal(t, "Please upload a PDF or DOCX file", notices[0].Message)
		})
	}
}

func TestManager_RejectsOversize(t *testing.T) {
	big := bytes.Repeat([]byte("a"), int(DefaultMaxSize)+1)

	t.Run("declared size", func(t *testing.T) {
		m, store := newTestManager()
		board := notice.NewBoard()
		called := false

		_, err := m.Accept(context.Background(), Candidate{
			Name: "paper.pdf", Size: int64(len(big)), Content: bytes.NewReader(big),
		}, board, func(*models.FileInfo) { called = true })

		var rej *RejectError
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, ReasonSize, rej.Reason)
		assert.False(t, called)
		assert.Equal(t, 0, store.GetFileCount())
		assert.Equal(t, "File size must be less than 10MB", board.Drain()[0].Message)
	})

	t.Run("understated size is caught while storing", func(t *testing.T) {
		m, store := newTestManager()
		board := notice.NewBoard()
		called := false

		_, err := m.Accept(context.Background(), Candidate{
			Name: "paper.docx", Size: 10, Content: bytes.NewReader(big),
		}, board, func(*models.FileInfo) { called = true })

		var rej *RejectError
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, ReasonSize, rej.Reason)
		assert.False(t, called)
		assert.Equal(t, 0, store.GetFileCount(), "partial upload must be discarded")
		assert.Len(t, board.Drain(), 1)
	})
}

func TestManager_StoreFailure(t *testing.T) {
	m, store := newTestManager()
	store.SaveErr = errors.New("disk full")
	board := notice.NewBoard()

	_, err := m.Accept(context.Background(), Candidate{
		Name: "paper.pdf", Size: 3, Content: strings.NewReader("abc"),
	}, board, nil)

	require.Error(t, err)
	var rej *RejectError
	assert.False(t, errors.As(err, &rej))
	assert.Empty(t, board.Pending())
}

func TestManager_AcceptPath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "paper.pdf")
	bad := filepath.Join(dir, "paper.txt")
	require.NoError(t, os.WriteFile(good, []byte("pdf"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("txt"), 0644))

	m := NewManager(DefaultValidator(), nil, nil)
	board := notice.NewBoard()

	info, err := m.AcceptPath(context.Background(), good, board, nil)
	require.NoError(t, err)
	assert.Equal(t, "paper.pdf", info.Name)
	assert.Equal(t, good, info.Path)
	assert.Equal(t, models.SourcePath, info.Source)
	assert.NoError(t, m.Discard(info), "discarding a file the store does not own is a no-op")
	_, err = os.Stat(good)
	assert.NoError(t, err)

	_, err = m.AcceptPath(context.Background(), bad, board, nil)
	var rej *RejectError
	assert.True(t, errors.As(err, &rej))
	assert.Len(t, board.Drain(), 1)

	_, err = m.AcceptPath(context.Background(), filepath.Join(dir, "missing.pdf"), board, nil)
	assert.Error(t, err)
}
