package notes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"ai-notes-backend/internal/cache"
	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"
	"ai-notes-backend/internal/repo/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *mock.NoteRepository) {
	t.Helper()
	repo := mock.NewNoteRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, cache.NewNoteListCache(16, time.Minute, 0.4), log), repo
}

func TestService_ListIsUpdatedDescAndFreshAfterWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, "first")
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, "second")
	require.NoError(t, err)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	// Editing the older note moves it to the top, the cached listing must not hide that.
	_, err = svc.Update(ctx, userID, first.ID, "first, edited", 0)
	require.NoError(t, err)

	list, err = svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "first, edited", list[0].Text)
}

func TestService_DeleteRemovesFromListing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	userID := uuid.New()

	note, err := svc.Create(ctx, userID, "temporary")
	require.NoError(t, err)
	_, err = svc.List(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, userID, note.ID))

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = svc.Delete(ctx, userID, note.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_OtherUsersNotesAreInvisible(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	owner, stranger := uuid.New(), uuid.New()

	note, err := svc.Create(ctx, owner, "private")
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, note.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Update(ctx, stranger, note.ID, "hijack", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, stranger, note.ID), domain.ErrNotFound)

	got, err := svc.Get(ctx, owner, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Text)
}

func TestService_UpdateVersioning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	userID := uuid.New()

	note, err := svc.Create(ctx, userID, "v1")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, userID, note.ID, "v2", note.Version)
	require.NoError(t, err)
	assert.Equal(t, note.Version+1, updated.Version)

	_, err = svc.Update(ctx, userID, note.ID, "stale", note.Version)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Update(ctx, userID, note.ID, "x", -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_EnsureDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, repo := newTestService(t)
	userID := uuid.New()

	created, err := svc.EnsureDefault(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "", created.Text)

	again, err := svc.EnsureDefault(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, 1, repo.Len())
}

func TestService_EnsureDefaultPropagatesRepoErrors(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(t)
	repo.Err = errors.New("connection refused")

	_, err := svc.EnsureDefault(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, 0, repo.Len())
}

func TestService_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	userID := uuid.New()

	_, err := svc.Create(ctx, userID, "Buy milk and eggs")
	require.NoError(t, err)
	meeting, err := svc.Create(ctx, userID, "Meeting notes for Monday")
	require.NoError(t, err)

	all, err := svc.Search(ctx, userID, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hits, err := svc.Search(ctx, userID, "meetnig")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, meeting.ID, hits[0].ID)
}

func TestService_SaverUpdatesAndInvalidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	userID := uuid.New()

	note, err := svc.Create(ctx, userID, "")
	require.NoError(t, err)
	_, err = svc.List(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, svc.Saver(userID)(ctx, note.ID, "typed text"))

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "typed text", list[0].Text)
}

// pausingNoteRepo holds the first ListByAuthor call after it has read the
// notes until release is closed.
type pausingNoteRepo struct {
	*mock.NoteRepository
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (r *pausingNoteRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Note, error) {
	notes, err := r.NoteRepository.ListByAuthor(ctx, authorID)
	r.once.Do(func() {
		close(r.loaded)
		<-r.release
	})
	return notes, err
}

func TestService_ListingLoadedBeforeUpdateIsNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := &pausingNoteRepo{
		NoteRepository: mock.NewNoteRepository(),
		loaded:         make(chan struct{}),
		release:        make(chan struct{}),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, cache.NewNoteListCache(16, time.Minute, 0.4), log)
	userID := uuid.New()

	// Create goes straight to the embedded repository, no listing is read.
	note, err := svc.Create(ctx, userID, "old")
	require.NoError(t, err)

	type result struct {
		notes []models.Note
		err   error
	}
	slow := make(chan result, 1)
	go func() {
		notes, err := svc.List(ctx, userID)
		slow <- result{notes, err}
	}()

	<-repo.loaded
	_, err = svc.Update(ctx, userID, note.ID, "new", 0)
	require.NoError(t, err)
	close(repo.release)

	// The in-flight reader still sees what it loaded.
	res := <-slow
	require.NoError(t, res.err)
	require.Len(t, res.notes, 1)
	assert.Equal(t, "old", res.notes[0].Text)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].Text)
}
