package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type saveCall struct {
	NoteID uuid.UUID
	Text   string
}

type recorder struct {
	mu    sync.Mutex
	calls []saveCall
	err   error
	saved chan uuid.UUID
}

func newRecorder() *recorder {
	return &recorder{saved: make(chan uuid.UUID, 64)}
}

func (r *recorder) save(_ context.Context, noteID uuid.UUID, text string) error {
	r.mu.Lock()
	r.calls = append(r.calls, saveCall{NoteID: noteID, Text: text})
	err := r.err
	r.mu.Unlock()

	r.saved <- noteID
	return err
}

func (r *recorder) Calls() []saveCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]saveCall(nil), r.calls...)
}

func (r *recorder) wait(t *testing.T) uuid.UUID {
	t.Helper()
	select {
	case id := <-r.saved:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a write")
		return uuid.Nil
	}
}

const testDelay = 20 * time.Millisecond

func TestController_DebouncesToLatestText(t *testing.T) {
	rec := newRecorder()
	c := New(testDelay, rec.save)
	defer c.Close()

	noteID := uuid.New()
	c.Edit(noteID, "a")
	c.Edit(noteID, "ab")

	rec.wait(t)
	time.Sleep(3 * testDelay)

	assert.Equal(t, []saveCall{{NoteID: noteID, Text: "ab"}}, rec.Calls())
	assert.False(t, c.isPending(noteID))
}

func TestController_SwitchingNotesKeepsOtherWrite(t *testing.T) {
	rec := newRecorder()
	c := New(testDelay, rec.save)
	defer c.Close()

	first, second := uuid.New(), uuid.New()
	c.Edit(first, "draft one")
	c.Edit(second, "draft two")

	got := map[uuid.UUID]bool{rec.wait(t): true, rec.wait(t): true}
	assert.True(t, got[first])
	assert.True(t, got[second])
	assert.ElementsMatch(t, []saveCall{
		{NoteID: first, Text: "draft one"},
		{NoteID: second, Text: "draft two"},
	}, rec.Calls())
}

func TestController_FailureReportedWithoutRetry(t *testing.T) {
	rec := newRecorder()
	rec.err = errors.New("db down")

	var (
		mu     sync.Mutex
		failed []uuid.UUID
	)
	savedCalled := false
	c := New(testDelay, rec.save,
		WithOnError(func(noteID uuid.UUID, err error) {
			mu.Lock()
			defer mu.Unlock()
			failed = append(failed, noteID)
		}),
		WithOnSaved(func(uuid.UUID) { savedCalled = true }),
	)

	noteID := uuid.New()
	c.Edit(noteID, "text")
	rec.wait(t)
	time.Sleep(3 * testDelay)
	c.Close()

	assert.Len(t, rec.Calls(), 1)
	mu.Lock()
	assert.Equal(t, []uuid.UUID{noteID}, failed)
	mu.Unlock()
	assert.False(t, savedCalled)
}

func TestController_FlushWritesImmediately(t *testing.T) {
	rec := newRecorder()
	c := New(time.Hour, rec.save)
	defer c.Close()

	noteID := uuid.New()
	c.Edit(noteID, "now")
	require.True(t, c.isPending(noteID))

	require.NoError(t, c.Flush(noteID))
	assert.Equal(t, []saveCall{{NoteID: noteID, Text: "now"}}, rec.Calls())
	assert.False(t, c.isPending(noteID))

	// Nothing pending, nothing written.
	require.NoError(t, c.Flush(noteID))
	assert.Len(t, rec.Calls(), 1)
}

func TestController_FlushReturnsSaveError(t *testing.T) {
	rec := newRecorder()
	rec.err = errors.New("boom")
	c := New(time.Hour, rec.save)
	defer c.Close()

	noteID := uuid.New()
	c.Edit(noteID, "x")
	assert.EqualError(t, c.Flush(noteID), "boom")
}

func TestController_CloseFlushesPendingAndIgnoresLaterEdits(t *testing.T) {
	rec := newRecorder()
	c := New(time.Hour, rec.save)

	noteID := uuid.New()
	c.Edit(noteID, "unsaved")
	c.Close()

	assert.Equal(t, []saveCall{{NoteID: noteID, Text: "unsaved"}}, rec.Calls())

	c.Edit(noteID, "after close")
	assert.False(t, c.isPending(noteID))
	c.Close()
	assert.Len(t, rec.Calls(), 1)
}

func TestController_SkipsStaleWrite(t *testing.T) {
	rec := newRecorder()
	c := New(time.Hour, rec.save)
	defer c.Close()

	noteID := uuid.New()
	c.wg.Add(2)
	require.NoError(t, c.write(noteID, &pendingWrite{text: "new", seq: 5}))
	require.NoError(t, c.write(noteID, &pendingWrite{text: "old", seq: 3}))

	assert.Equal(t, []saveCall{{NoteID: noteID, Text: "new"}}, rec.Calls())
}

func TestController_CloseWritesLastTextPerNote(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		rec := newRecorder()
		c := New(time.Hour, rec.save)

		last := map[uuid.UUID]string{}
		edits := rapid.IntRange(1, 30).Draw(t, "edits")
		for i := 0; i < edits; i++ {
			id := ids[rapid.IntRange(0, len(ids)-1).Draw(t, "note")]
			text := rapid.String().Draw(t, "text")
			c.Edit(id, text)
			last[id] = text
		}
		c.Close()

		calls := rec.Calls()
		if len(calls) != len(last) {
			t.Fatalf("expected %d writes, got %d", len(last), len(calls))
		}
		for _, call := range calls {
			if last[call.NoteID] != call.Text {
				t.Fatalf("note %s written with %q, want %q", call.NoteID, call.Text, last[call.NoteID])
			}
		}
	})
}
