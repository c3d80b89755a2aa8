package cache

import (
	"sync"
	"time"

	"ai-notes-backend/internal/models"
	"ai-notes-backend/internal/search"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Listing is a user's note list (updated desc) together with the search index
// built from it. The index is rebuilt whenever the list is replaced.
type Listing struct {
	Notes []models.Note
	Index *search.Index
}

// NoteListCache keeps per-user listings. Writers must call Invalidate after
// any successful create, update or delete so later reads see fresh content.
//
// Each user has a generation bumped by Invalidate. A reader takes the
// generation before loading notes and hands it to Put, which refuses to store
// a listing loaded before a later invalidation.
type NoteListCache struct {
	lru       *expirable.LRU[uuid.UUID, *Listing]
	threshold float64

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewNoteListCache(size int, ttl time.Duration, threshold float64) *NoteListCache {
	return &NoteListCache{
		lru:         expirable.NewLRU[uuid.UUID, *Listing](size, nil, ttl),
		threshold:   threshold,
		generations: make(map[uuid.UUID]uint64),
	}
}

// Generation returns the current invalidation count of userID.
func (c *NoteListCache) Generation(userID uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

func (c *NoteListCache) Get(userID uuid.UUID) (*Listing, bool) {
	return c.lru.Get(userID)
}

// Put builds the listing for notes loaded at generation gen. It is cached only
// when userID was not invalidated since; the listing is returned either way.
func (c *NoteListCache) Put(userID uuid.UUID, gen uint64, notes []models.Note) *Listing {
	listing := &Listing{
		Notes: notes,
		Index: search.New(notes, search.WithThreshold(c.threshold)),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] == gen {
		c.lru.Add(userID, listing)
	}
	return listing
}

func (c *NoteListCache) Invalidate(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[userID]++
	c.lru.Remove(userID)
}
