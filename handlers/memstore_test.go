package handlers_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"url-shortener-service/db"
	"url-shortener-service/models"
)

// memStore is an in-memory db.Store used by handler tests. All
// operations hold the mutex for their full duration, giving the same
// atomic append+increment guarantee the SQL transactions provide.
type memStore struct {
	mu         sync.Mutex
	seq        int64
	urls       map[string]*models.Url
	clicks     map[string][]models.Click
	hashes     map[string]map[string]bool
	failCreate bool
	failRecord bool
}

var _ db.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		urls:   make(map[string]*models.Url),
		clicks: make(map[string][]models.Click),
		hashes: make(map[string]map[string]bool),
	}
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) CreateURL(_ context.Context, url *models.Url) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreate {
		return errors.New("storage unavailable")
	}
	if _, exists := m.urls[url.ShortCode]; exists {
		return &models.DuplicateCodeError{ShortCode: url.ShortCode}
	}

	m.seq++
	url.ID = m.seq
	url.CreatedAt = time.Now()
	url.TotalClicks = 0

	stored := *url
	m.urls[url.ShortCode] = &stored
	return nil
}

func (m *memStore) GetURLByCode(_ context.Context, shortCode string) (*models.Url, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	url, ok := m.urls[shortCode]
	if !ok {
		return nil, &models.NotFoundError{Message: "short code not found"}
	}
	if url.Expired(time.Now()) {
		return nil, &models.NotFoundError{Message: "short code expired"}
	}
	copied := *url
	return &copied, nil
}

func (m *memStore) CodeExists(_ context.Context, shortCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.urls[shortCode]
	return ok, nil
}

func (m *memStore) GetAllURLs(context.Context) ([]*models.Url, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	urls := make([]*models.Url, 0, len(m.urls))
	for _, u := range m.urls {
		copied := *u
		urls = append(urls, &copied)
	}
	sort.Slice(urls, func(i, j int) bool { return urls[i].ID > urls[j].ID })
	return urls, nil
}

func (m *memStore) ListURLs(_ context.Context, limit, offset int) ([]*models.UrlSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > db.MaxListLimit {
		limit = db.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	all := make([]*models.Url, 0, len(m.urls))
	for _, u := range m.urls {
		all = append(all, u)
	}
	// Newest first; IDs follow insertion order.
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	summaries := []*models.UrlSummary{}
	for i := offset; i < len(all) && len(summaries) < limit; i++ {
		u := all[i]
		summaries = append(summaries, &models.UrlSummary{
			OriginalURL: u.OriginalURL,
			ShortCode:   u.ShortCode,
			TotalClicks: u.TotalClicks,
			CreatedAt:   u.CreatedAt,
			ExpiresAt:   u.ExpiresAt,
		})
	}
	return summaries, nil
}

func (m *memStore) GetClickHistory(_ context.Context, shortCode string) ([]models.Click, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[shortCode]; !ok {
		return nil, &models.NotFoundError{Message: "short code not found"}
	}
	return append([]models.Click{}, m.clicks[shortCode]...), nil
}

func (m *memStore) GetURLStats(_ context.Context, shortCode string) (*models.UrlStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	url, ok := m.urls[shortCode]
	if !ok {
		return nil, &models.NotFoundError{Message: "short code not found"}
	}
	return &models.UrlStats{
		ShortCode:      shortCode,
		TotalClicks:    url.TotalClicks,
		UniqueVisitors: int64(len(m.hashes[shortCode])),
	}, nil
}

func (m *memStore) RecordClick(_ context.Context, shortCode string, visit models.ClickInput, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRecord {
		return errors.New("storage unavailable")
	}
	return m.recordLocked(shortCode, visit, ts, false)
}

func (m *memStore) BatchRecordClicks(_ context.Context, events []models.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		if err := m.recordLocked(e.ShortCode, e.Visit, e.Timestamp, true); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) recordLocked(shortCode string, visit models.ClickInput, ts time.Time, skipMissing bool) error {
	url, ok := m.urls[shortCode]
	if !ok || url.Expired(time.Now()) {
		if skipMissing {
			return nil
		}
		return &models.NotFoundError{Message: "short code not found"}
	}

	m.clicks[shortCode] = append(m.clicks[shortCode], models.Click{
		ID:        int64(len(m.clicks[shortCode]) + 1),
		Timestamp: ts,
		IP:        visit.IP,
		Country:   visit.Country,
		City:      visit.City,
		Device:    visit.Device,
		Browser:   visit.Browser,
		OS:        visit.OS,
		Referer:   visit.Referer,
	})
	url.TotalClicks++

	if visit.VisitorHash != "" {
		if m.hashes[shortCode] == nil {
			m.hashes[shortCode] = make(map[string]bool)
		}
		m.hashes[shortCode][visit.VisitorHash] = true
	}
	return nil
}

// clickCount reports the history length for invariant assertions.
func (m *memStore) clickCount(shortCode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clicks[shortCode])
}

// totalClicks reports the aggregate counter.
func (m *memStore) totalClicks(shortCode string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.urls[shortCode]; ok {
		return u.TotalClicks
	}
	return 0
}

// size reports how many mappings exist (mutation checks).
func (m *memStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.urls)
}
