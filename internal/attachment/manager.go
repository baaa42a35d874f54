package attachment

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"autuacao-mobile/internal/model"
)

type Kind string

const (
	KindImage    Kind = "IMAGE"
	KindDocument Kind = "DOCUMENT"
)

// Attachment owns one picked file for the duration of the editing session.
// Only filename metadata outlives the session.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Kind        Kind      `json:"kind"`
	PreviewPath string    `json:"preview_path,omitempty"`
	Content     []byte    `json:"-"`
}

// File is an incoming picked file before classification.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Manager tracks the session's attachments under a count cap. Images get a
// preview handle on add; every handle is released exactly once, on removal
// or on Clear.
type Manager struct {
	previews PreviewStore
	max      int
	log      zerolog.Logger

	mu    sync.Mutex
	items []Attachment
}

func NewManager(previews PreviewStore, max int, log zerolog.Logger) *Manager {
	return &Manager{
		previews: previews,
		max:      max,
		log:      log.With().Str("component", "attachments").Logger(),
	}
}

// Add appends as many of the given files as the cap allows, in order.
// Files beyond the cap are dropped with an informational notice.
func (m *Manager) Add(files []File) ([]Attachment, []model.Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.max - len(m.items)
	if room <= 0 {
		return nil, []model.Notice{model.InfoNotice(m.capNotice())}
	}

	var notices []model.Notice
	if len(files) > room {
		notices = append(notices, model.InfoNotice(m.capNotice()))
		files = files[:room]
	}

	added := make([]Attachment, 0, len(files))
	for _, f := range files {
		att := Attachment{
			ID:          uuid.New(),
			Name:        f.Name,
			ContentType: f.ContentType,
			Kind:        classify(f.ContentType),
			Content:     f.Content,
		}
		if att.Kind == KindImage {
			path, err := m.previews.Acquire(att.ID, att.Name, f.Content)
			if err != nil {
				m.log.Warn().Err(err).Str("name", f.Name).Msg("preview acquisition failed")
			} else {
				att.PreviewPath = path
			}
		}
		m.items = append(m.items, att)
		added = append(added, att)
	}
	return added, notices
}

// Remove releases the attachment's preview (if any) and drops it from the
// list. Unknown ids are a no-op, which makes repeated removal idempotent.
func (m *Manager) Remove(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, att := range m.items {
		if att.ID != id {
			continue
		}
		m.release(att)
		m.items = append(m.items[:i], m.items[i+1:]...)
		return true
	}
	return false
}

// Clear releases every preview handle. Called on successful submit and on
// form unmount so no handle outlives the session.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, att := range m.items {
		m.release(att)
	}
	m.items = nil
}

func (m *Manager) List() []Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Attachment(nil), m.items...)
}

func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.items))
	for _, att := range m.items {
		names = append(names, att.Name)
	}
	return names
}

// Single returns the attachment when exactly one is present, which is the
// remote-submission readiness condition.
func (m *Manager) Single() (Attachment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) != 1 {
		return Attachment{}, false
	}
	return m.items[0], true
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Manager) release(att Attachment) {
	if att.PreviewPath == "" {
		return
	}
	if err := m.previews.Release(att.PreviewPath); err != nil {
		m.log.Warn().Err(err).Str("path", att.PreviewPath).Msg("preview release failed")
	}
}

func (m *Manager) capNotice() string {
	if m.max == 1 {
		return "Apenas um anexo é permitido por auto."
	}
	return fmt.Sprintf("No máximo %d anexos são permitidos por auto.", m.max)
}

func classify(contentType string) Kind {
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return KindImage
	}
	return KindDocument
}
