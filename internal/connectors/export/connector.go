package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure Connector implements the interfaces.
var (
	_ driven.MessageSource  = (*Connector)(nil)
	_ driven.ChangeNotifier = (*Connector)(nil)
)

// Message subtypes with special handling.
const (
	SubtypeDeleted = "message_deleted"
	SubtypeChanged = "message_changed"
)

// message is one entry in an export file.
type message struct {
	Type      string   `json:"type"`
	Subtype   string   `json:"subtype"`
	TS        string   `json:"ts"`
	Text      string   `json:"text"`
	User      string   `json:"user"`
	ThreadTS  string   `json:"thread_ts"`
	Permalink string   `json:"permalink"`
	DeletedTS string   `json:"deleted_ts"`
	Message   *message `json:"message"`
}

// Connector serves an export directory as a paginated message source.
type Connector struct {
	root     string
	linkBase string

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
	closed   bool
}

// New creates a connector over the export at root. linkBaseURL, when set,
// builds citation links for messages that carry no permalink.
func New(root, linkBaseURL string) *Connector {
	return &Connector{
		root:     root,
		linkBase: strings.TrimRight(linkBaseURL, "/"),
	}
}

// Validate checks that the export root is a readable directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("export root error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: export root %s is not a directory", domain.ErrInvalidInput, c.root)
	}
	return nil
}

// Collections lists the collection directories in the export.
func (c *Connector) Collections() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("read export root: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !isHidden(e.Name()) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// FetchPage returns the messages in the page file named by cursor.
// An empty cursor starts at the first file.
func (c *Connector) FetchPage(ctx context.Context, collectionID, cursor string) (*domain.MessagePage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := c.collectionDir(collectionID)
	if err != nil {
		return nil, err
	}
	files, err := pageFiles(dir)
	if err != nil {
		return nil, err
	}

	// Resume at the cursor file, or the first file after it if it has gone.
	i := sort.SearchStrings(files, cursor)
	if i >= len(files) {
		return &domain.MessagePage{}, nil
	}

	msgs, err := c.readPage(collectionID, filepath.Join(dir, files[i]))
	if err != nil {
		return nil, err
	}

	page := &domain.MessagePage{Messages: msgs}
	if i+1 < len(files) {
		page.NextCursor = files[i+1]
	}
	logger.Debug("export: %s page %s: %d messages", collectionID, files[i], len(msgs))
	return page, nil
}

func (c *Connector) collectionDir(collectionID string) (string, error) {
	if collectionID == "" || collectionID != filepath.Base(collectionID) || isHidden(collectionID) {
		return "", fmt.Errorf("%w: collection %q", domain.ErrInvalidInput, collectionID)
	}
	dir := filepath.Join(c.root, collectionID)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: collection %s in %s", domain.ErrNotFound, collectionID, c.root)
		}
		return "", fmt.Errorf("stat collection: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: collection %s is not a directory", domain.ErrInvalidInput, collectionID)
	}
	return dir, nil
}

// pageFiles returns the JSON file names in dir, sorted.
func pageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && isPageFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (c *Connector) readPage(collectionID, path string) ([]domain.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	var raw []message
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode page %s: %w", filepath.Base(path), err)
	}

	out := make([]domain.RawMessage, 0, len(raw))
	for _, m := range raw {
		rm, ok := c.convert(collectionID, m)
		if ok {
			out = append(out, rm)
		}
	}
	return out, nil
}

// convert maps an export entry onto a RawMessage. Entries with no timestamp
// are dropped.
func (c *Connector) convert(collectionID string, m message) (domain.RawMessage, bool) {
	switch m.Subtype {
	case SubtypeDeleted:
		ts := m.DeletedTS
		if ts == "" {
			ts = m.TS
		}
		return domain.RawMessage{SourceID: ts, Timestamp: ts, Deleted: true}, ts != ""

	case SubtypeChanged:
		if m.Message == nil {
			return domain.RawMessage{}, false
		}
		m = *m.Message
	}

	if m.TS == "" {
		return domain.RawMessage{}, false
	}
	link := m.Permalink
	if link == "" {
		link = c.Permalink(collectionID, m.TS)
	}
	return domain.RawMessage{
		SourceID:        m.TS,
		Text:            m.Text,
		Timestamp:       m.TS,
		ThreadTimestamp: m.ThreadTS,
		AuthorID:        m.User,
		Link:            link,
	}, true
}

// Permalink derives a citation link for a message, or "" when no base URL
// is configured.
func (c *Connector) Permalink(collectionID, ts string) string {
	if c.linkBase == "" || ts == "" {
		return ""
	}
	return c.linkBase + "/archives/" + collectionID + "/p" + strings.ReplaceAll(ts, ".", "")
}

// Changes signals whenever a page file in the collection is created,
// written, renamed or removed. The channel is closed when ctx is cancelled.
func (c *Connector) Changes(ctx context.Context, collectionID string) (<-chan struct{}, error) {
	dir, err := c.collectionDir(collectionID)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		watcher.Close()
		return nil, fmt.Errorf("%w: connector closed", domain.ErrSourceUnavailable)
	}
	c.watchers = append(c.watchers, watcher)
	c.mu.Unlock()

	changes := make(chan struct{}, 1)
	go c.watch(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) watch(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- struct{}) {
	defer close(changes)
	defer c.release(watcher)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isRelevant(event) {
				continue
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("export: watch error: %v", err)
		}
	}
}

func (c *Connector) release(watcher *fsnotify.Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.watchers {
		if w == watcher {
			c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
			break
		}
	}
	watcher.Close()
}

func isRelevant(event fsnotify.Event) bool {
	if !isPageFile(filepath.Base(event.Name)) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func isPageFile(name string) bool {
	return !isHidden(name) && strings.EqualFold(filepath.Ext(name), ".json")
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Close stops all watchers.
func (c *Connector) Close() error {
	c.mu.Lock()
	watchers := c.watchers
	c.watchers = nil
	c.closed = true
	c.mu.Unlock()

	for _, w := range watchers {
		w.Close()
	}
	return nil
}
