package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/joseph-ayodele/docid/internal/fields"
)

// memo remembers results for byte-identical inputs. Eviction is FIFO.
type memo struct {
	mu      sync.Mutex
	limit   int
	order   []string
	entries map[string]Result
}

func newMemo(limit int) *memo {
	if limit <= 0 {
		return nil
	}
	return &memo{limit: limit, entries: make(map[string]Result, limit)}
}

// memoKey includes the extension because it drives format detection.
func memoKey(op, ext string, data []byte) string {
	sum := sha256.Sum256(data)
	return op + ":" + ext + ":" + hex.EncodeToString(sum[:])
}

func (m *memo) get(key string) (Result, bool) {
	if m == nil {
		return Result{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.entries[key]
	return r.clone(), ok
}

func (m *memo) put(key string, r Result) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return
	}
	if len(m.order) >= m.limit {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
	m.order = append(m.order, key)
	m.entries[key] = r.clone()
}

// clone copies the reference fields so callers cannot mutate cached entries.
func (r Result) clone() Result {
	if r.Fields != nil {
		f := make(map[fields.Name]string, len(r.Fields))
		for k, v := range r.Fields {
			f[k] = v
		}
		r.Fields = f
	}
	r.Missing = append([]fields.Name(nil), r.Missing...)
	r.Warnings = append([]string(nil), r.Warnings...)
	return r
}

func (m *memo) len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
