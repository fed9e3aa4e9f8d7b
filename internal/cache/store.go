// Package cache provides the process-wide verdict and metadata cache.
//
// The Store holds five independent namespaces (language, language metadata,
// security verdicts, file metrics, resolved paths). Each namespace is
// size-bounded with FIFO eviction and guarded by its own mutex, so a burst
// of writes in one namespace can never evict entries from another.
//
// Keys always include the project root. Two validators configured with
// different roots never observe each other's verdicts.
//
// Construction follows dependency injection: components receive a *Store
// via their constructors. Shared() exists for process bootstrap only;
// it returns the same lazily-initialized Store on every call.
package cache

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the per-namespace entry limit used by Shared()
// and New(0).
const DefaultCapacity = 100

// Verdict is a cached security decision for a (kind, path, root) triple.
type Verdict struct {
	Allowed bool
	Reason  string
}

// key identifies an entry within a namespace. Root is empty when no
// project root was configured at the time of the write.
type key struct {
	Path string
	Root string
}

// namespace is one bounded FIFO store. Read-modify-write eviction is
// serialized by mu; the insertion order slice and the map are always
// mutated together under the lock.
type namespace struct {
	mu       sync.Mutex
	capacity int
	entries  map[key]any
	order    []key

	hits   atomic.Int64
	misses atomic.Int64
}

func newNamespace(capacity int) *namespace {
	return &namespace{
		capacity: capacity,
		entries:  make(map[key]any, capacity),
	}
}

func (n *namespace) get(k key) (any, bool) {
	n.mu.Lock()
	v, ok := n.entries[k]
	n.mu.Unlock()

	if ok {
		n.hits.Add(1)
	} else {
		n.misses.Add(1)
	}
	return v, ok
}

// set stores a value, evicting the oldest entry once over capacity.
// Last write to a key wins; overwriting keeps the original insertion order.
func (n *namespace) set(k key, v any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.entries[k]; !exists {
		n.order = append(n.order, k)
		if len(n.order) > n.capacity {
			oldest := n.order[0]
			n.order = n.order[1:]
			delete(n.entries, oldest)
		}
	}
	n.entries[k] = v
}

func (n *namespace) len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

// clearLocked empties the namespace. Caller must hold n.mu.
func (n *namespace) clearLocked() {
	n.entries = make(map[key]any, n.capacity)
	n.order = nil
}

// Store is the shared cache. See the package documentation for the
// concurrency and eviction contract.
type Store struct {
	language     *namespace
	languageMeta *namespace
	verdicts     *namespace
	metrics      *namespace
	resolved     *namespace
}

// New creates a Store whose namespaces each hold at most capacity entries.
// A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		language:     newNamespace(capacity),
		languageMeta: newNamespace(capacity),
		verdicts:     newNamespace(capacity),
		metrics:      newNamespace(capacity),
		resolved:     newNamespace(capacity),
	}
}

var (
	sharedOnce sync.Once
	shared     *Store
)

// Shared returns the process-wide Store, creating it on first use.
// Construction is idempotent under concurrent first use: exactly one
// Store exists per process.
func Shared() *Store {
	sharedOnce.Do(func() {
		shared = New(DefaultCapacity)
	})
	return shared
}

// Language returns the cached language for a file, or "" and false.
func (s *Store) Language(path, root string) (string, bool) {
	v, ok := s.language.get(key{path, root})
	if !ok {
		return "", false
	}
	lang, ok := v.(string)
	return lang, ok
}

// SetLanguage caches the detected language for a file.
func (s *Store) SetLanguage(path, lang, root string) {
	s.language.set(key{path, root}, lang)
}

// LanguageMeta returns cached language metadata for a file.
func (s *Store) LanguageMeta(path, root string) (any, bool) {
	return s.languageMeta.get(key{path, root})
}

// SetLanguageMeta caches language metadata for a file.
func (s *Store) SetLanguageMeta(path string, meta any, root string) {
	s.languageMeta.set(key{path, root}, meta)
}

// Verdict returns a cached security verdict. The kind ("file", "dir")
// is folded into the key so file and directory checks on the same path
// never collide.
func (s *Store) Verdict(kind, path, root string) (Verdict, bool) {
	v, ok := s.verdicts.get(key{kind + "\x00" + path, root})
	if !ok {
		return Verdict{}, false
	}
	verdict, ok := v.(Verdict)
	return verdict, ok
}

// SetVerdict caches a security verdict.
func (s *Store) SetVerdict(kind, path string, v Verdict, root string) {
	s.verdicts.set(key{kind + "\x00" + path, root}, v)
}

// Metrics returns cached file metrics.
func (s *Store) Metrics(path, root string) (any, bool) {
	return s.metrics.get(key{path, root})
}

// SetMetrics caches file metrics.
func (s *Store) SetMetrics(path string, metrics any, root string) {
	s.metrics.set(key{path, root}, metrics)
}

// ResolvedPath returns a cached path resolution.
func (s *Store) ResolvedPath(raw, root string) (string, bool) {
	v, ok := s.resolved.get(key{raw, root})
	if !ok {
		return "", false
	}
	p, ok := v.(string)
	return p, ok
}

// SetResolvedPath caches a path resolution.
func (s *Store) SetResolvedPath(raw, resolved, root string) {
	s.resolved.set(key{raw, root}, resolved)
}

// Clear empties all namespaces. All five locks are held for the duration,
// so a concurrent reader sees either the full pre-clear state or an empty
// store, never a partial clear.
func (s *Store) Clear() {
	all := []*namespace{s.language, s.languageMeta, s.verdicts, s.metrics, s.resolved}
	for _, n := range all {
		n.mu.Lock()
	}
	for _, n := range all {
		n.clearLocked()
	}
	for i := len(all) - 1; i >= 0; i-- {
		all[i].mu.Unlock()
	}
}

// NamespaceStats reports size and hit counters for one namespace.
type NamespaceStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Stats reports per-namespace entry counts and hit/miss counters.
func (s *Store) Stats() map[string]NamespaceStats {
	collect := func(n *namespace) NamespaceStats {
		return NamespaceStats{
			Entries: n.len(),
			Hits:    n.hits.Load(),
			Misses:  n.misses.Load(),
		}
	}
	return map[string]NamespaceStats{
		"language":      collect(s.language),
		"language_meta": collect(s.languageMeta),
		"security":      collect(s.verdicts),
		"metrics":       collect(s.metrics),
		"resolved_path": collect(s.resolved),
	}
}
