package parser

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry holds the parsers of all registered languages
type Registry struct {
	mu       sync.RWMutex
	parsers  map[string]*Parser
	byExt    map[string][]*Parser
	override map[string]string // extension -> language name
	disabled map[string]bool
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:  make(map[string]*Parser),
		byExt:    make(map[string][]*Parser),
		override: make(map[string]string),
		disabled: make(map[string]bool),
	}
}

// Register builds and adds the parser for a language
func (r *Registry) Register(lang Language) *Parser {
	p := New(lang)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers[lang.Name()] = p
	for _, ext := range lang.Extensions() {
		ext = normalizeExt(ext)
		list := append(r.byExt[ext], p)
		sort.SliceStable(list, func(i, j int) bool {
			return priority(list[i].lang) > priority(list[j].lang)
		})
		r.byExt[ext] = list
	}
	return p
}

// MapExtension routes files with ext to the named language
func (r *Registry) MapExtension(ext, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override[normalizeExt(ext)] = name
}

// Disable hides a language from lookups
func (r *Registry) Disable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[name] = true
}

// Get returns the parser registered under name
func (r *Registry) Get(name string) (*Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[strings.ToLower(name)]
	if !ok || r.disabled[p.Name()] {
		return nil, false
	}
	return p, true
}

// ForPath returns the parser handling the file at path
func (r *Registry) ForPath(path string) (*Parser, bool) {
	ext := normalizeExt(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.override[ext]; ok {
		if p, ok := r.parsers[name]; ok && !r.disabled[name] {
			return p, true
		}
	}
	for _, p := range r.byExt[ext] {
		if !r.disabled[p.Name()] {
			return p, true
		}
	}
	return nil, false
}

// Supports reports whether some enabled language handles path
func (r *Registry) Supports(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// Names returns the enabled language names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		if !r.disabled[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func priority(lang Language) int {
	if p, ok := lang.(Prioritized); ok {
		return p.Priority()
	}
	return 0
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
