package cache

// MarkDirty marks a post ID as dirty for the next batch commit
func (m *Manager) MarkDirty(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty[id] = true
}

// IsDirty checks if a post ID is marked dirty
func (m *Manager) IsDirty(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty[id]
}

// ClearDirty resets dirty tracking after a successful commit
func (m *Manager) ClearDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = make(map[string]bool)
}
