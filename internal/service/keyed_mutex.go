package service

import "sync"

// KeyedMutex 按字符串键串行化操作的互斥锁
// 同一键上的调用互相排队，不同键互不阻塞；空闲键的条目会被回收
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedMutexEntry
}

type keyedMutexEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex 创建键互斥锁
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedMutexEntry)}
}

// Lock 锁定指定键，返回解锁函数
func (m *KeyedMutex) Lock(key string) func() {
	m.mu.Lock()
	entry := m.entries[key]
	if entry == nil {
		entry = &keyedMutexEntry{}
		m.entries[key] = entry
	}
	entry.refs++
	m.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		m.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(m.entries, key)
		}
		m.mu.Unlock()
	}
}
