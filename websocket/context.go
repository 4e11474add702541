package websocket

import "sync"

// Context is the state one service keeps for one connection. It lives from
// the registration of the service until the connection is closed.
type Context struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewContext() *Context {
	return &Context{values: make(map[string]string, 4)}
}

func (c *Context) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

func (c *Context) Set(key, value string) {
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
}

func (c *Context) Has(key string) bool {
	c.mu.RLock()
	_, ok := c.values[key]
	c.mu.RUnlock()
	return ok
}

func (c *Context) Clear() {
	c.mu.Lock()
	clear(c.values)
	c.mu.Unlock()
}

func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
