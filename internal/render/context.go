package render

// Entry is one name/value pair of a Context.
type Entry struct {
	Name  string
	Value string
}

// Context maps placeholder names to values and remembers the order in
// which names were first set.
type Context struct {
	entries []Entry
	index   map[string]int
}

func NewContext() *Context {
	return &Context{index: map[string]int{}}
}

// Set stores value under name. Replacing a value keeps the name's original
// position.
func (c *Context) Set(name, value string) {
	if i, ok := c.index[name]; ok {
		c.entries[i].Value = value
		return
	}

	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{Name: name, Value: value})
}

func (c *Context) Get(name string) (string, bool) {
	i, ok := c.index[name]
	if !ok {
		return "", false
	}

	return c.entries[i].Value, true
}

func (c *Context) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in insertion order.
func (c *Context) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Clone returns an independent copy of c.
func (c *Context) Clone() *Context {
	clone := NewContext()
	for _, e := range c.entries {
		clone.Set(e.Name, e.Value)
	}

	return clone
}
