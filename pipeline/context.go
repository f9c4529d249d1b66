// Package pipeline provides the validation pipeline infrastructure.
package pipeline

import (
	"sync"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/hl7"
	"github.com/gohl7/validator/schema"
	"github.com/gohl7/validator/walker"
)

// Context holds all state needed during validation of a single message.
// It is passed through all validation phases and provides shared access to
// the parsed message, resolved grammar, leaf bindings and the accumulating
// report.
//
// Context instances are pooled for efficiency. Use AcquireContext() and
// Release() to manage them properly.
type Context struct {
	// Raw is the message text after MLLP frame stripping
	Raw string

	// Delimiters are the separators resolved from the message header
	Delimiters hl7.Delimiters

	// Message is the parsed message tree
	Message *hl7.Message

	// StructureID is the resolved message structure identifier
	StructureID string

	// Structure is the compiled grammar for StructureID
	Structure *schema.Structure

	// Bindings holds the leaf, field-value and coded-element bindings the
	// structural phase emits for the leaf layers
	Bindings *walker.Bindings

	// Report accumulates validation findings
	Report *hl7validator.Report

	// Options holds validation options
	Options *hl7validator.Options

	// mu protects concurrent access during parallel phase execution
	mu sync.RWMutex

	// metadata for tracking
	metadata map[string]any
}

// contextPool holds reusable Context instances.
var contextPool = sync.Pool{
	New: func() any {
		return &Context{
			Bindings: &walker.Bindings{},
			metadata: make(map[string]any, 8),
		}
	},
}

// AcquireContext gets a Context from the pool.
// Call Release() when done to return it to the pool.
func AcquireContext() *Context {
	ctx := contextPool.Get().(*Context)
	ctx.Reset()
	return ctx
}

// Release returns the Context to the pool.
// After calling Release, the Context should not be used.
func (c *Context) Release() {
	if c == nil {
		return
	}
	// Don't return contexts holding oversized binding slices
	if cap(c.Bindings.Leaves) <= 4096 {
		contextPool.Put(c)
	}
}

// Reset clears the context for reuse.
func (c *Context) Reset() {
	c.Raw = ""
	c.Delimiters = hl7.Delimiters{}
	c.Message = nil
	c.StructureID = ""
	c.Structure = nil
	c.Report = nil
	c.Options = nil

	c.Bindings.Reset()

	for k := range c.metadata {
		delete(c.metadata, k)
	}
}

// SetMetadata stores a value in the context metadata.
// Thread-safe for use during parallel phase execution.
func (c *Context) SetMetadata(key string, value any) {
	c.mu.Lock()
	c.metadata[key] = value
	c.mu.Unlock()
}

// GetMetadata retrieves a value from the context metadata.
// Thread-safe for use during parallel phase execution.
func (c *Context) GetMetadata(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.metadata[key]
	c.mu.RUnlock()
	return v, ok
}

// AddFinding adds a validation finding to the report.
// Thread-safe for use during parallel phase execution.
func (c *Context) AddFinding(f hl7validator.Finding) {
	if c.Report != nil {
		c.Report.Add(f)
	}
}

// AddError is a convenience method to add an error finding.
func (c *Context) AddError(typ hl7validator.FindingType, diagnostics string, loc hl7validator.Location) {
	if c.Report != nil {
		c.Report.AddError(typ, diagnostics, loc)
	}
}

// AddWarning is a convenience method to add a warning finding.
func (c *Context) AddWarning(typ hl7validator.FindingType, diagnostics string, loc hl7validator.Location) {
	if c.Report != nil {
		c.Report.AddWarning(typ, diagnostics, loc)
	}
}

// ShouldStop returns true if validation should stop (max errors reached).
func (c *Context) ShouldStop() bool {
	if c.Options == nil || c.Options.MaxErrors <= 0 {
		return false
	}
	if c.Report == nil {
		return false
	}
	return c.Report.ErrorCount() >= c.Options.MaxErrors
}

// NewContext creates a new Context (non-pooled).
// Prefer AcquireContext() for better performance.
func NewContext() *Context {
	return &Context{
		Bindings: &walker.Bindings{},
		metadata: make(map[string]any, 8),
	}
}

// ReleaseContext returns a Context to the pool.
// This is a convenience function equivalent to ctx.Release().
func ReleaseContext(ctx *Context) {
	if ctx != nil {
		ctx.Release()
	}
}
