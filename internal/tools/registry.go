package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"riabuilder/internal/logging"
)

// Registry holds all available tools and provides lookup and dispatch.
// It is thread-safe and supports registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool

	// byCategory provides fast lookup by category.
	byCategory map[ToolCategory][]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]*Tool),
		byCategory: make(map[ToolCategory][]*Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	r.tools[tool.Name] = tool
	r.byCategory[tool.Category] = append(r.byCategory[tool.Category], tool)

	logging.ToolsDebug("Registered tool: %s (category=%s)", tool.Name, tool.Category)
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at wiring time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// GetByCategory returns all tools in a category, sorted by name.
func (r *Registry) GetByCategory(category ToolCategory) []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, len(r.byCategory[category]))
	copy(out, r.byCategory[category])
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// All returns all registered tools in catalogue order: category order
// first, then name.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Tool, 0, len(r.tools))
	for _, category := range CategoryOrder {
		cat := make([]*Tool, len(r.byCategory[category]))
		copy(cat, r.byCategory[category])
		sort.Slice(cat, func(i, j int) bool {
			return cat[i].Name < cat[j].Name
		})
		result = append(result, cat...)
	}
	return result
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs a tool by name with the given arguments. An unknown name
// or failed invocation comes back as an error-carrying ToolResult so the
// caller can still render it into the reply.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) *ToolResult {
	start := time.Now()

	tool := r.Get(name)
	if tool == nil {
		return &ToolResult{
			ToolName:   name,
			Error:      fmt.Errorf("%w: %s", ErrToolNotFound, name),
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	if err := validateArgs(tool, args); err != nil {
		return &ToolResult{
			ToolName:   tool.Name,
			Category:   tool.Category,
			Error:      err,
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	logging.ToolsDebug("Executing tool: %s", tool.Name)
	result, err := tool.Execute(ctx, args)
	duration := time.Since(start)
	logging.Tools("Tool %s completed in %v (success=%v)", tool.Name, duration, err == nil)

	return &ToolResult{
		ToolName:   tool.Name,
		Category:   tool.Category,
		Result:     result,
		Error:      err,
		DurationMs: duration.Milliseconds(),
	}
}

// validateArgs checks that all required arguments are present.
func validateArgs(tool *Tool, args map[string]any) error {
	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}
	return nil
}
