package model

import (
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
)

// ErrWorkspaceNotFound is returned when a workspace is not found in the registry
var ErrWorkspaceNotFound = goerr.New("workspace not found")

// Workspace is one tenant partition. It owns its slot registry, contact
// directory and message templates; deleting it purges all derived mappings.
type Workspace struct {
	ID        types.WorkspaceID
	Name      string
	Slots     *SlotRegistry
	Templates MessageTemplates

	mu        sync.RWMutex
	directory *ContactDirectory
}

// NewWorkspace creates a workspace with an empty slot registry and directory.
func NewWorkspace(id types.WorkspaceID, name string, templates MessageTemplates) *Workspace {
	return &Workspace{
		ID:        id,
		Name:      name,
		Slots:     NewSlotRegistry(),
		Templates: templates,
		directory: NewContactDirectory(),
	}
}

// Directory returns the current contact directory.
func (w *Workspace) Directory() *ContactDirectory {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.directory
}

// SetDirectory replaces the contact directory wholesale. Rebuilds never merge
// with prior state.
func (w *Workspace) SetDirectory(dir *ContactDirectory) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.directory = dir
}

// WorkspaceRegistry routes workspace IDs and inbound sender addresses to
// workspaces. The address index is rebuilt alongside directory construction.
type WorkspaceRegistry struct {
	mu        sync.RWMutex
	entries   map[types.WorkspaceID]*Workspace
	order     []types.WorkspaceID
	addrIndex map[types.Address]types.WorkspaceID
}

// NewWorkspaceRegistry creates a new empty WorkspaceRegistry
func NewWorkspaceRegistry() *WorkspaceRegistry {
	return &WorkspaceRegistry{
		entries:   make(map[types.WorkspaceID]*Workspace),
		addrIndex: make(map[types.Address]types.WorkspaceID),
	}
}

// Register adds a workspace to the registry
func (r *WorkspaceRegistry) Register(ws *Workspace) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[ws.ID]; !exists {
		r.order = append(r.order, ws.ID)
	}
	r.entries[ws.ID] = ws
}

// Get retrieves a workspace by ID
func (r *WorkspaceRegistry) Get(id types.WorkspaceID) (*Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, ok := r.entries[id]
	if !ok {
		return nil, goerr.Wrap(ErrWorkspaceNotFound, "workspace not found",
			goerr.V("workspace_id", id))
	}
	return ws, nil
}

// List returns all registered workspaces in registration order
func (r *WorkspaceRegistry) List() []*Workspace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Workspace, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id])
	}
	return result
}

// Delete removes a workspace and purges its address index entries.
func (r *WorkspaceRegistry) Delete(id types.WorkspaceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return goerr.Wrap(ErrWorkspaceNotFound, "workspace not found",
			goerr.V("workspace_id", id))
	}
	delete(r.entries, id)
	for i, wsID := range r.order {
		if wsID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for addr, wsID := range r.addrIndex {
		if wsID == id {
			delete(r.addrIndex, addr)
		}
	}
	return nil
}

// IndexAddresses replaces the address routing entries of one workspace with
// the given set.
func (r *WorkspaceRegistry) IndexAddresses(id types.WorkspaceID, addrs []types.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for addr, wsID := range r.addrIndex {
		if wsID == id {
			delete(r.addrIndex, addr)
		}
	}
	for _, addr := range addrs {
		r.addrIndex[addr] = id
	}
}

// RouteAddress resolves an inbound sender address to its workspace.
func (r *WorkspaceRegistry) RouteAddress(addr types.Address) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.addrIndex[addr]
	if !ok {
		return nil, false
	}
	ws, ok := r.entries[id]
	return ws, ok
}
