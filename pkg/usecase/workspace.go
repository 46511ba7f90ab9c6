package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slotcast-dev/slotcast/pkg/domain/model"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/utils/logging"
)

// WorkspaceSnapshot is a consistent read of one workspace's state.
type WorkspaceSnapshot struct {
	ID        types.WorkspaceID
	Name      string
	Slots     []*model.TimeSlot
	OpenSlots int
	Contacts  []*model.ContactRecord
}

// CreateWorkspace opens the record store behind directorySource, builds the
// contact directory from it, and registers the workspace. An empty id gets a
// generated one.
func (uc *UseCases) CreateWorkspace(ctx context.Context, id types.WorkspaceID, name, directorySource string, templates model.MessageTemplates) (*model.Workspace, error) {
	if id == "" {
		id = types.WorkspaceID(uuid.NewString())
	}
	if name == "" {
		name = string(id)
	}
	if templates.Broadcast == "" || templates.Confirm == "" {
		defaults := model.DefaultTemplates()
		if templates.Broadcast == "" {
			templates.Broadcast = defaults.Broadcast
		}
		if templates.Confirm == "" {
			templates.Confirm = defaults.Confirm
		}
	}

	store, err := uc.stores(ctx, directorySource)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open record store",
			goerr.V(WorkspaceIDKey, id), goerr.V("source", directorySource))
	}

	dir, addrs, err := uc.dirBuilder.Build(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, goerr.Wrap(err, "failed to build contact directory",
			goerr.V(WorkspaceIDKey, id))
	}

	ws := model.NewWorkspace(id, name, templates)
	ws.SetDirectory(dir)
	uc.registry.Register(ws)
	uc.registry.IndexAddresses(id, addrs)
	uc.setStore(id, store)

	logging.From(ctx).Info("workspace created",
		"workspace_id", id,
		"contacts", len(dir.Contacts()),
	)
	return ws, nil
}

// ReloadDirectory rebuilds the contact directory from the current store
// contents, fully replacing the previous maps.
func (uc *UseCases) ReloadDirectory(ctx context.Context, id types.WorkspaceID) error {
	ws, err := uc.registry.Get(id)
	if err != nil {
		return err
	}
	store, ok := uc.store(id)
	if !ok {
		return goerr.Wrap(ErrNoDirectory, "workspace has no record store",
			goerr.V(WorkspaceIDKey, id))
	}

	dir, addrs, err := uc.dirBuilder.Build(ctx, store)
	if err != nil {
		return goerr.Wrap(err, "failed to rebuild contact directory",
			goerr.V(WorkspaceIDKey, id))
	}

	ws.SetDirectory(dir)
	uc.registry.IndexAddresses(id, addrs)

	logging.From(ctx).Info("directory reloaded",
		"workspace_id", id,
		"contacts", len(dir.Contacts()),
	)
	return nil
}

// GetWorkspaceSnapshot returns a consistent copy of slots and contacts.
func (uc *UseCases) GetWorkspaceSnapshot(ctx context.Context, id types.WorkspaceID) (*WorkspaceSnapshot, error) {
	ws, err := uc.registry.Get(id)
	if err != nil {
		return nil, err
	}

	return &WorkspaceSnapshot{
		ID:        ws.ID,
		Name:      ws.Name,
		Slots:     ws.Slots.AllSlots(),
		OpenSlots: ws.Slots.OpenCount(),
		Contacts:  ws.Directory().Contacts(),
	}, nil
}

// ListWorkspaces returns all registered workspaces.
func (uc *UseCases) ListWorkspaces(ctx context.Context) []*model.Workspace {
	return uc.registry.List()
}

// DeleteWorkspace removes the workspace, purges its routing entries and
// closes its record store.
func (uc *UseCases) DeleteWorkspace(ctx context.Context, id types.WorkspaceID) error {
	if err := uc.registry.Delete(id); err != nil {
		return err
	}
	if store, ok := uc.removeStore(id); ok {
		if err := store.Close(); err != nil {
			logging.From(ctx).Error("failed to close record store",
				"workspace_id", id, "error", err.Error())
		}
	}

	logging.From(ctx).Info("workspace deleted", "workspace_id", id)
	return nil
}
