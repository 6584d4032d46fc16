package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/google/uuid"
)

// TenantStore wraps a BlobStore so every path is namespaced under the
// caller's tenant id. Writes prefix; reads and deletes verify the prefix
// before the backend is called, so a cross-tenant path never leaves the
// process.
type TenantStore struct {
	inner    BlobStore
	tenantID uuid.UUID
}

// ForTenant scopes a blob store to one tenant
func ForTenant(inner BlobStore, tenantID uuid.UUID) *TenantStore {
	return &TenantStore{inner: inner, tenantID: tenantID}
}

// Put stores data under a tenant-relative path and returns the full
// namespaced path for persisting on the owning record.
func (t *TenantStore) Put(ctx context.Context, rel string, data []byte, contentType string) (string, error) {
	full, err := t.scope(rel)
	if err != nil {
		return "", err
	}
	if err := t.inner.Put(ctx, full, data, contentType); err != nil {
		return "", apperr.Wrap(apperr.CodeUpstream, "blob write failed", err)
	}
	return full, nil
}

// Get reads a previously stored full path, rejecting foreign prefixes
func (t *TenantStore) Get(ctx context.Context, full string) ([]byte, error) {
	if err := t.checkOwned(full); err != nil {
		return nil, err
	}
	data, err := t.inner.Get(ctx, full)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUpstream, "blob read failed", err)
	}
	return data, nil
}

// List lists keys under a tenant-relative prefix
func (t *TenantStore) List(ctx context.Context, relPrefix string) ([]string, error) {
	full, err := t.scope(relPrefix)
	if err != nil {
		return nil, err
	}
	keys, err := t.inner.List(ctx, full)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUpstream, "blob list failed", err)
	}
	return keys, nil
}

// Delete removes a previously stored full path, rejecting foreign prefixes
func (t *TenantStore) Delete(ctx context.Context, full string) error {
	if err := t.checkOwned(full); err != nil {
		return err
	}
	if err := t.inner.Delete(ctx, full); err != nil {
		return apperr.Wrap(apperr.CodeUpstream, "blob delete failed", err)
	}
	return nil
}

// SignURL signs a previously stored full path, rejecting foreign prefixes
func (t *TenantStore) SignURL(ctx context.Context, full string, expiry time.Duration) (string, error) {
	if err := t.checkOwned(full); err != nil {
		return "", err
	}
	url, err := t.inner.SignURL(ctx, full, expiry)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUpstream, "blob sign failed", err)
	}
	return url, nil
}

// scope turns a tenant-relative path into the namespaced key
func (t *TenantStore) scope(rel string) (string, error) {
	cleaned := path.Clean("/" + rel)
	if strings.Contains(rel, "..") || cleaned == "/" {
		return "", apperr.Newf(apperr.CodeInvalid, "invalid blob path %q", rel)
	}
	return t.tenantID.String() + cleaned, nil
}

// checkOwned rejects any full path outside this tenant's namespace
func (t *TenantStore) checkOwned(full string) error {
	if !strings.HasPrefix(full, t.tenantID.String()+"/") {
		return apperr.New(apperr.CodeNotFound, "blob not found")
	}
	return nil
}
