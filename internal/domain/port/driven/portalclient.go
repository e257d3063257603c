package driven

import (
	"context"
	"errors"

	"github.com/mapops/volcsync/internal/domain/model"
)

// ErrAuthenticationFailed is returned by Authenticate when the portal
// rejects the credentials or cannot be reached for the handshake.
var ErrAuthenticationFailed = errors.New("portal authentication failed")

// ErrItemNotFound is returned by GetItemByID when the portal has no item
// for the requested identifier.
var ErrItemNotFound = errors.New("portal item not found")

// ErrOverwriteFailed is returned when the portal rejects the replacement
// payload; the wrapping error carries any portal-provided diagnostic.
var ErrOverwriteFailed = errors.New("feature layer overwrite failed")

// PortalClient defines the driven port for the GIS portal. A client is
// bound to one portal URL; Authenticate performs the handshake and yields
// a session valid for the remainder of the run.
type PortalClient interface {
	Authenticate(ctx context.Context, username, password string) (PortalSession, error)
}

// PortalSession is an authenticated handle to the portal. Sessions are
// never cached across runs.
type PortalSession interface {
	// GetItemByID resolves the hosted layer item for the given identifier.
	GetItemByID(ctx context.Context, itemID string) (*model.PortalItem, error)

	// OverwriteCollectionData replaces the served data of the feature
	// layer collection backing item with the contents of the local file.
	// Atomic from the caller's perspective: success or ErrOverwriteFailed,
	// no partial-apply visibility.
	OverwriteCollectionData(ctx context.Context, item model.PortalItem, datasetPath string) error
}
