package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mapops/volcsync/internal/domain/model"
	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PortalSession = (*Session)(nil)

// Session is an authenticated portal handle, valid for one run.
type Session struct {
	client   *Client
	token    string
	username string
}

// itemResponse is the content item lookup response body.
type itemResponse struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Type  string    `json:"type"`
	Owner string    `json:"owner"`
	URL   string    `json:"url"`
	Error *apiError `json:"error"`
}

// updateResponse covers both the item update and publish responses.
type updateResponse struct {
	Success  bool      `json:"success"`
	Services []service `json:"services"`
	Error    *apiError `json:"error"`
}

type service struct {
	ServiceItemID string    `json:"serviceItemId"`
	ServiceURL    string    `json:"serviceurl"`
	Error         *apiError `json:"error"`
}

// GetItemByID resolves the hosted layer item for itemID. The portal
// reports a missing item as a logical error inside a 200; that maps to
// driven.ErrItemNotFound. Other error envelopes (expired token, denied
// access) surface with the portal diagnostic instead.
func (s *Session) GetItemByID(ctx context.Context, itemID string) (*model.PortalItem, error) {
	endpoint := s.client.baseURL + "/sharing/rest/content/items/" + itemID

	var ir itemResponse
	query := url.Values{"f": {"json"}, "token": {s.token}}
	if err := s.client.get(ctx, endpoint, query, &ir); err != nil {
		return nil, fmt.Errorf("resolving item %s: %w", itemID, err)
	}
	if ir.Error != nil {
		if isMissingItem(ir.Error) {
			return nil, fmt.Errorf("%w: %s (%s)", driven.ErrItemNotFound, itemID, ir.Error.text())
		}
		return nil, fmt.Errorf("resolving item %s: portal error %d: %s", itemID, ir.Error.Code, ir.Error.text())
	}
	if ir.ID == "" {
		return nil, fmt.Errorf("%w: %s", driven.ErrItemNotFound, itemID)
	}

	return &model.PortalItem{
		ID:    ir.ID,
		Title: ir.Title,
		Type:  ir.Type,
		Owner: ir.Owner,
		URL:   ir.URL,
	}, nil
}

// isMissingItem reports whether the envelope describes an absent or
// inaccessible item, as opposed to a token or permission failure.
func isMissingItem(e *apiError) bool {
	return strings.Contains(strings.ToLower(e.Message), "does not exist")
}

// OverwriteCollectionData replaces the feature layer collection's data
// with the local file: the source item's data is updated via multipart
// upload, then the item is republished with overwrite enabled. Either
// step failing wraps driven.ErrOverwriteFailed with the portal diagnostic.
func (s *Session) OverwriteCollectionData(ctx context.Context, item model.PortalItem, datasetPath string) error {
	if err := s.updateItemData(ctx, item, datasetPath); err != nil {
		return err
	}

	if err := s.publishOverwrite(ctx, item); err != nil {
		return err
	}

	slog.Debug("feature layer overwritten", "item_id", item.ID, "file", datasetPath)
	return nil
}

// updateItemData uploads the dataset file as the item's new source data.
func (s *Session) updateItemData(ctx context.Context, item model.PortalItem, datasetPath string) error {
	endpoint := fmt.Sprintf("%s/sharing/rest/content/users/%s/items/%s/update",
		s.client.baseURL, item.Owner, item.ID)

	f, err := os.Open(datasetPath)
	if err != nil {
		return fmt.Errorf("%w: opening dataset %s: %v", driven.ErrOverwriteFailed, datasetPath, err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUpdateForm(mw, s.token, datasetPath, f)
		if closeErr := mw.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return fmt.Errorf("building update request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var ur updateResponse
	if err := s.client.decode(req, &ur); err != nil {
		return fmt.Errorf("%w: %v", driven.ErrOverwriteFailed, err)
	}
	if ur.Error != nil {
		return fmt.Errorf("%w: %s", driven.ErrOverwriteFailed, ur.Error.text())
	}
	if !ur.Success {
		return fmt.Errorf("%w: item update reported success=false", driven.ErrOverwriteFailed)
	}

	return nil
}

// writeUpdateForm emits the multipart fields and streams the dataset file.
func writeUpdateForm(mw *multipart.Writer, token, datasetPath string, f *os.File) error {
	fields := map[string]string{
		"f":        "json",
		"token":    token,
		"async":    "false",
		"filename": filepath.Base(datasetPath),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", filepath.Base(datasetPath))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

// publishOverwrite republishes the item's hosted service from the
// uploaded source data, replacing the served features.
func (s *Session) publishOverwrite(ctx context.Context, item model.PortalItem) error {
	endpoint := fmt.Sprintf("%s/sharing/rest/content/users/%s/items/%s/publish",
		s.client.baseURL, item.Owner, item.ID)

	params, err := json.Marshal(map[string]string{"name": item.Title})
	if err != nil {
		return fmt.Errorf("encoding publish parameters: %w", err)
	}

	form := url.Values{
		"f":                 {"json"},
		"token":             {s.token},
		"fileType":          {"geojson"},
		"overwrite":         {"true"},
		"publishParameters": {string(params)},
	}

	var ur updateResponse
	if err := s.client.postForm(ctx, endpoint, form, &ur); err != nil {
		return fmt.Errorf("%w: %v", driven.ErrOverwriteFailed, err)
	}
	if ur.Error != nil {
		return fmt.Errorf("%w: %s", driven.ErrOverwriteFailed, ur.Error.text())
	}
	for _, svc := range ur.Services {
		if svc.Error != nil {
			return fmt.Errorf("%w: %s", driven.ErrOverwriteFailed, svc.Error.text())
		}
	}
	if len(ur.Services) == 0 {
		return fmt.Errorf("%w: publish returned no services", driven.ErrOverwriteFailed)
	}

	return nil
}
