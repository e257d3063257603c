package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapops/volcsync/internal/domain/model"
	"github.com/mapops/volcsync/internal/domain/port/driven"
)

type fakeSource struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeDatasetStore struct {
	written []byte
	err     error
	calls   int
}

func (f *fakeDatasetStore) Write(ctx context.Context, data []byte) (model.Dataset, error) {
	f.calls++
	if f.err != nil {
		return model.Dataset{}, f.err
	}
	f.written = data
	return model.Dataset{Path: "volcano.geojson", Bytes: int64(len(data)), WrittenAt: time.Now()}, nil
}

type fakeSecrets struct {
	secret string
	err    error
	calls  int
}

func (f *fakeSecrets) Get(ctx context.Context, service, account string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.secret, nil
}

type fakeSession struct {
	item           *model.PortalItem
	getErr         error
	overwriteErr   error
	overwriteCalls int
	gotPath        string
}

func (f *fakeSession) GetItemByID(ctx context.Context, itemID string) (*model.PortalItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.item, nil
}

func (f *fakeSession) OverwriteCollectionData(ctx context.Context, item model.PortalItem, datasetPath string) error {
	f.overwriteCalls++
	f.gotPath = datasetPath
	return f.overwriteErr
}

type fakePortal struct {
	session *fakeSession
	err     error
	calls   int
	gotUser string
	gotPass string
}

func (f *fakePortal) Authenticate(ctx context.Context, username, password string) (driven.PortalSession, error) {
	f.calls++
	f.gotUser = username
	f.gotPass = password
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeRunStore struct {
	recs      []model.RunRecord
	appendErr error
}

func (f *fakeRunStore) Append(ctx context.Context, rec model.RunRecord) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.recs = append(f.recs, rec)
	return int64(len(f.recs)), nil
}

func (f *fakeRunStore) ListRecent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	return f.recs, nil
}

// harness bundles the fakes behind a wired SyncService.
type harness struct {
	source   *fakeSource
	datasets *fakeDatasetStore
	secrets  *fakeSecrets
	portal   *fakePortal
	runs     *fakeRunStore
	svc      *SyncService
}

func newHarness() *harness {
	h := &harness{
		source:   &fakeSource{data: []byte(`{"features":[],"type":"FeatureCollection"}`)},
		datasets: &fakeDatasetStore{},
		secrets:  &fakeSecrets{secret: "pw1"},
		portal: &fakePortal{session: &fakeSession{
			item: &model.PortalItem{ID: "abc123", Title: "Volcanoes", Owner: "svc"},
		}},
		runs: &fakeRunStore{},
	}
	h.svc = NewSyncService(h.source, h.datasets, h.secrets, h.portal, h.runs, "svc", "abc123")
	return h
}

func TestRun_HappyPath(t *testing.T) {
	h := newHarness()

	rec, err := h.svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.RunStateOverwritten, rec.State)
	assert.Equal(t, "abc123", rec.ItemID)
	assert.Equal(t, "volcano.geojson", rec.DatasetPath)
	assert.Equal(t, int64(len(h.source.data)), rec.DatasetBytes)
	assert.Empty(t, rec.Error)
	assert.False(t, rec.FinishedAt.Before(rec.StartedAt))

	assert.Equal(t, 1, h.source.calls)
	assert.Equal(t, h.source.data, h.datasets.written)
	assert.Equal(t, "svc", h.portal.gotUser)
	assert.Equal(t, "pw1", h.portal.gotPass)
	assert.Equal(t, 1, h.portal.session.overwriteCalls)
	assert.Equal(t, "volcano.geojson", h.portal.session.gotPath)

	require.Len(t, h.runs.recs, 1)
	assert.Equal(t, model.RunStateOverwritten, h.runs.recs[0].State)
}

func TestRun_FetchFailureStopsBeforeCredential(t *testing.T) {
	h := newHarness()
	h.source.err = driven.ErrRemoteFetch

	rec, err := h.svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrRemoteFetch)
	assert.Equal(t, model.RunStateFailed, rec.State)
	assert.Zero(t, h.datasets.calls)
	assert.Zero(t, h.secrets.calls)
	assert.Zero(t, h.portal.calls)

	require.Len(t, h.runs.recs, 1)
	assert.Equal(t, model.RunStateFailed, h.runs.recs[0].State)
	assert.NotEmpty(t, h.runs.recs[0].Error)
}

func TestRun_PersistFailureStopsBeforeCredential(t *testing.T) {
	h := newHarness()
	h.datasets.err = errors.New("disk full")

	rec, err := h.svc.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist dataset")
	assert.Equal(t, model.RunStateFailed, rec.State)
	assert.Zero(t, h.secrets.calls)
	assert.Zero(t, h.portal.calls)
}

func TestRun_MissingCredentialStopsBeforePortal(t *testing.T) {
	h := newHarness()
	h.secrets.err = driven.ErrSecretNotFound

	rec, err := h.svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrSecretNotFound)
	assert.Equal(t, model.RunStateFailed, rec.State)
	// The dataset was already fetched and persisted.
	assert.Equal(t, 1, h.datasets.calls)
	assert.Zero(t, h.portal.calls)
}

func TestRun_AuthenticationFailure(t *testing.T) {
	h := newHarness()
	h.portal.err = driven.ErrAuthenticationFailed

	rec, err := h.svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrAuthenticationFailed)
	assert.Equal(t, model.RunStateFailed, rec.State)
	assert.Zero(t, h.portal.session.overwriteCalls)
}

func TestRun_ItemNotFoundSkipsOverwrite(t *testing.T) {
	h := newHarness()
	h.portal.session.getErr = driven.ErrItemNotFound

	rec, err := h.svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrItemNotFound)
	assert.Equal(t, model.RunStateFailed, rec.State)
	assert.Zero(t, h.portal.session.overwriteCalls)
}

func TestRun_OverwriteFailureKeepsDataset(t *testing.T) {
	h := newHarness()
	h.portal.session.overwriteErr = driven.ErrOverwriteFailed

	rec, err := h.svc.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrOverwriteFailed)
	assert.Equal(t, model.RunStateFailed, rec.State)
	// The downloaded file stays recorded for the next run to reuse.
	assert.Equal(t, "volcano.geojson", rec.DatasetPath)
	assert.Positive(t, rec.DatasetBytes)
}

func TestRun_AppendFailureDoesNotMaskOutcome(t *testing.T) {
	h := newHarness()
	h.runs.appendErr = errors.New("history db locked")

	rec, err := h.svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.RunStateOverwritten, rec.State)
}

func TestRun_Idempotent(t *testing.T) {
	h := newHarness()

	first, err := h.svc.Run(context.Background())
	require.NoError(t, err)
	firstWritten := append([]byte(nil), h.datasets.written...)

	second, err := h.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, firstWritten, h.datasets.written)
	assert.Equal(t, first.DatasetBytes, second.DatasetBytes)
	assert.Equal(t, 2, h.portal.session.overwriteCalls)
	assert.Len(t, h.runs.recs, 2)
}

func TestRun_RecordsDuration(t *testing.T) {
	h := newHarness()

	rec, err := h.svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, rec.FinishedAt.Sub(rec.StartedAt), rec.Duration)
	require.Len(t, h.runs.recs, 1)
	assert.Equal(t, rec.Duration, h.runs.recs[0].Duration)
}
