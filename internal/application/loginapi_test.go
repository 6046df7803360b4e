package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/logingate/internal/adapter/driven/memory"
	"github.com/ericfisherdev/logingate/internal/domain/model"
	"github.com/ericfisherdev/logingate/internal/domain/port/driven"
)

// --- Mock implementations ---

// mockLoginStore serves a fixed enumeration and can fail on demand.
type mockLoginStore struct {
	logins    []model.LoginInfo
	listErr   error
	removeErr error
	failAt    int // RemoveLogin fails on this call index (0-based); -1 never.
	removed   []model.LoginInfo
	added     []model.LoginInfo
}

func (m *mockLoginStore) GetAllLogins(_ context.Context) ([]model.LoginInfo, error) {
	return m.logins, m.listErr
}

func (m *mockLoginStore) AddLogin(_ context.Context, login model.LoginInfo) error {
	m.added = append(m.added, login)
	return nil
}

func (m *mockLoginStore) RemoveLogin(_ context.Context, login model.LoginInfo) error {
	if len(m.removed) == m.failAt {
		return m.removeErr
	}
	m.removed = append(m.removed, login)
	return nil
}

// --- Test helpers ---

func testRecord2() model.Record {
	return model.Record{
		FormSubmitURL: model.StringPtr("https://test2.mozilla.com/somepage"),
		Origin:        "https://test2.mozilla.com",
		Realm:         nil,
		Username:      "joe",
		Password:      "joes sekrit password",
		UsernameField: model.StringPtr("username"),
		PasswordField: model.StringPtr("password"),
	}
}

func requireRejection(t *testing.T, err error, kind RejectionKind, message string) {
	t.Helper()
	require.Error(t, err)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, kind, rej.Kind)
	assert.Equal(t, message, err.Error())
}

type apiPair struct {
	store        *memory.LoginStore
	privileged   *LoginAPI
	unprivileged *LoginAPI
}

func newAPIPair(t *testing.T) apiPair {
	t.Helper()
	store := memory.NewLoginStore()
	return apiPair{
		store:        store,
		privileged:   NewLoginAPI(store, newCaller(t, "<all_urls>"), slog.Default()),
		unprivileged: NewLoginAPI(store, newCaller(t), slog.Default()),
	}
}

// --- Search ---

func TestLoginAPI_SearchEmptyStore(t *testing.T) {
	apis := newAPIPair(t)
	ctx := context.Background()

	got, err := apis.privileged.Search(ctx, model.Query{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = apis.unprivileged.Search(ctx, model.Query{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoginAPI_SearchVisibility(t *testing.T) {
	apis := newAPIPair(t)
	ctx := context.Background()

	info := sampleLogin()
	require.NoError(t, apis.store.AddLogin(ctx, info))

	got, err := apis.unprivileged.Search(ctx, model.Query{})
	require.NoError(t, err)
	assert.Empty(t, got, "unprivileged caller must not see the login")

	got, err = apis.privileged.Search(ctx, model.Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ToPublic(info), got[0])

	got, err = apis.privileged.Search(ctx, model.Query{Username: model.StringPtr("user")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ToPublic(info), got[0])

	got, err = apis.privileged.Search(ctx, model.Query{Username: model.StringPtr("somebodyelse")})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoginAPI_SearchScopedPermissions(t *testing.T) {
	store := memory.NewLoginStore()
	ctx := context.Background()

	a := sampleLogin()
	b := sampleLogin()
	b.Hostname = "https://other.example"
	b.FormSubmitURL = model.StringPtr("https://other.example/login")
	require.NoError(t, store.AddLogin(ctx, a))
	require.NoError(t, store.AddLogin(ctx, b))

	scoped := NewLoginAPI(store, newCaller(t, "https://test.mozilla.com/*"), slog.Default())
	got, err := scoped.Search(ctx, model.Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://test.mozilla.com/", got[0].Origin)
}

func TestLoginAPI_SearchSamePermissionsSameResults(t *testing.T) {
	store := memory.NewLoginStore()
	ctx := context.Background()
	require.NoError(t, store.AddLogin(ctx, sampleLogin()))

	first := NewLoginAPI(store, newCaller(t, "*://*.mozilla.com/*"), slog.Default())
	other := newCaller(t, "*://*.mozilla.com/*")
	other.ExtensionID = "another@example.org"
	other.InstanceID = "9d2b7f4a-0000-4000-8000-000000000000"
	second := NewLoginAPI(store, other, slog.Default())

	for _, q := range []model.Query{{}, {Username: model.StringPtr("user")}, {Password: model.StringPtr("nope")}} {
		r1, err := first.Search(ctx, q)
		require.NoError(t, err)
		r2, err := second.Search(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, r1, r2)
	}
}

func TestLoginAPI_SearchSkipsCorruptOrigin(t *testing.T) {
	corrupt := sampleLogin()
	corrupt.Hostname = "::not a url::"
	store := &mockLoginStore{logins: []model.LoginInfo{corrupt, sampleLogin()}, failAt: -1}

	api := NewLoginAPI(store, newCaller(t, "<all_urls>"), slog.Default())
	got, err := api.Search(context.Background(), model.Query{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://test.mozilla.com/", got[0].Origin)
}

func TestLoginAPI_SearchStoreFailure(t *testing.T) {
	store := &mockLoginStore{listErr: errors.New("disk I/O error"), failAt: -1}
	api := NewLoginAPI(store, newCaller(t, "<all_urls>"), slog.Default())

	_, err := api.Search(context.Background(), model.Query{})
	requireRejection(t, err, KindStore, "disk I/O error")
}

// --- Store ---

func TestLoginAPI_StorePermission(t *testing.T) {
	apis := newAPIPair(t)
	ctx := context.Background()
	record2 := testRecord2()

	err := apis.unprivileged.Store(ctx, record2)
	requireRejection(t, err, KindPermission, "Permission denied for https://test2.mozilla.com")

	require.NoError(t, apis.privileged.Store(ctx, record2))

	got, err := apis.privileged.Search(ctx, model.Query{Origin: model.StringPtr(record2.Origin)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, record2, got[0])
}

func TestLoginAPI_StoreValidation(t *testing.T) {
	p := model.StringPtr

	tests := []struct {
		name    string
		record  model.Record
		message string
	}{
		{
			name:    "no origin source",
			record:  model.Record{Username: "u", Password: "p"},
			message: "Must specify origin, formSubmitURL, or realm",
		},
		{
			name:    "empty strings count as unset",
			record:  model.Record{Origin: "", FormSubmitURL: p(""), Realm: p(""), Password: "p"},
			message: "Must specify origin, formSubmitURL, or realm",
		},
		{
			name:    "formSubmitURL and realm disagree",
			record:  model.Record{FormSubmitURL: p("https://a.example/x"), Realm: p("https://b.example/"), Password: "p"},
			message: "Origin does not match realm",
		},
		{
			name:    "origin and formSubmitURL disagree",
			record:  model.Record{Origin: "https://a.example", FormSubmitURL: p("https://b.example/login"), Password: "p"},
			message: "Origin does not match formSubmitURL",
		},
		{
			name:    "unparseable formSubmitURL",
			record:  model.Record{Origin: "https://a.example", FormSubmitURL: p("not a url"), Password: "p"},
			message: "Cannot parse formSubmitURL as a URL",
		},
		{
			name:    "formSubmitURL without authority",
			record:  model.Record{FormSubmitURL: p("https:accounts.example/login"), Password: "p"},
			message: "Cannot parse formSubmitURL as a URL",
		},
		{
			name:    "unparseable realm",
			record:  model.Record{Realm: p("Staff only"), Password: "p"},
			message: "Cannot parse realm as a URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockLoginStore{failAt: -1}
			api := NewLoginAPI(store, newCaller(t, "<all_urls>"), slog.Default())

			err := api.Store(context.Background(), tt.record)
			requireRejection(t, err, KindValidation, tt.message)
			assert.Empty(t, store.added, "store must not be touched")
		})
	}
}

func TestLoginAPI_StoreDerivesOrigin(t *testing.T) {
	store := &mockLoginStore{failAt: -1}
	api := NewLoginAPI(store, newCaller(t, "<all_urls>"), slog.Default())

	err := api.Store(context.Background(), model.Record{
		FormSubmitURL: model.StringPtr("https://accounts.example:8443/session/new"),
		Username:      "ann",
		Password:      "pw",
	})
	require.NoError(t, err)
	require.Len(t, store.added, 1)
	assert.Equal(t, "https://accounts.example:8443", store.added[0].Hostname)
	assert.Equal(t, "https://accounts.example:8443/session/new", *store.added[0].FormSubmitURL)
}

func TestLoginAPI_StoreExtensionOwnOrigin(t *testing.T) {
	store := &mockLoginStore{failAt: -1}
	api := NewLoginAPI(store, newCaller(t), slog.Default())

	err := api.Store(context.Background(), model.Record{
		Origin:   "addon:" + testExtensionID,
		Realm:    nil,
		Username: "sync",
		Password: "token",
	})
	require.NoError(t, err)
	require.Len(t, store.added, 1)
}

func TestLoginAPI_StorePassesStoreErrorThrough(t *testing.T) {
	apis := newAPIPair(t)
	ctx := context.Background()

	require.NoError(t, apis.privileged.Store(ctx, testRecord2()))

	err := apis.privileged.Store(ctx, testRecord2())
	requireRejection(t, err, KindStore, "This login already exists.")
	assert.ErrorIs(t, err, driven.ErrLoginAlreadyExists)

	bad := testRecord2()
	bad.Password = ""
	err = apis.privileged.Store(ctx, bad)
	requireRejection(t, err, KindStore, "Can't add a login with a null or empty password.")
}

// --- Remove ---

func TestLoginAPI_Remove(t *testing.T) {
	apis := newAPIPair(t)
	ctx := context.Background()
	record2 := testRecord2()
	byOrigin := model.Query{Origin: model.StringPtr(record2.Origin)}

	require.NoError(t, apis.privileged.Store(ctx, record2))

	// Removal by a caller that cannot see the login is a silent no-op.
	require.NoError(t, apis.unprivileged.Remove(ctx, byOrigin))

	got, err := apis.privileged.Search(ctx, byOrigin)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, apis.privileged.Remove(ctx, byOrigin))

	got, err = apis.privileged.Search(ctx, byOrigin)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoginAPI_RemoveOnlyAccessible(t *testing.T) {
	visible := sampleLogin()
	hidden := sampleLogin()
	hidden.Hostname = "https://hidden.example"
	store := &mockLoginStore{logins: []model.LoginInfo{visible, hidden}, failAt: -1}

	api := NewLoginAPI(store, newCaller(t, "https://test.mozilla.com/*"), slog.Default())
	require.NoError(t, api.Remove(context.Background(), model.Query{Username: model.StringPtr("user")}))

	require.Len(t, store.removed, 1)
	assert.Equal(t, visible.Hostname, store.removed[0].Hostname)
}

func TestLoginAPI_RemovePartialFailure(t *testing.T) {
	logins := make([]model.LoginInfo, 3)
	for i := range logins {
		logins[i] = sampleLogin()
		logins[i].Username = []string{"a", "b", "c"}[i]
	}
	store := &mockLoginStore{logins: logins, failAt: 1, removeErr: driven.ErrLoginNotFound}
	api := NewLoginAPI(store, newCaller(t, "<all_urls>"), slog.Default())

	err := api.Remove(context.Background(), model.Query{})
	requireRejection(t, err, KindStore, "No matching logins")

	require.Len(t, store.removed, 1, "logins removed before the failure stay removed")
	assert.Equal(t, "a", store.removed[0].Username)
}

func TestLoginAPI_RemoveStoreFailure(t *testing.T) {
	store := &mockLoginStore{listErr: errors.New("database is locked"), failAt: -1}
	api := NewLoginAPI(store, newCaller(t, "<all_urls>"), slog.Default())

	err := api.Remove(context.Background(), model.Query{})
	requireRejection(t, err, KindStore, "database is locked")
}

func TestRejectionKind_String(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "permission", KindPermission.String())
	assert.Equal(t, "store", KindStore.String())
	assert.Equal(t, "unknown", RejectionKind(0).String())
}
