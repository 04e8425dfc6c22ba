package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/base44-client/internal/auth"
	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

type fakePage struct {
	currentURL   string
	replacedURLs []string
	navigatedTo  []string
	reloads      int
}

func (p *fakePage) CurrentURL() string     { return p.currentURL }
func (p *fakePage) ReplaceURL(url string)  { p.replacedURLs = append(p.replacedURLs, url) }
func (p *fakePage) Navigate(url string)    { p.navigatedTo = append(p.navigatedTo, url) }
func (p *fakePage) Reload()                { p.reloads++ }
func (p *fakePage) OpenPopup(url, name, features string) base44.Popup { return nil }

func TestTokenStoreReadsFromURLFirst(t *testing.T) {
	storage := auth.NewMemoryStorage()
	storage.Set("base44_access_token", "stored-token")

	page := &fakePage{currentURL: "https://app.example.com/dash?access_token=url-token&tab=1"}

	store := auth.NewTokenStore(storage, page, nil, "", "")

	token := store.Read(nil)
	assert.Equal(t, "url-token", token)

	// The URL token replaces the stored one and is stripped from the URL.
	persisted, ok := storage.Get("base44_access_token")
	require.True(t, ok)
	assert.Equal(t, "url-token", persisted)

	require.Len(t, page.replacedURLs, 1)
	assert.Equal(t, "https://app.example.com/dash?tab=1", page.replacedURLs[0])
}

func TestTokenStoreFallsBackToStorage(t *testing.T) {
	storage := auth.NewMemoryStorage()
	storage.Set("base44_access_token", "stored-token")

	page := &fakePage{currentURL: "https://app.example.com/dash"}

	store := auth.NewTokenStore(storage, page, nil, "", "")

	assert.Equal(t, "stored-token", store.Read(nil))
	assert.Empty(t, page.replacedURLs)
}

func TestTokenStoreSkipSave(t *testing.T) {
	storage := auth.NewMemoryStorage()
	page := &fakePage{currentURL: "https://app.example.com/?access_token=url-token"}

	store := auth.NewTokenStore(storage, page, nil, "", "")

	token := store.Read(&auth.ReadOptions{SkipSave: true})
	assert.Equal(t, "url-token", token)

	_, ok := storage.Get("base44_access_token")
	assert.False(t, ok)

	// The URL is still cleaned.
	assert.Len(t, page.replacedURLs, 1)
}

func TestTokenStoreKeepInURL(t *testing.T) {
	storage := auth.NewMemoryStorage()
	page := &fakePage{currentURL: "https://app.example.com/?access_token=url-token"}

	store := auth.NewTokenStore(storage, page, nil, "", "")

	token := store.Read(&auth.ReadOptions{KeepInURL: true})
	assert.Equal(t, "url-token", token)
	assert.Empty(t, page.replacedURLs)
}

func TestTokenStoreCustomKeyAndParam(t *testing.T) {
	storage := auth.NewMemoryStorage()
	page := &fakePage{currentURL: "https://app.example.com/?session=custom-token"}

	store := auth.NewTokenStore(storage, page, nil, "my_key", "session")

	assert.Equal(t, "custom-token", store.Read(nil))

	persisted, ok := storage.Get("my_key")
	require.True(t, ok)
	assert.Equal(t, "custom-token", persisted)
}

func TestTokenStoreWithoutCapabilities(t *testing.T) {
	store := auth.NewTokenStore(nil, nil, nil, "", "")

	assert.Empty(t, store.Read(nil))
	assert.False(t, store.Save("tok"))
	assert.False(t, store.Remove())
	assert.False(t, store.IsValid())
}

func TestTokenStoreSaveAndRemove(t *testing.T) {
	storage := auth.NewMemoryStorage()
	store := auth.NewTokenStore(storage, nil, nil, "", "")

	assert.False(t, store.Save(""))
	assert.True(t, store.Save("tok"))
	assert.True(t, store.IsValid())

	assert.True(t, store.Remove())
	assert.False(t, store.IsValid())
}
