package base44

// Storage persists a string value by key. Implementations must not fail
// loudly: unavailability is reported as absent/false, never as a panic or
// error. The SDK ships memory, file, and system-keyring backed stores.
type Storage interface {
	// Get returns the stored value and whether it was present.
	Get(key string) (string, bool)
	// Set stores the value, reporting success.
	Set(key, value string) bool
	// Remove deletes the value, reporting success.
	Remove(key string) bool
}

// PageContext abstracts the page-driven host environment: current URL
// access, navigation, and popup windows. Hosts without a page (servers,
// CLIs) leave Config.PageContext nil and the SDK degrades gracefully;
// only Login inherently requires one.
type PageContext interface {
	// CurrentURL returns the full URL of the current page.
	CurrentURL() string
	// ReplaceURL swaps the visible URL without navigating.
	ReplaceURL(url string)
	// Navigate loads the given URL in the current page.
	Navigate(url string)
	// Reload reloads the current page.
	Reload()
	// OpenPopup opens url in a popup window. A nil Popup means the host
	// refused to open one (e.g. blocked).
	OpenPopup(url, name, features string) Popup
}

// Popup is a handle to an opened popup window.
type Popup interface {
	// Closed reports whether the popup has been closed.
	Closed() bool
}
