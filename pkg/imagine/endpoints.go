package imagine

import "fmt"

// DefaultBaseURL is the host service root.
const DefaultBaseURL = "https://grok.com"

// favoritesPath returns the gallery page path for a cursor. Cursor 0 is the
// first page.
func favoritesPath(cursor int) string {
	if cursor <= 0 {
		return "/imagine/favorites"
	}
	return fmt.Sprintf("/imagine/favorites?cursor=%d", cursor)
}

// upscalePath returns the upscale request path for an item.
func upscalePath(itemID string) string {
	return fmt.Sprintf("/rest/media/%s/upscale", itemID)
}

// unfavoritePath returns the removal path for an item.
func unfavoritePath(itemID string) string {
	return fmt.Sprintf("/rest/media/%s/unfavorite", itemID)
}
