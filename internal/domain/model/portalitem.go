package model

// PortalItem is a handle to a hosted feature layer item on the portal,
// resolved fresh each run by item ID.
type PortalItem struct {
	ID    string
	Title string
	Type  string
	Owner string
	URL   string
}
