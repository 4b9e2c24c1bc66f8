package menu

// Product is one menu item as served by the menu API.
type Product struct {
	ID          string   `json:"_id"`
	BusinessID  string   `json:"businessId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	ContentURL  string   `json:"contentUrl"`
	ContentType string   `json:"contentType"`
	Show        bool     `json:"show"`
	Tags        []string `json:"tags"`
	Thumbnail   string   `json:"thumbnail"`
	DurationMS  int64    `json:"durationMs"`
}

// Business holds the per-venue settings that shape the feed.
type Business struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Address         string   `json:"address"`
	MenuURL         string   `json:"menuUrl"`
	BackgroundColor string   `json:"backgroundColor"`
	ForegroundColor string   `json:"foregroundColor"`
	FilterByTags    []string `json:"filterByTags"`
	CategoryOrder   []string `json:"categoryOrder"`
	AllowGridView   *bool    `json:"allowGridView"`
	DefaultView     string   `json:"defaultView"`
}

// GridViewAllowed reports whether the business exposes the grid view.
// A missing setting means allowed.
func (b Business) GridViewAllowed() bool {
	return b.AllowGridView == nil || *b.AllowGridView
}

// User is the account returned by a successful credential check.
type User struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

type businessResponse struct {
	Business
	Products []Product `json:"products"`
}
