package flickr

import "fmt"

// PhotoDescriptor is one photo entry from a search page. The farm, server,
// id and secret fields are everything needed to build the download URL.
type PhotoDescriptor struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"`
	Secret   string `json:"secret"`
	Server   string `json:"server"`
	Farm     int    `json:"farm"`
	Title    string `json:"title"`
	IsPublic int    `json:"ispublic"`
	IsFriend int    `json:"isfriend"`
	IsFamily int    `json:"isfamily"`
}

// DownloadURL builds the static-host address for this photo. The template
// is fixed, so identical descriptors always resolve to identical URLs and
// test transports can match on them.
func (d PhotoDescriptor) DownloadURL() string {
	return fmt.Sprintf("https://farm%d.staticflickr.com/%s/%s_%s.jpg",
		d.Farm, d.Server, d.ID, d.Secret)
}

// photoPage is the inner "photos" object of a search response
type photoPage struct {
	Page    int               `json:"page"`
	Pages   int               `json:"pages"`
	PerPage int               `json:"perpage"`
	Total   string            `json:"total"`
	Photo   []PhotoDescriptor `json:"photo"`
}

// searchResponse is the full search response body
type searchResponse struct {
	Photos photoPage `json:"photos"`
	Stat   string    `json:"stat"`
}

// SearchResult is one decoded page of search results. Photos preserves
// the order the service returned; that order defines sequence indices
// downstream. An empty Photos slice is a valid result, not an error.
type SearchResult struct {
	Page    int
	Pages   int
	PerPage int
	Photos  []PhotoDescriptor
}
