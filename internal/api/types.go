package api

// StatusResponse reports the live load session.
type StatusResponse struct {
	State      string `json:"state"`
	Decoded    int    `json:"decoded"`
	Total      int    `json:"total"`
	TotalKnown bool   `json:"total_known"`
	Percent    int    `json:"percent"`
	StoreLen   int    `json:"store_len"`
	Error      string `json:"error,omitempty"`
}

// FilterResponse reports a filter application: the full match set size, the
// matched fids and the layer expression ("null" when no criteria are
// active).
type FilterResponse struct {
	Matches    int           `json:"matches"`
	FIDs       []int64       `json:"fids"`
	Expression []interface{} `json:"expression"`
}

// ListItem is one side-panel row.
type ListItem struct {
	FID      int64  `json:"fid"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	DateText string `json:"date_text,omitempty"`
	Link     string `json:"link,omitempty"`
}

// ListResponse is the display-capped viewport list plus the true count.
type ListResponse struct {
	Items     []ListItem `json:"items"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated"`
}

// GeocodeResponse is one resolved place.
type GeocodeResponse struct {
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
	DisplayName string  `json:"display_name"`
}
