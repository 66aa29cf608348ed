package model

// URLFlag classifies the secondary link attached to a POI.
type URLFlag string

const (
	URLFlagNone      URLFlag = ""
	URLFlagOfficial  URLFlag = "hp"
	URLFlagInstagram URLFlag = "ig"
	URLFlagTwitter   URLFlag = "tw"
)

// ParseURLFlag maps a wire code to a URLFlag. Unknown codes degrade to
// URLFlagNone rather than failing the record.
func ParseURLFlag(code string) URLFlag {
	switch code {
	case "hp":
		return URLFlagOfficial
	case "ig":
		return URLFlagInstagram
	case "tw":
		return URLFlagTwitter
	default:
		return URLFlagNone
	}
}

// Feature is a single mapped article/place record. Immutable once appended
// to a store. Optional string properties default to "" and DateStamp to 0,
// so downstream code never checks for absence.
type Feature struct {
	FID           int64   `json:"fid"`
	Lon           float64 `json:"lon"`
	Lat           float64 `json:"lat"`
	Name          string  `json:"name_poi"`
	Address       string  `json:"address_poi,omitempty"`
	TitleSource   string  `json:"title_source,omitempty"`
	BlogSource    string  `json:"blog_source,omitempty"`
	LinkSource    string  `json:"link_source,omitempty"`
	DateText      string  `json:"date_text,omitempty"`
	DateStamp     int64   `json:"date_stamp,omitempty"`
	CategoryFlags string  `json:"category_flags,omitempty"`
	URLFlag       URLFlag `json:"url_flag,omitempty"`
	URLLink       string  `json:"url_link,omitempty"`
}

// Collection is the feature-collection-like object pushed to rendering
// layers: plain geometry plus the property set above.
type Collection struct {
	Type     string            `json:"type"`
	Features []CollectionEntry `json:"features"`
}

type CollectionEntry struct {
	Type       string   `json:"type"`
	Geometry   Geometry `json:"geometry"`
	Properties Feature  `json:"properties"`
}

type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewCollection wraps a store snapshot in GeoJSON-shaped form.
func NewCollection(features []Feature) Collection {
	entries := make([]CollectionEntry, len(features))
	for i, f := range features {
		entries[i] = CollectionEntry{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{f.Lon, f.Lat},
			},
			Properties: f,
		}
	}
	return Collection{Type: "FeatureCollection", Features: entries}
}
