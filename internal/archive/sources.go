package archive

import "fmt"

// Source is one static archive endpoint addressed by app id.
type Source struct {
	Name  string
	Label string
	url   func(appID string) string
}

// URL builds the download URL for an app id.
func (s Source) URL(appID string) string { return s.url(appID) }

// NewSource builds a source with a custom URL scheme. Production endpoints
// come from Sources; this exists for alternate mirrors and tests.
func NewSource(name, label string, url func(appID string) string) Source {
	return Source{Name: name, Label: label, url: url}
}

// Sources returns the known archive endpoints in presentation order.
func Sources() []Source {
	return []Source{
		{Name: "swa", Label: "SWA V2", url: func(id string) string {
			return fmt.Sprintf("https://api.printedwaste.com/gfk/download/%s", id)
		}},
		{Name: "cysaw", Label: "Cysaw", url: func(id string) string {
			return fmt.Sprintf("https://cysaw.top/uploads/%s.zip", id)
		}},
		{Name: "furcate", Label: "Furcate", url: func(id string) string {
			return fmt.Sprintf("https://furcate.eu/files/%s.zip", id)
		}},
		{Name: "cngs", Label: "CNGS", url: func(id string) string {
			return fmt.Sprintf("https://assiw.cngames.site/qindan/%s.zip", id)
		}},
		{Name: "steamdatabase", Label: "SteamDatabase", url: func(id string) string {
			return fmt.Sprintf("https://steamdatabase.s3.eu-north-1.amazonaws.com/%s.zip", id)
		}},
		{Name: "walftech", Label: "Walftech", url: func(id string) string {
			return fmt.Sprintf("https://walftech.com/proxy.php?url=https%%3A%%2F%%2Fsteamgames554.s3.us-east-1.amazonaws.com%%2F%s.zip", id)
		}},
	}
}

// SourceByName looks up an endpoint by its short name.
func SourceByName(name string) (Source, bool) {
	for _, s := range Sources() {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}
