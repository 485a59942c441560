package registry

import "strings"

// Updates is the per-title updates registry document.
//
// Selected, when non-empty, is the absolute path of the currently active
// update package and should reference an entry in Paths (best effort, not
// enforced on read). Paths keeps insertion order; the engine never inserts a
// duplicate, compared case-insensitively.
type Updates struct {
	Selected string   `json:"selected"`
	Paths    []string `json:"paths"`
}

// ContainsPath reports whether path is already registered,
// compared case-insensitively
func (u *Updates) ContainsPath(path string) bool {
	for _, p := range u.Paths {
		if strings.EqualFold(p, path) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the registry holds no update paths
func (u *Updates) IsEmpty() bool {
	return len(u.Paths) == 0
}

// DLCContainer is one record of the per-title DLC registry: a package file
// and the content entries it carries.
type DLCContainer struct {
	Path       string            `json:"path"`
	DLCNcaList []DLCContentEntry `json:"dlc_nca_list"`
}

// DLCContentEntry is a single named content entry inside a DLC container
type DLCContentEntry struct {
	Path      string `json:"path"`
	TitleID   uint64 `json:"title_id"`
	IsEnabled bool   `json:"is_enabled"`
}

// ContainsContainer reports whether the list already holds a container for
// path, compared case-insensitively
func ContainsContainer(list []DLCContainer, path string) bool {
	for _, c := range list {
		if strings.EqualFold(c.Path, path) {
			return true
		}
	}
	return false
}
