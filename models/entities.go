package models

// Note is the shape the client writes for a note. The sync engine treats
// notes as opaque JSON and only reads ID, UpdatedAt and FolderID.
type Note struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content,omitempty"`
	FolderID  *string  `json:"folderId"`
	Labels    []string `json:"labels,omitempty"`
	CreatedAt int64    `json:"createdAt,omitempty"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Folder groups notes. ParentID nests folders.
type Folder struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	ParentID  *string `json:"parentId"`
	CreatedAt int64   `json:"createdAt,omitempty"`
	UpdatedAt int64   `json:"updatedAt"`
}

// FileEntry describes one entry of a sync folder listing.
type FileEntry struct {
	Name    string `json:"name"`
	IsDir   bool   `json:"isDir"`
	Size    int64  `json:"size,omitempty"`
	ModTime int64  `json:"modTime,omitempty"`
}
