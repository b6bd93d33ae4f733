// Package remote gives the sync engine its view of the shared sync folder.
//
// A folder is addressed by a [Ref] and opened with [Open]. Two backends
// exist: [LocalFolder] for a directory on disk (including directories that a
// cloud drive client mirrors) and [HTTPFolder] for a folder served by the
// notesync folder server. Both expose the same small file API, [Folder].
//
// Layout of a sync folder:
//
//	metadata.json   version record of the last push
//	data.json       {"data": <object | encrypted string>}
//	note-assets/    note attachments, not merged
//	file-assets/    general attachments, not merged
package remote

const (
	MetadataFile  = "metadata.json"
	DataFile      = "data.json"
	NoteAssetsDir = "note-assets"
	FileAssetsDir = "file-assets"

	// LockFile serializes writers of one local folder across processes.
	LockFile = ".notesync.lock"

	tempPattern = ".notesync-*.tmp"
)
