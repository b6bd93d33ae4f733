package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Ref
		wantErr bool
	}{
		{name: "file url", in: "file:///mnt/notes", want: Ref{Kind: RefLocal, Location: "/mnt/notes"}},
		{name: "file url localhost", in: "file://localhost/mnt/notes/", want: Ref{Kind: RefLocal, Location: "/mnt/notes"}},
		{name: "escaped file url", in: "file:///mnt/My%20Notes", want: Ref{Kind: RefLocal, Location: "/mnt/My Notes"}},
		{name: "bare path", in: "/home/u/Sync/../Notes", want: Ref{Kind: RefLocal, Location: "/home/u/Notes"}},
		{name: "http", in: "http://nas.local:8080/files/", want: Ref{Kind: RefHTTP, Location: "http://nas.local:8080/files"}},
		{name: "https drops query", in: "https://h/files/shared?x=1#y", want: Ref{Kind: RefHTTP, Location: "https://h/files/shared"}},
		{name: "empty", in: "  ", wantErr: true},
		{name: "relative path", in: "notes", wantErr: true},
		{name: "file with host", in: "file://server/share", wantErr: true},
		{name: "http without host", in: "http:///files", wantErr: true},
		{name: "ftp", in: "ftp://h/notes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// String round-trips through ParseRef
			again, err := ParseRef(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestRef_String(t *testing.T) {
	assert.Equal(t, "file:///mnt/notes", Ref{Kind: RefLocal, Location: "/mnt/notes"}.String())
	assert.Equal(t, "http://h:1/files", Ref{Kind: RefHTTP, Location: "http://h:1/files"}.String())
	assert.True(t, Ref{}.IsZero())
}

func TestOpen(t *testing.T) {
	local, err := Open(Ref{Kind: RefLocal, Location: t.TempDir()}, Options{})
	require.NoError(t, err)
	assert.IsType(t, &LocalFolder{}, local)

	remote, err := Open(Ref{Kind: RefHTTP, Location: "http://127.0.0.1:1/files"}, Options{})
	require.NoError(t, err)
	assert.IsType(t, &HTTPFolder{}, remote)
	assert.Equal(t, "http://127.0.0.1:1/files", remote.Ref().String())

	_, err = Open(Ref{Kind: "smb", Location: "x"}, Options{})
	assert.ErrorIs(t, err, ErrInvalidRef)
}
