package opensubtitles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadLinkResolver_Resolve(t *testing.T) {
	records := []SubtitleRecord{
		{"SubDownloadLink": "", "ZipDownloadLink": "http://dl.example/0.zip"},
		{"SubDownloadLink": "http://dl.example/1.gz", "ZipDownloadLink": "http://dl.example/1.zip"},
		{"SubDownloadLink": 17},
		{"SubDownloadLink": " http://dl.example/3.gz "},
	}

	tests := []struct {
		name     string
		resolver DownloadLinkResolver
		all      bool
		want     []string
	}{
		{name: "Best match", want: []string{"http://dl.example/1.gz"}},
		{name: "All", all: true, want: []string{"http://dl.example/1.gz", "http://dl.example/3.gz"}},
		{
			name:     "Zip field",
			resolver: DownloadLinkResolver{Field: FieldZipDownloadLink},
			all:      true,
			want:     []string{"http://dl.example/0.zip", "http://dl.example/1.zip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resolver.Resolve(records, tt.all))
		})
	}
}

func TestDownloadLinkResolver_NoRecords(t *testing.T) {
	urls := DownloadLinkResolver{}.Resolve(nil, true)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}
