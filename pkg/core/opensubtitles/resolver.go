package opensubtitles

import "strings"

// Record fields holding download URLs.
const (
	FieldSubDownloadLink = "SubDownloadLink" // gzipped subtitle file
	FieldZipDownloadLink = "ZipDownloadLink"
)

// URLResolver turns search records into download URLs, returning either the
// best candidate or all of them.
type URLResolver interface {
	Resolve(records []SubtitleRecord, all bool) []string
}

// DownloadLinkResolver reads one link field from each record, in the order the
// service returned them (best match first).
type DownloadLinkResolver struct {
	Field string // defaults to FieldSubDownloadLink
}

// Resolve returns the first non-empty link, or every non-empty link when all is set.
func (r DownloadLinkResolver) Resolve(records []SubtitleRecord, all bool) []string {
	field := r.Field
	if field == "" {
		field = FieldSubDownloadLink
	}

	urls := []string{}
	for _, record := range records {
		link, _ := record[field].(string)
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		urls = append(urls, link)
		if !all {
			break
		}
	}
	return urls
}
