package hypothesis

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

// profileResponse is the /api/profile payload.
type profileResponse struct {
	UserID string `json:"userid"`
}

// searchResponse is the /api/search payload.
type searchResponse struct {
	Total int             `json:"total"`
	Rows  []annotationRow `json:"rows"`
}

// annotationRow is one annotation record on the wire.
type annotationRow struct {
	ID       string   `json:"id"`
	Created  string   `json:"created"`
	Updated  string   `json:"updated"`
	User     string   `json:"user"`
	URI      string   `json:"uri"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	Group    string   `json:"group"`
	Document struct {
		Title []string `json:"title"`
	} `json:"document"`
	Target []struct {
		Selector []selector `json:"selector"`
	} `json:"target"`
	Links struct {
		Incontext string `json:"incontext"`
	} `json:"links"`
}

// selector is a fragment of a target's selector list. Only the text quote
// selector carries the highlighted text.
type selector struct {
	Type  string `json:"type"`
	Exact string `json:"exact"`
}

// DocumentID derives the stable source-document identifier from a URI.
func DocumentID(uri string) string {
	sum := md5.Sum([]byte(uri))
	return hex.EncodeToString(sum[:])
}

// toDomain converts a wire row into a domain annotation.
func (r *annotationRow) toDomain() domain.Annotation {
	title := r.URI
	if len(r.Document.Title) > 0 && r.Document.Title[0] != "" {
		title = r.Document.Title[0]
	}

	var quote string
	for _, t := range r.Target {
		for _, s := range t.Selector {
			if s.Type == "TextQuoteSelector" {
				quote = s.Exact
				break
			}
		}
		if quote != "" {
			break
		}
	}

	return domain.Annotation{
		ID:            r.ID,
		DocumentID:    DocumentID(r.URI),
		DocumentTitle: title,
		URI:           r.URI,
		Text:          quote,
		Note:          r.Text,
		Tags:          r.Tags,
		Link:          r.Links.Incontext,
		Owner:         r.User,
		Created:       parseTime(r.Created),
		Updated:       parseTime(r.Updated),
	}
}

// parseTime accepts the API's RFC3339 timestamps with or without
// fractional seconds. Unparseable values yield the zero time.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
