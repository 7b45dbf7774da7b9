package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "scholarship-workers/internal/common/errors"
	"scholarship-workers/internal/models"
)

// searchDocument is the projection students search on. Eligibility blocks
// stay in Postgres.
type searchDocument struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Provider         string   `json:"provider"`
	Description      *string  `json:"description,omitempty"`
	AwardAmount      *int     `json:"awardAmount,omitempty"`
	Deadline         *string  `json:"deadline,omitempty"`
	Renewable        *bool    `json:"renewable,omitempty"`
	CompetitionLevel *string  `json:"competitionLevel,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	EligibleMajors   []string `json:"eligibleMajors,omitempty"`
	States           []string `json:"states,omitempty"`
}

func toDocument(s models.Scholarship) searchDocument {
	doc := searchDocument{
		ID:          s.ID,
		Name:        s.Name,
		Provider:    s.Provider,
		Description: s.Description,
		AwardAmount: s.AwardAmount,
		Renewable:   s.Renewable,
		Tags:        s.Tags,
	}
	if s.Deadline != nil {
		d := s.Deadline.UTC().Format("2006-01-02")
		doc.Deadline = &d
	}
	if s.CompetitionLevel != nil {
		c := string(*s.CompetitionLevel)
		doc.CompetitionLevel = &c
	}
	if m := s.Eligibility.Major; m != nil {
		doc.EligibleMajors = m.EligibleMajors
	}
	if d := s.Eligibility.Demographic; d != nil {
		doc.States = d.States
	}
	return doc
}

// SearchIndex keeps the Elasticsearch catalog index in step with Postgres.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client, index string) *SearchIndex {
	return &SearchIndex{client: client, index: index}
}

func (s *SearchIndex) Index() string { return s.index }

// IndexScholarships bulk-indexes the records by id and returns how many
// documents Elasticsearch accepted.
func (s *SearchIndex) IndexScholarships(ctx context.Context, scholarships []models.Scholarship) (int, error) {
	if len(scholarships) == 0 {
		return 0, nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, sch := range scholarships {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": s.index, "_id": sch.ID}}
		if err := enc.Encode(meta); err != nil {
			return 0, apperrors.NewSearchIndexFailedError(s.index, err)
		}
		if err := enc.Encode(toDocument(sch)); err != nil {
			return 0, apperrors.NewSearchIndexFailedError(s.index, err)
		}
	}

	req := esapi.BulkRequest{
		Index: s.index,
		Body:  &body,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, apperrors.NewSearchIndexFailedError(s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, apperrors.NewSearchIndexFailedError(s.index,
			fmt.Errorf("bulk request: %s: %s", res.Status(), strings.TrimSpace(string(msg))))
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, apperrors.NewSearchIndexFailedError(s.index, err)
	}

	indexed := 0
	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Status >= 200 && op.Status < 300 {
				indexed++
			}
		}
	}
	if parsed.Errors {
		return indexed, apperrors.NewSearchIndexFailedError(s.index,
			fmt.Errorf("%d of %d documents rejected", len(scholarships)-indexed, len(scholarships)))
	}
	return indexed, nil
}
