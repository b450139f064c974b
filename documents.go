package docsearch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
)

const (
	ingestBatchSize = 100
	maxRecordBytes  = 16 << 20
)

// Record is a document as read from a JSON Lines file.
type Record struct {
	ID              string            `json:"id"`
	Content         string            `json:"content"`
	Path            string            `json:"path"`
	ContentType     string            `json:"content_type"`
	ContentLength   int64             `json:"content_length"`
	Language        string            `json:"language"`
	Tags            []string          `json:"tags"`
	Metadata        map[string]string `json:"metadata"`
	CreationDate    *time.Time        `json:"creation_date"`
	ExtractionDate  *time.Time        `json:"extraction_date"`
	ExtractionLevel int               `json:"extraction_level"`
	NamedEntities   []EntityRecord    `json:"named_entities"`
}

// EntityRecord is a named entity mentioned in a Record.
type EntityRecord struct {
	ID       string `json:"id"`
	Mention  string `json:"mention"`
	Category string `json:"category"`
	Offsets  []int  `json:"offsets"`
}

func (r *Record) document(index string) (documentrepo.Document, error) {
	if r.ID == "" {
		return documentrepo.Document{}, fmt.Errorf("%w: record id is required", domain.ErrInvalidRequest)
	}
	doc := result.NewDocument(r.ID, index, 0)
	doc.Content = r.Content
	doc.Path = r.Path
	doc.ContentType = r.ContentType
	doc.ContentLength = r.ContentLength
	if doc.ContentLength == 0 {
		doc.ContentLength = int64(len(r.Content))
	}
	doc.Language = strings.ToUpper(r.Language)
	doc.Tags = r.Tags
	doc.Metadata = r.Metadata
	if r.CreationDate != nil {
		doc.CreationDate = r.CreationDate.UTC()
	}
	if r.ExtractionDate != nil {
		doc.ExtractionDate = r.ExtractionDate.UTC()
	}
	doc.ExtractionLevel = r.ExtractionLevel

	out := documentrepo.Document{Document: doc}
	for i, e := range r.NamedEntities {
		id := e.ID
		if id == "" {
			id = r.ID + "-ne-" + strconv.Itoa(i)
		}
		ne := result.NewNamedEntity(id, index, 0)
		ne.Mention = e.Mention
		ne.Category = e.Category
		ne.DocumentID = r.ID
		ne.Offsets = e.Offsets
		out.Entities = append(out.Entities, ne)
	}
	return out, nil
}

// DocumentService writes and reads indexed documents.
type DocumentService struct {
	repo *documentrepo.Repo
}

// Put stores records in an index.
func (s *DocumentService) Put(ctx context.Context, index string, records ...Record) error {
	docs := make([]documentrepo.Document, 0, len(records))
	for i := range records {
		d, err := records[i].document(index)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		docs = append(docs, d)
	}
	if err := s.repo.Put(ctx, docs...); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

// Get returns a document or named entity.
func (s *DocumentService) Get(ctx context.Context, index, id string) (result.Hit, error) {
	return s.repo.Get(ctx, index, id)
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, index, id string) error {
	return s.repo.Delete(ctx, index, id)
}

// Ingest stores the JSON Lines records read from r, in batches. Blank lines
// are skipped. It returns the number of records stored.
func (s *DocumentService) Ingest(ctx context.Context, index string, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	var (
		batch  []Record
		stored int
		line   int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.Put(ctx, index, batch...); err != nil {
			return err
		}
		stored += len(batch)
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return stored, fmt.Errorf("%w: line %d: %w", domain.ErrInvalidRequest, line, err)
		}
		batch = append(batch, rec)
		if len(batch) == ingestBatchSize {
			if err := flush(); err != nil {
				return stored, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stored, fmt.Errorf("read records: %w", err)
	}
	if err := flush(); err != nil {
		return stored, err
	}
	return stored, nil
}
