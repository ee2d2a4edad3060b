// Package search pushes documents to a Meilisearch index.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

// DocumentIndex is the subset of a Meilisearch index the Indexer writes to.
type DocumentIndex interface {
	AddDocuments(documentsPtr interface{}, primaryKey ...string) (*meilisearch.TaskInfo, error)
	DeleteDocument(identifier string) (*meilisearch.TaskInfo, error)
}

// IndexSettings describes how an index is created and which attributes are searchable.
type IndexSettings struct {
	UID        string
	PrimaryKey string
	Searchable []string
	Filterable []string
	Sortable   []string
}

// Indexer writes documents to one index. Meilisearch applies writes
// asynchronously; a nil error means the task was enqueued.
type Indexer struct {
	index      DocumentIndex
	primaryKey string
}

// NewIndexer wraps an existing index handle.
func NewIndexer(index DocumentIndex, primaryKey string) *Indexer {
	if index == nil {
		panic("search index is required")
	}
	if primaryKey == "" {
		panic("search primary key is required")
	}
	return &Indexer{index: index, primaryKey: primaryKey}
}

// Upsert adds or replaces doc, matched on the primary key.
func (i *Indexer) Upsert(doc any) error {
	if _, err := i.index.AddDocuments([]any{doc}, i.primaryKey); err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	return nil
}

// Delete removes the document with the given primary key value.
func (i *Indexer) Delete(id string) error {
	if _, err := i.index.DeleteDocument(id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Connect builds a client, creates the index if needed and applies settings.
func Connect(host, apiKey string, settings IndexSettings) (*meilisearch.Client, *Indexer, error) {
	if strings.TrimSpace(host) == "" {
		return nil, nil, errors.New("meilisearch host is required")
	}
	if settings.UID == "" || settings.PrimaryKey == "" {
		return nil, nil, errors.New("index uid and primary key are required")
	}

	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	_, err := client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        settings.UID,
		PrimaryKey: settings.PrimaryKey,
	})
	// creation is a task; an existing index only fails that task, not this call
	if err != nil && !strings.Contains(err.Error(), "index_already_exists") {
		return nil, nil, fmt.Errorf("create index %s: %w", settings.UID, err)
	}

	index := client.Index(settings.UID)
	if len(settings.Searchable) > 0 {
		if _, err := index.UpdateSearchableAttributes(&settings.Searchable); err != nil {
			return nil, nil, fmt.Errorf("update searchable attributes: %w", err)
		}
	}
	if len(settings.Filterable) > 0 {
		if _, err := index.UpdateFilterableAttributes(&settings.Filterable); err != nil {
			return nil, nil, fmt.Errorf("update filterable attributes: %w", err)
		}
	}
	if len(settings.Sortable) > 0 {
		if _, err := index.UpdateSortableAttributes(&settings.Sortable); err != nil {
			return nil, nil, fmt.Errorf("update sortable attributes: %w", err)
		}
	}

	return client, NewIndexer(index, settings.PrimaryKey), nil
}
