package search

import (
	"errors"
	"testing"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	added      []interface{}
	primaryKey []string
	deleted    []string
	err        error
}

func (f *fakeIndex) AddDocuments(documentsPtr interface{}, primaryKey ...string) (*meilisearch.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, documentsPtr)
	f.primaryKey = append(f.primaryKey, primaryKey...)
	return &meilisearch.TaskInfo{TaskUID: 1}, nil
}

func (f *fakeIndex) DeleteDocument(identifier string) (*meilisearch.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, identifier)
	return &meilisearch.TaskInfo{TaskUID: 2}, nil
}

func TestIndexerUpsertAndDelete(t *testing.T) {
	idx := &fakeIndex{}
	indexer := NewIndexer(idx, "id")

	doc := map[string]any{"id": "p1", "title": "Villa"}
	require.NoError(t, indexer.Upsert(doc))
	require.Equal(t, []interface{}{[]any{doc}}, idx.added)
	require.Equal(t, []string{"id"}, idx.primaryKey)

	require.NoError(t, indexer.Delete("p1"))
	require.Equal(t, []string{"p1"}, idx.deleted)
}

func TestIndexerWrapsErrors(t *testing.T) {
	boom := errors.New("meilisearch down")
	indexer := NewIndexer(&fakeIndex{err: boom}, "id")

	require.ErrorIs(t, indexer.Upsert(map[string]any{"id": "p1"}), boom)
	require.ErrorIs(t, indexer.Delete("p1"), boom)
}

func TestConnectValidatesArguments(t *testing.T) {
	_, _, err := Connect("", "", IndexSettings{UID: "properties", PrimaryKey: "id"})
	require.Error(t, err)

	_, _, err = Connect("http://localhost:7700", "", IndexSettings{UID: "properties"})
	require.Error(t, err)
}
