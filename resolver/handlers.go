package resolver

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/pkg/errors"

	"github.com/oasvalidator/oasvalidator/document"
)

// FileHandler loads a referenced document from the local filesystem.
func FileHandler(uri *url.URL) (interface{}, error) {
	data, err := os.ReadFile(uri.Path)
	if err != nil {
		return nil, err
	}

	return document.Load(data)
}

// HTTPHandler loads a referenced document over http(s).
func HTTPHandler(uri *url.URL) (interface{}, error) {
	resp, err := http.Get(uri.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return document.Load(data)
}

// Store is an in-memory document registry. It lets multi-document
// specifications resolve without touching disk or network, which is how
// tests provide companion documents.
type Store struct {
	docs map[string]interface{}
}

func NewStore() *Store {
	return &Store{docs: map[string]interface{}{}}
}

// Add registers doc under the given URI (without fragment).
func (s *Store) Add(uri string, doc interface{}) {
	s.docs[uri] = doc
}

// Handler serves registered documents by their full URI.
func (s *Store) Handler(uri *url.URL) (interface{}, error) {
	doc, ok := s.docs[uri.String()]
	if !ok {
		return nil, errors.Wrapf(ErrMissingTarget, "document %q not registered", uri.String())
	}

	return doc, nil
}
