package database

import "github.com/leca/sauce-relay/internal/model"

// Database defines the persistence interface for the search history log.
type Database interface {
	CreateSearch(rec *model.SearchRecord) error
	GetSearch(id string) (*model.SearchRecord, error)
	ListSearches(page, perPage int) ([]*model.SearchRecord, int, error)
	DeleteSearch(id string) error
	CountSearches() (int, error)
	CountSearchesByOutcome() (map[string]int, error)

	Close() error
}
