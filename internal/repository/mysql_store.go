package repository

import "database/sql"

// MySQLStore composes the table repositories into the full Store contract.
type MySQLStore struct {
	*UserRepo
	*FilmRepo
	*DirectorRepo
	*ReviewRepo
	*FeedRepo
}

var _ Store = (*MySQLStore)(nil)

// NewMySQLStore builds a Store over an open, migrated database.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		UserRepo:     NewUserRepo(db),
		FilmRepo:     NewFilmRepo(db),
		DirectorRepo: NewDirectorRepo(db),
		ReviewRepo:   NewReviewRepo(db),
		FeedRepo:     NewFeedRepo(db),
	}
}
