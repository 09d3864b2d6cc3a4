// Package datatest provides an in-memory SQLite database with the news
// schema for repository and service tests.
package datatest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Schema mirrors migrations/000001_create_news_schema.up.sql in SQLite syntax.
const Schema = `
CREATE TABLE categories (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE tags (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE articles (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	slug TEXT NOT NULL,
	photo_url TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME,
	created_by TEXT NOT NULL,
	updated_by TEXT,
	view_count INTEGER NOT NULL DEFAULT 0,
	category_id INTEGER NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 0,
	is_featured BOOLEAN NOT NULL DEFAULT 0,
	is_deleted BOOLEAN NOT NULL DEFAULT 0,
	FOREIGN KEY (category_id) REFERENCES categories(id)
);

CREATE TABLE article_tags (
	article_id INTEGER NOT NULL,
	tag_id INTEGER NOT NULL,
	PRIMARY KEY (article_id, tag_id),
	FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE,
	FOREIGN KEY (tag_id) REFERENCES tags(id)
);`

// NewDB opens a private in-memory database, applies Schema and closes the
// database when the test ends.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	// Use a non-shared in-memory database for complete test isolation.
	db, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	db.MustExec(Schema)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// SeedCategory inserts a category and returns its id.
func SeedCategory(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	res := db.MustExec(`INSERT INTO categories (name) VALUES (?)`, name)
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	return id
}

// SeedTag inserts a tag and returns its id.
func SeedTag(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	res := db.MustExec(`INSERT INTO tags (name) VALUES (?)`, name)
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to seed tag: %v", err)
	}
	return id
}
