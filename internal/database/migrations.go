package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/filmorate/internal/logging"
)

// schema creates every table the MySQL store needs. Edge tables cascade on
// delete so removing a user or film drops its likes, links, votes and feed.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ratings (
		id   BIGINT UNSIGNED PRIMARY KEY,
		name VARCHAR(16) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id   BIGINT UNSIGNED PRIMARY KEY,
		name VARCHAR(64) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email    VARCHAR(255) NOT NULL,
		login    VARCHAR(64)  NOT NULL UNIQUE,
		name     VARCHAR(255) NOT NULL,
		birthday DATE NULL
	)`,
	`CREATE TABLE IF NOT EXISTS films (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title        VARCHAR(255) NOT NULL,
		description  VARCHAR(200) NOT NULL DEFAULT '',
		release_date DATE NOT NULL,
		duration     INT NOT NULL,
		rating_id    BIGINT UNSIGNED NOT NULL,
		CONSTRAINT fk_films_rating FOREIGN KEY (rating_id) REFERENCES ratings(id)
	)`,
	`CREATE TABLE IF NOT EXISTS film_genres (
		film_id  BIGINT UNSIGNED NOT NULL,
		genre_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (film_id, genre_id),
		CONSTRAINT fk_fg_film  FOREIGN KEY (film_id)  REFERENCES films(id)  ON DELETE CASCADE,
		CONSTRAINT fk_fg_genre FOREIGN KEY (genre_id) REFERENCES genres(id)
	)`,
	`CREATE TABLE IF NOT EXISTS directors (
		id   BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS film_directors (
		film_id     BIGINT UNSIGNED NOT NULL,
		director_id BIGINT UNSIGNED NOT NULL,
		position    INT NOT NULL,
		PRIMARY KEY (film_id, director_id),
		CONSTRAINT fk_fd_film     FOREIGN KEY (film_id)     REFERENCES films(id)     ON DELETE CASCADE,
		CONSTRAINT fk_fd_director FOREIGN KEY (director_id) REFERENCES directors(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		user_id BIGINT UNSIGNED NOT NULL,
		film_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (user_id, film_id),
		INDEX idx_likes_film (film_id),
		CONSTRAINT fk_likes_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_likes_film FOREIGN KEY (film_id) REFERENCES films(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		user_id  BIGINT UNSIGNED NOT NULL,
		other_id BIGINT UNSIGNED NOT NULL,
		status   ENUM('REQUEST','FRIEND') NOT NULL,
		PRIMARY KEY (user_id, other_id),
		CONSTRAINT fk_fr_user  FOREIGN KEY (user_id)  REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_fr_other FOREIGN KEY (other_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		content     TEXT NOT NULL,
		is_positive BOOLEAN NOT NULL,
		user_id     BIGINT UNSIGNED NOT NULL,
		film_id     BIGINT UNSIGNED NOT NULL,
		useful      INT NOT NULL DEFAULT 0,
		INDEX idx_reviews_film (film_id),
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_reviews_film FOREIGN KEY (film_id) REFERENCES films(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS review_votes (
		review_id BIGINT UNSIGNED NOT NULL,
		user_id   BIGINT UNSIGNED NOT NULL,
		is_like   BOOLEAN NOT NULL,
		PRIMARY KEY (review_id, user_id),
		CONSTRAINT fk_rv_review FOREIGN KEY (review_id) REFERENCES reviews(id) ON DELETE CASCADE,
		CONSTRAINT fk_rv_user   FOREIGN KEY (user_id)   REFERENCES users(id)   ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS feed (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		event_type ENUM('LIKE','REVIEW','FRIEND') NOT NULL,
		operation  ENUM('ADD','REMOVE','UPDATE') NOT NULL,
		entity_id  BIGINT UNSIGNED NOT NULL,
		created_ms BIGINT NOT NULL,
		INDEX idx_feed_user (user_id, created_ms),
		CONSTRAINT fk_feed_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`INSERT IGNORE INTO ratings (id, name) VALUES
		(1, 'G'), (2, 'PG'), (3, 'PG-13'), (4, 'R'), (5, 'NC-17')`,
	`INSERT IGNORE INTO genres (id, name) VALUES
		(1, 'Comedy'), (2, 'Drama'), (3, 'Cartoon'), (4, 'Thriller'), (5, 'Documentary'), (6, 'Action')`,
}

// Migrate applies the schema. Every statement is idempotent so Migrate is
// safe to run at each start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, stmt)
		}
	}
	logging.Info().Int("statements", len(schema)).Msg("database migrations completed")
	return nil
}
