package forums

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for forums, threads and
// replies.
type Repository interface {
	ForumsByCourse(ctx context.Context, courseCode string) ([]Forum, error)
	CreateForum(ctx context.Context, courseCode, topic string) (*Forum, error)
	GetForum(ctx context.Context, courseCode string, forumID int64) (*Forum, error)

	ThreadsByForum(ctx context.Context, forumID int64) ([]Thread, error)
	CreateThread(ctx context.Context, t Thread) (*Thread, error)
	GetThread(ctx context.Context, forumID, threadID int64) (*Thread, error)

	RepliesByThread(ctx context.Context, threadID int64) ([]Reply, error)
	CreateReply(ctx context.Context, rep Reply) (*Reply, error)
}

// PGRepository is the pgx implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CourseExists satisfies the service's CourseChecker.
func (r *PGRepository) CourseExists(ctx context.Context, courseCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM course WHERE course_code = $1)`, courseCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("forums: course exists: %w", err)
	}
	return exists, nil
}

func (r *PGRepository) ForumsByCourse(ctx context.Context, courseCode string) ([]Forum, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT forum_id, course_code, topic FROM discussion_forum
		 WHERE course_code = $1 ORDER BY forum_id`, courseCode)
	if err != nil {
		return nil, fmt.Errorf("forums: list forums: %w", err)
	}
	defer rows.Close()

	var forums []Forum
	for rows.Next() {
		var f Forum
		if err := rows.Scan(&f.ID, &f.CourseCode, &f.Topic); err != nil {
			return nil, fmt.Errorf("forums: scan forum: %w", err)
		}
		forums = append(forums, f)
	}
	return forums, rows.Err()
}

func (r *PGRepository) CreateForum(ctx context.Context, courseCode, topic string) (*Forum, error) {
	f := Forum{CourseCode: courseCode, Topic: topic}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO discussion_forum (course_code, topic) VALUES ($1, $2)
		 RETURNING forum_id`, courseCode, topic).Scan(&f.ID)
	if err != nil {
		return nil, fmt.Errorf("forums: create forum: %w", err)
	}
	return &f, nil
}

func (r *PGRepository) GetForum(ctx context.Context, courseCode string, forumID int64) (*Forum, error) {
	var f Forum
	err := r.pool.QueryRow(ctx,
		`SELECT forum_id, course_code, topic FROM discussion_forum
		 WHERE course_code = $1 AND forum_id = $2`, courseCode, forumID).
		Scan(&f.ID, &f.CourseCode, &f.Topic)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("forums: get forum: %w", err)
	}
	return &f, nil
}

const threadColumns = `thread_id, forum_id, title, post, author_id, created_at`

func (r *PGRepository) ThreadsByForum(ctx context.Context, forumID int64) ([]Thread, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+threadColumns+` FROM discussion_thread
		 WHERE forum_id = $1 ORDER BY thread_id`, forumID)
	if err != nil {
		return nil, fmt.Errorf("forums: list threads: %w", err)
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ID, &t.ForumID, &t.Title, &t.Post, &t.AuthorID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("forums: scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

func (r *PGRepository) CreateThread(ctx context.Context, t Thread) (*Thread, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO discussion_thread (forum_id, title, post, author_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING thread_id`,
		t.ForumID, t.Title, t.Post, t.AuthorID, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("forums: create thread: %w", err)
	}
	return &t, nil
}

func (r *PGRepository) GetThread(ctx context.Context, forumID, threadID int64) (*Thread, error) {
	var t Thread
	err := r.pool.QueryRow(ctx,
		`SELECT `+threadColumns+` FROM discussion_thread
		 WHERE forum_id = $1 AND thread_id = $2`, forumID, threadID).
		Scan(&t.ID, &t.ForumID, &t.Title, &t.Post, &t.AuthorID, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("forums: get thread: %w", err)
	}
	return &t, nil
}

func (r *PGRepository) RepliesByThread(ctx context.Context, threadID int64) ([]Reply, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT reply_id, thread_id, reply_text, author_id, created_at
		 FROM discussion_reply WHERE thread_id = $1 ORDER BY reply_id`, threadID)
	if err != nil {
		return nil, fmt.Errorf("forums: list replies: %w", err)
	}
	defer rows.Close()

	var replies []Reply
	for rows.Next() {
		var rep Reply
		if err := rows.Scan(&rep.ID, &rep.ThreadID, &rep.ReplyText, &rep.AuthorID, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("forums: scan reply: %w", err)
		}
		replies = append(replies, rep)
	}
	return replies, rows.Err()
}

func (r *PGRepository) CreateReply(ctx context.Context, rep Reply) (*Reply, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO discussion_reply (thread_id, reply_text, author_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING reply_id`,
		rep.ThreadID, rep.ReplyText, rep.AuthorID, rep.CreatedAt).Scan(&rep.ID)
	if err != nil {
		return nil, fmt.Errorf("forums: create reply: %w", err)
	}
	return &rep, nil
}
