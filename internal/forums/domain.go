package forums

import "time"

// Forum is the per-course discussion board for one topic.
type Forum struct {
	ID         int64  `json:"forum_id"`
	CourseCode string `json:"course_code"`
	Topic      string `json:"topic"`
}

// Thread is a discussion opened under a forum.
type Thread struct {
	ID        int64     `json:"thread_id"`
	ForumID   int64     `json:"forum_id"`
	Title     string    `json:"title"`
	Post      string    `json:"post"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Reply is one answer inside a thread.
type Reply struct {
	ID        int64     `json:"reply_id"`
	ThreadID  int64     `json:"thread_id"`
	ReplyText string    `json:"reply_text"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
