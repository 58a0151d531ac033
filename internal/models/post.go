package models

import (
	"slices"
	"time"
)

// DefaultFlagReason is used when a flag is submitted without a reason.
const DefaultFlagReason = "Inappropriate"

// Post is a feed entry.
type Post struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	// AuthorUsername is captured at creation time and not kept in sync.
	AuthorUsername string    `json:"author_username"`
	Text           string    `json:"text"`
	Likes          []string  `json:"likes"`
	Dislikes       []string  `json:"dislikes"`
	Comments       []Comment `json:"comments"`
	Flags          []Flag    `json:"flags"`
	CreatedAt      time.Time `json:"created_at"`
}

// Comment is an immutable reply on a post.
type Comment struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Flag is a moderation report on a post.
type Flag struct {
	ID         string `json:"id"`
	ReporterID string `json:"reporter_id"`
	Reason     string `json:"reason"`
}

func (p *Post) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

func (p *Post) DislikedBy(userID string) bool {
	return slices.Contains(p.Dislikes, userID)
}

// IsFlagged reports whether the post has at least one open flag.
func (p *Post) IsFlagged() bool {
	return len(p.Flags) > 0
}

// TrendingScore weighs a like twice as much as a comment.
func (p *Post) TrendingScore() int {
	return 2*len(p.Likes) + len(p.Comments)
}

// removeID returns ids without id, preserving order.
func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(x string) bool { return x == id })
}

// addID appends id unless it is already present.
func addID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// ToggleLike flips userID's like and returns true if the like was added.
// Adding a like clears a dislike from the same user.
func (p *Post) ToggleLike(userID string) bool {
	if p.LikedBy(userID) {
		p.Likes = removeID(p.Likes, userID)
		return false
	}
	p.Likes = append(p.Likes, userID)
	p.Dislikes = removeID(p.Dislikes, userID)
	return true
}

// ToggleDislike flips userID's dislike and returns true if it was added.
// Adding a dislike clears a like from the same user.
func (p *Post) ToggleDislike(userID string) bool {
	if p.DislikedBy(userID) {
		p.Dislikes = removeID(p.Dislikes, userID)
		return false
	}
	p.Dislikes = append(p.Dislikes, userID)
	p.Likes = removeID(p.Likes, userID)
	return true
}
