package entity

import "time"

// Limits shared by the composer, the comment path and validation tags.
const (
	MaxContentLength = 500
	MaxImageBytes    = 1 << 20
)

// Author is a denormalized snapshot taken when the post was created or loaded.
// It is not refreshed when the user later edits their profile.
type Author struct {
	Address      string `json:"address"`
	DisplayName  string `json:"display_name"`
	ProfileImage string `json:"profile_image,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Author    Author    `json:"author"`
}

// Post is the client-side view of a feed entry.
// Comments always equals len(CommentList) and Likes never drops below zero.
type Post struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Image       string    `json:"image,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Author      Author    `json:"author"`
	TrustScore  int       `json:"trust_score"`
	Likes       int       `json:"likes"`
	Comments    int       `json:"comments"`
	CommentList []Comment `json:"comment_list"`
	Verified    bool      `json:"verified"`
	Deleted     bool      `json:"deleted"`
	ChainLogged bool      `json:"chain_logged"`
	ChainTxID   string    `json:"chain_tx_id,omitempty"`
	Hash        string    `json:"hash,omitempty"`
}

// Clone returns a deep copy so callers never share the comment slice with the store.
func (p Post) Clone() Post {
	c := p
	c.CommentList = make([]Comment, len(p.CommentList))
	copy(c.CommentList, p.CommentList)
	return c
}

// Normalize restores the counter invariants on a post that came from outside the store.
func (p *Post) Normalize() {
	if p.CommentList == nil {
		p.CommentList = []Comment{}
	}
	p.Comments = len(p.CommentList)
	if p.Likes < 0 {
		p.Likes = 0
	}
	if p.TrustScore < 0 {
		p.TrustScore = 0
	}
	if p.TrustScore > 100 {
		p.TrustScore = 100
	}
}

// IsAuthoredBy reports whether address is the post author. Matching is exact.
func (p Post) IsAuthoredBy(address string) bool {
	return address != "" && p.Author.Address == address
}
