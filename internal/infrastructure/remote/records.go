package remote

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/vortex-feed/internal/domain/entity"
)

// Defaults applied to raw records with missing fields.
const (
	defaultTrustScore  = 95
	defaultDisplayName = "Anonymous"
	defaultAddress     = "Unknown"
)

// postRecord is a post as stored by the backend. Older rows use the
// frontend field names, so both spellings are accepted.
type postRecord struct {
	PostID        string          `json:"post_id"`
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	Content       string          `json:"content"`
	ImageURL      string          `json:"image_url"`
	Image         string          `json:"image"`
	Timestamp     flexTime        `json:"timestamp"`
	WalletAddress string          `json:"wallet_address"`
	DisplayName   string          `json:"display_name"`
	Author        *authorRecord   `json:"author"`
	TrustScore    *int            `json:"trust_score"`
	Likes         int             `json:"likes"`
	Comments      int             `json:"comments"`
	CommentList   []commentRecord `json:"comment_list"`
	CommentListJS []commentRecord `json:"commentList"`
	Verified      *bool           `json:"verified"`
	Deleted       bool            `json:"deleted"`
	SolanaLogged  bool            `json:"solana_logged"`
	SolanaTxHash  string          `json:"solana_tx_hash"`
	PostHash      string          `json:"post_hash"`
}

type authorRecord struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName"`
}

type commentRecord struct {
	ID            string        `json:"id"`
	CommentID     string        `json:"comment_id"`
	Content       string        `json:"content"`
	Timestamp     flexTime      `json:"timestamp"`
	WalletAddress string        `json:"wallet_address"`
	DisplayName   string        `json:"display_name"`
	Author        *authorRecord `json:"author"`
}

func (r postRecord) toEntity() entity.Post {
	p := entity.Post{
		ID:          first(r.PostID, r.ID),
		Content:     first(r.Text, r.Content),
		Image:       first(r.ImageURL, r.Image),
		Timestamp:   time.Time(r.Timestamp),
		TrustScore:  defaultTrustScore,
		Likes:       r.Likes,
		Comments:    r.Comments,
		Verified:    true,
		Deleted:     r.Deleted,
		ChainLogged: r.SolanaLogged,
		ChainTxID:   r.SolanaTxHash,
		Hash:        r.PostHash,
	}
	var aAddr, aName string
	if r.Author != nil {
		aAddr, aName = r.Author.Address, r.Author.DisplayName
	}
	p.Author = entity.Author{
		Address:     first(r.WalletAddress, aAddr, defaultAddress),
		DisplayName: first(r.DisplayName, aName, defaultDisplayName),
	}
	if r.TrustScore != nil {
		p.TrustScore = *r.TrustScore
	}
	if r.Verified != nil {
		p.Verified = *r.Verified
	}

	raw := r.CommentList
	if len(raw) == 0 {
		raw = r.CommentListJS
	}
	p.CommentList = make([]entity.Comment, 0, len(raw))
	for _, c := range raw {
		p.CommentList = append(p.CommentList, c.toEntity())
	}
	return p
}

func (r commentRecord) toEntity() entity.Comment {
	var aAddr, aName string
	if r.Author != nil {
		aAddr, aName = r.Author.Address, r.Author.DisplayName
	}
	return entity.Comment{
		ID:        first(r.ID, r.CommentID),
		Content:   r.Content,
		Timestamp: time.Time(r.Timestamp),
		Author: entity.Author{
			Address:     first(r.WalletAddress, aAddr, defaultAddress),
			DisplayName: first(r.DisplayName, aName, defaultDisplayName),
		},
	}
}

// createRecord is the body of POST /api/posts/create.
type createRecord struct {
	PostID        string    `json:"post_id"`
	WalletAddress string    `json:"wallet_address"`
	DisplayName   string    `json:"display_name"`
	Text          string    `json:"text"`
	ImageURL      string    `json:"image_url"`
	Timestamp     time.Time `json:"timestamp"`
	PostHash      string    `json:"post_hash"`
	ActionType    int       `json:"action_type"`
	TrustScore    int       `json:"trust_score"`
	Verified      bool      `json:"verified"`
	SolanaTxHash  *string   `json:"solana_tx_hash"`
}

func newCreateRecord(p entity.Post) createRecord {
	rec := createRecord{
		PostID:        p.ID,
		WalletAddress: p.Author.Address,
		DisplayName:   p.Author.DisplayName,
		Text:          p.Content,
		ImageURL:      p.Image,
		Timestamp:     p.Timestamp,
		PostHash:      p.Hash,
		ActionType:    int(entity.ChainCreate),
		TrustScore:    p.TrustScore,
		Verified:      p.Verified,
	}
	if p.ChainTxID != "" {
		tx := p.ChainTxID
		rec.SolanaTxHash = &tx
	}
	return rec
}

// flexTime accepts RFC 3339 strings and unix milliseconds.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = flexTime(time.UnixMilli(ms).UTC())
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = flexTime(parsed.UTC())
			return nil
		}
	}
	// an unreadable timestamp should not cost the whole feed
	return nil
}

// userEnvelope is the body of GET /api/users/me/{address}.
type userEnvelope struct {
	Success bool            `json:"success"`
	User    json.RawMessage `json:"user"`
	Message string          `json:"message"`
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
