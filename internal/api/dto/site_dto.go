package dto

import "time"

// PublishNewsRequest payload for the staff news endpoint.
type PublishNewsRequest struct {
	Content string `json:"content"`
	PubDate string `json:"pub_date"`
}

// NewsResponse is one front-page news item.
type NewsResponse struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	PubDate  time.Time `json:"pub_date"`
	AuthorID *string   `json:"author_id,omitempty"`
}
