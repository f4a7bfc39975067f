package dto

type CreatePostDTO struct {
	Text         string  `json:"text"`
	Image        string  `json:"image"`
	QuotedPostID *string `json:"quoted_post_id"`
}

type CreateCommentDTO struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

type EditContentDTO struct {
	Text string `json:"text"`
}
