package consts

const (
	ContentLikeCountKey    = "content:like:count:"
	ContentCommentCountKey = "content:comment:count:"
	ContentRepostCountKey  = "content:repost:count:"
)
