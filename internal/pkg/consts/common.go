package consts

const (
	ContentKindPost    = "post"
	ContentKindComment = "comment"
)

const (
	UserKindNormal = "normal"
	UserKindGuest  = "guest"
)

const (
	// MaxBodyTextLen 正文最大长度
	MaxBodyTextLen = 300

	FeedBatchSize   = 10
	UserBatchSize   = 10
	FollowBatchSize = 20
	ReplyBatchSize  = 10
)

const (
	// ImageClearSentinel 表示"清除图片"的特殊取值
	ImageClearSentinel = "clear"
)
