package models

// Strategy is one post concept proposed by the strategy step. It only lives
// for the duration of a generation run.
type Strategy struct {
	Platform     string   `json:"platform"`
	PostType     string   `json:"post_type"`
	KeyMessage   string   `json:"key_message"`
	ContentAngle string   `json:"content_angle"`
	Hashtags     []string `json:"hashtags"`
}

const (
	PlatformLinkedIn  = "LinkedIn"
	PlatformTwitter   = "Twitter"
	PlatformInstagram = "Instagram"
	PlatformFacebook  = "Facebook"
)

const (
	PostTypeTextOnly     = "text-only"
	PostTypeImageCaption = "image+caption"
	PostTypeVideoCaption = "video+caption"
	PostTypeCarousel     = "carousel"
)

var Platforms = []string{PlatformLinkedIn, PlatformTwitter, PlatformInstagram, PlatformFacebook}

var PostTypes = []string{PostTypeTextOnly, PostTypeImageCaption, PostTypeVideoCaption, PostTypeCarousel}
