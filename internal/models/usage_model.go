package models

type UsageLimits struct {
	PostsRemaining  int  `db:"posts_remaining" json:"posts_remaining"`
	BrandsRemaining int  `db:"brands_remaining" json:"brands_remaining"`
	CanGeneratePost bool `db:"can_generate_post" json:"can_generate_post"`
	CanCreateBrand  bool `db:"can_create_brand" json:"can_create_brand"`
}

const (
	UsageKindPosts  = "posts"
	UsageKindBrands = "brands"
)
