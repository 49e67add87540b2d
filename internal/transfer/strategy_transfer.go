package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/maheshrc27/adwola-api/internal/models"
)

const StrategyCount = 4

var ErrMalformedStrategy = errors.New("malformed strategy")

type rawStrategy struct {
	Platform     string    `json:"platform"`
	PostType     string    `json:"post_type"`
	KeyMessage   string    `json:"key_message"`
	ContentAngle string    `json:"content_angle"`
	Hashtags     *[]string `json:"hashtags"`
}

// ParseStrategies validates the strategy step's raw completion. Anything
// other than a JSON array of exactly StrategyCount well-formed concepts is
// rejected with an error wrapping ErrMalformedStrategy.
func ParseStrategies(raw string) ([]models.Strategy, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedStrategy)
	}

	var items []rawStrategy
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStrategy, err)
	}
	if len(items) != StrategyCount {
		return nil, fmt.Errorf("%w: expected %d strategies, got %d", ErrMalformedStrategy, StrategyCount, len(items))
	}

	strategies := make([]models.Strategy, 0, len(items))
	for i, item := range items {
		platform, ok := NormalizePlatform(item.Platform)
		if !ok {
			return nil, fmt.Errorf("%w: strategy %d has unknown platform %q", ErrMalformedStrategy, i, item.Platform)
		}
		postType, ok := normalizePostType(item.PostType)
		if !ok {
			return nil, fmt.Errorf("%w: strategy %d has unknown post_type %q", ErrMalformedStrategy, i, item.PostType)
		}
		if strings.TrimSpace(item.KeyMessage) == "" {
			return nil, fmt.Errorf("%w: strategy %d is missing key_message", ErrMalformedStrategy, i)
		}
		if strings.TrimSpace(item.ContentAngle) == "" {
			return nil, fmt.Errorf("%w: strategy %d is missing content_angle", ErrMalformedStrategy, i)
		}
		if item.Hashtags == nil {
			return nil, fmt.Errorf("%w: strategy %d is missing hashtags", ErrMalformedStrategy, i)
		}

		strategies = append(strategies, models.Strategy{
			Platform:     platform,
			PostType:     postType,
			KeyMessage:   strings.TrimSpace(item.KeyMessage),
			ContentAngle: strings.TrimSpace(item.ContentAngle),
			Hashtags:     *item.Hashtags,
		})
	}

	return strategies, nil
}

// NormalizePlatform maps a platform name to its canonical spelling.
func NormalizePlatform(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, p := range models.Platforms {
		if strings.EqualFold(p, name) {
			return p, true
		}
	}
	if strings.EqualFold(name, "X") {
		return models.PlatformTwitter, true
	}
	return name, false
}

func normalizePostType(postType string) (string, bool) {
	postType = strings.TrimSpace(postType)
	for _, t := range models.PostTypes {
		if strings.EqualFold(t, postType) {
			return t, true
		}
	}
	return postType, false
}

// stripCodeFence removes a surrounding markdown code fence, models often add one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
