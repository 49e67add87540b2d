package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/adwola-api/internal/models"
	"github.com/maheshrc27/adwola-api/internal/transfer"
	"github.com/maheshrc27/adwola-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type stubBriefService struct {
	createFn func(ctx context.Context, userID string, bc *transfer.BriefCreation, key string) (*transfer.BriefResult, error)
	getFn    func(ctx context.Context, userID, briefID string) (*transfer.BriefDetails, error)
}

func (s *stubBriefService) CreateBrief(ctx context.Context, userID string, bc *transfer.BriefCreation, key string) (*transfer.BriefResult, error) {
	return s.createFn(ctx, userID, bc, key)
}

func (s *stubBriefService) RunBrief(ctx context.Context, briefID string) (*transfer.BriefResult, error) {
	return nil, errors.New("not used")
}

func (s *stubBriefService) GetBrief(ctx context.Context, userID, briefID string) (*transfer.BriefDetails, error) {
	return s.getFn(ctx, userID, briefID)
}

type stubPostService struct {
	regenerateFn func(ctx context.Context, userID, postID string) (*models.GeneratedPost, error)
}

func (s *stubPostService) RegeneratePost(ctx context.Context, userID, postID string) (*models.GeneratedPost, error) {
	return s.regenerateFn(ctx, userID, postID)
}

func newTestApp(bs *stubBriefService, ps *stubPostService) *fiber.App {
	return NewRouter(RouterConfig{
		BriefService: bs,
		PostService:  ps,
		Verifier:     utils.NewHMACVerifier(testSecret),
	})
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := utils.GenerateToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, auth, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestCreateBrief_Success(t *testing.T) {
	var gotUser, gotKey string
	var gotBody *transfer.BriefCreation
	bs := &stubBriefService{createFn: func(ctx context.Context, userID string, bc *transfer.BriefCreation, key string) (*transfer.BriefResult, error) {
		gotUser, gotKey, gotBody = userID, key, bc
		return &transfer.BriefResult{BriefID: "brief-1", PostsGenerated: 4, Status: models.BriefStatusCompleted}, nil
	}}
	app := newTestApp(bs, &stubPostService{})

	status, body := doJSON(t, app, "POST", "/api/create-brief", bearer(t, "user-1"),
		`{"brandId":"b1","topic":"New sneaker","goal":"awareness","cta":"Shop now"}`,
		"Idempotency-Key", "retry-1")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "brief-1", body["brief_id"])
	assert.Equal(t, float64(4), body["posts_generated"])
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "retry-1", gotKey)
	assert.Equal(t, "Shop now", gotBody.CTA)
}

func TestCreateBrief_Async(t *testing.T) {
	bs := &stubBriefService{createFn: func(ctx context.Context, userID string, bc *transfer.BriefCreation, key string) (*transfer.BriefResult, error) {
		assert.True(t, bc.Async)
		return &transfer.BriefResult{BriefID: "brief-9", Status: models.BriefStatusProcessing}, nil
	}}
	app := newTestApp(bs, &stubPostService{})

	status, body := doJSON(t, app, "POST", "/functions/v1/create-brief", bearer(t, "user-1"), `{"brandId":"b1","topic":"t","async":true}`)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, "brief-9", body["brief_id"])
}

func TestCreateBrief_ReplayStillProcessing(t *testing.T) {
	bs := &stubBriefService{createFn: func(ctx context.Context, userID string, bc *transfer.BriefCreation, key string) (*transfer.BriefResult, error) {
		assert.False(t, bc.Async)
		return &transfer.BriefResult{BriefID: "brief-1", PostsGenerated: 2, Status: models.BriefStatusProcessing}, nil
	}}
	app := newTestApp(bs, &stubPostService{})

	status, body := doJSON(t, app, "POST", "/api/create-brief", bearer(t, "user-1"),
		`{"brandId":"b1","topic":"t"}`, "Idempotency-Key", "retry-1")
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "processing", body["status"])
	assert.NotContains(t, body, "posts_generated")
}

func TestCreateBrief_ReplayOfFailedBrief(t *testing.T) {
	bs := &stubBriefService{createFn: func(ctx context.Context, userID string, bc *transfer.BriefCreation, key string) (*transfer.BriefResult, error) {
		return nil, models.NewBriefFailedError("brief-1", 0)
	}}
	app := newTestApp(bs, &stubPostService{})

	status, body := doJSON(t, app, "POST", "/api/create-brief", bearer(t, "user-1"),
		`{"brandId":"b1","topic":"t"}`, "Idempotency-Key", "retry-1")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "brief generation failed", body["error"])
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "brief-1", body["brief_id"])
}

func TestCreateBrief_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		check  func(t *testing.T, body map[string]any)
	}{
		{
			name:   "Validation",
			err:    models.NewValidationError("brandId and topic are required"),
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "brandId and topic are required", body["error"])
			},
		},
		{
			name:   "Usage Limit",
			err:    models.NewUsageLimitError(&models.UsageLimits{PostsRemaining: 0}),
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "USAGE_LIMIT_EXCEEDED", body["code"])
				assert.Equal(t, true, body["upgradeRequired"])
				assert.Equal(t, float64(0), body["posts_remaining"])
				assert.NotEmpty(t, body["error"])
			},
		},
		{
			name:   "Not Found",
			err:    models.NewNotFoundError("Brand", "b1"),
			status: http.StatusNotFound,
		},
		{
			name:   "Usage Unavailable",
			err:    &models.AppError{Code: models.CodeUsageUnavailable, Message: "try later"},
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "Conflict",
			err:    &models.AppError{Code: models.CodeConflict, Message: "in progress"},
			status: http.StatusConflict,
		},
		{
			name:   "Malformed Strategy",
			err:    models.NewMalformedStrategyError(errors.New("expected 4 strategies, got 2")),
			status: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["error"], "expected 4 strategies")
			},
		},
		{
			name:   "Unexpected",
			err:    errors.New("pq: connection refused"),
			status: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "pq: connection refused", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := &stubBriefService{createFn: func(ctx context.Context, userID string, bc *transfer.BriefCreation, key string) (*transfer.BriefResult, error) {
				return nil, tt.err
			}}
			app := newTestApp(bs, &stubPostService{})

			status, body := doJSON(t, app, "POST", "/api/create-brief", bearer(t, "user-1"), `{"brandId":"b1","topic":"t"}`)
			assert.Equal(t, tt.status, status)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestCreateBrief_Unauthorized(t *testing.T) {
	called := false
	bs := &stubBriefService{createFn: func(ctx context.Context, userID string, bc *transfer.BriefCreation, key string) (*transfer.BriefResult, error) {
		called = true
		return nil, nil
	}}
	app := newTestApp(bs, &stubPostService{})

	status, body := doJSON(t, app, "POST", "/api/create-brief", "", `{"brandId":"b1","topic":"t"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["error"])

	status, _ = doJSON(t, app, "POST", "/api/create-brief", "Bearer garbage", `{"brandId":"b1","topic":"t"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, called)
}

func TestCreateBrief_BadBody(t *testing.T) {
	app := newTestApp(&stubBriefService{}, &stubPostService{})

	status, body := doJSON(t, app, "POST", "/api/create-brief", bearer(t, "user-1"), `{"brandId":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestRegeneratePost(t *testing.T) {
	ps := &stubPostService{regenerateFn: func(ctx context.Context, userID, postID string) (*models.GeneratedPost, error) {
		switch postID {
		case "mine":
			return &models.GeneratedPost{ID: "mine", Platform: "Twitter", GeneratedText: "fresh", Status: "draft"}, nil
		case "theirs":
			return nil, models.NewForbiddenError("You do not have permission to regenerate this post")
		default:
			return nil, models.NewNotFoundError("Post", postID)
		}
	}}
	app := newTestApp(&stubBriefService{}, ps)

	status, body := doJSON(t, app, "POST", "/api/regenerate-post", bearer(t, "user-1"), `{"post_id":"mine"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	post := body["post"].(map[string]any)
	assert.Equal(t, "fresh", post["generated_text"])

	status, _ = doJSON(t, app, "POST", "/functions/v1/regenerate-post", bearer(t, "user-1"), `{"post_id":"theirs"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, "POST", "/api/regenerate-post", bearer(t, "user-1"), `{"post_id":"gone"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetBrief(t *testing.T) {
	bs := &stubBriefService{getFn: func(ctx context.Context, userID, briefID string) (*transfer.BriefDetails, error) {
		assert.Equal(t, "user-1", userID)
		return &transfer.BriefDetails{
			Brief: &models.ContentBrief{ID: briefID, Status: models.BriefStatusProcessing},
			Posts: []*models.GeneratedPost{},
		}, nil
	}}
	app := newTestApp(bs, &stubPostService{})

	status, body := doJSON(t, app, "GET", "/api/briefs/brief-1", bearer(t, "user-1"), "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "processing", body["brief"].(map[string]any)["status"])
}

func TestPreflight(t *testing.T) {
	app := newTestApp(&stubBriefService{}, &stubPostService{})

	req := httptest.NewRequest("OPTIONS", "/functions/v1/create-brief", nil)
	req.Header.Set("Origin", "https://app.adwola.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "authorization")
}

func TestHealthz(t *testing.T) {
	app := NewRouter(RouterConfig{
		Verifier: utils.NewHMACVerifier(testSecret),
		Ping:     func(ctx context.Context) error { return errors.New("down") },
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
