package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maheshrc27/adwola-api/internal/models"
)

const (
	ownerID = "user-owner"
	otherID = "user-other"
	brandID = "0b5e1c2a-6f0e-4a8e-9a57-3c1f2f0e9d11"
	postID  = "7d9f8a66-2c3b-4c1e-8f4a-5b6c7d8e9f00"
)

type stubUsageRepo struct {
	mu         sync.Mutex
	limits     *models.UsageLimits
	checkErr   error
	incErr     error
	increments []int
}

func (r *stubUsageRepo) CheckLimits(ctx context.Context, userID string) (*models.UsageLimits, error) {
	return r.limits, r.checkErr
}

func (r *stubUsageRepo) Increment(ctx context.Context, userID, kind string, by int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incErr != nil {
		return r.incErr
	}
	r.increments = append(r.increments, by)
	return nil
}

type stubBrandRepo struct {
	brands map[string]*models.Brand
	err    error
}

func (r *stubBrandRepo) GetByIDForUser(ctx context.Context, id, userID string) (*models.Brand, error) {
	if r.err != nil {
		return nil, r.err
	}
	b, ok := r.brands[id]
	if !ok || b.UserID != userID {
		return nil, nil
	}
	return b, nil
}

type stubBriefRepo struct {
	mu        sync.Mutex
	briefs    map[string]*models.ContentBrief
	createErr error
	updateErr error
	seq       int
}

func newStubBriefRepo() *stubBriefRepo {
	return &stubBriefRepo{briefs: map[string]*models.ContentBrief{}}
}

func (r *stubBriefRepo) Create(ctx context.Context, brief *models.ContentBrief) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.seq++
	id := fmt.Sprintf("brief-%d", r.seq)
	stored := *brief
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.briefs[id] = &stored
	return id, nil
}

func (r *stubBriefRepo) GetByID(ctx context.Context, id string) (*models.ContentBrief, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.briefs[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *stubBriefRepo) GetByIDForUser(ctx context.Context, id, userID string) (*models.ContentBrief, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil || b == nil || b.UserID != userID {
		return nil, err
	}
	return b, nil
}

func (r *stubBriefRepo) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return false, r.updateErr
	}
	b, ok := r.briefs[id]
	if !ok || b.Status != models.BriefStatusProcessing {
		return false, nil
	}
	b.Status = status
	return true, nil
}

func (r *stubBriefRepo) setStatus(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.briefs[id].Status = status
}

func (r *stubBriefRepo) MarkStaleAsError(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (r *stubBriefRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.briefs)
}

func (r *stubBriefRepo) only() *models.ContentBrief {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.briefs {
		return b
	}
	return nil
}

type stubPostRepo struct {
	mu        sync.Mutex
	posts     map[string]*models.GeneratedPost
	owners    map[string]*models.PostWithOwner
	createErr func(post *models.GeneratedPost) error
	updateErr error
	seq       int
	updates   int
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: map[string]*models.GeneratedPost{}, owners: map[string]*models.PostWithOwner{}}
}

func (r *stubPostRepo) Create(ctx context.Context, post *models.GeneratedPost) (*models.GeneratedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		if err := r.createErr(post); err != nil {
			return nil, err
		}
	}
	r.seq++
	stored := *post
	stored.ID = fmt.Sprintf("post-%d", r.seq)
	r.posts[stored.ID] = &stored
	c := stored
	return &c, nil
}

func (r *stubPostRepo) GetWithOwner(ctx context.Context, id string) (*models.PostWithOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.owners[id]
	if !ok {
		return nil, nil
	}
	c := *o
	c.Post = *r.posts[id]
	return &c, nil
}

func (r *stubPostRepo) UpdateText(ctx context.Context, id, text string) (*models.GeneratedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	r.updates++
	p.GeneratedText = text
	p.UpdatedAt = time.Now()
	c := *p
	return &c, nil
}

func (r *stubPostRepo) GetByBriefID(ctx context.Context, briefID string) ([]*models.GeneratedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GeneratedPost
	for _, p := range r.posts {
		if p.BriefID == briefID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubPostRepo) all() []*models.GeneratedPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.GeneratedPost, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, p)
	}
	return out
}

type stubText struct {
	mu       sync.Mutex
	fn       func(ctx context.Context, req CompletionRequest) (string, error)
	requests []CompletionRequest
}

func (s *stubText) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.fn(ctx, req)
}

func (s *stubText) byKind(kind string) []CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CompletionRequest
	for _, r := range s.requests {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

type stubImage struct {
	fn func(ctx context.Context, prompt string) ([]byte, error)
}

func (s *stubImage) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return s.fn(ctx, prompt)
}

type stubStorage struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *stubStorage) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type stubEnqueuer struct {
	ids []string
	err error
}

func (q *stubEnqueuer) EnqueueBriefGeneration(ctx context.Context, briefID string) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, briefID)
	return nil
}
