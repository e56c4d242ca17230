package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"blog-helper-go/internal/model"
	"blog-helper-go/internal/repository"
	"blog-helper-go/pkg/tasks"

	"gorm.io/gorm"
)

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[uint]*model.Member
	nextID  uint

	// beforeCreate 在插入之前执行，用于模拟并发注册。
	beforeCreate func(r *fakeMemberRepo)
}

func newFakeMemberRepo(members ...*model.Member) *fakeMemberRepo {
	r := &fakeMemberRepo{members: map[uint]*model.Member{}}
	for _, m := range members {
		_ = r.Create(context.Background(), m)
	}
	return r
}

// Create 模拟 email 唯一索引，冲突时返回 gorm.ErrDuplicatedKey。
func (r *fakeMemberRepo) Create(_ context.Context, m *model.Member) error {
	if r.beforeCreate != nil {
		r.beforeCreate(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.members {
		if existing.Email == m.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *fakeMemberRepo) FindByEmail(_ context.Context, email string) (*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMemberRepo) FindByID(_ context.Context, id uint) (*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMemberRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

type fakeKeywordRepo struct {
	mu      sync.Mutex
	records []model.Keyword
}

func (r *fakeKeywordRepo) Create(_ context.Context, k *model.Keyword) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k.ID = uint(len(r.records) + 1)
	r.records = append(r.records, *k)
	return nil
}

func (r *fakeKeywordRepo) FindByOriginalKeyword(_ context.Context, keyword string) ([]model.Keyword, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Keyword
	for i := len(r.records) - 1; i >= 0; i-- {
		if strings.EqualFold(r.records[i].OriginalKeyword, keyword) {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *fakeKeywordRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// fakePostRepo 模拟数据库行为，包括按版本号的条件更新。
type fakePostRepo struct {
	mu            sync.Mutex
	posts         map[uint]*model.Post
	histories     []model.PostHistory
	nextID        uint
	nextHistoryID uint

	// beforeApply 与 beforeUpdate 在条件更新之前执行，用于模拟并发写入。
	beforeApply  func(r *fakePostRepo)
	beforeUpdate func(r *fakePostRepo)
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[uint]*model.Post{}}
}

func (r *fakePostRepo) Create(_ context.Context, p *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	now := time.Now()
	p.CreatedAt = now.Add(time.Duration(p.ID) * time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	cp.Histories = nil
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakePostRepo) FindByID(_ context.Context, id uint) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) FindAll(_ context.Context) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePostRepo) Update(_ context.Context, p *model.Post) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Revision != p.Revision {
		return repository.ErrVersionConflict
	}
	stored.Title = p.Title
	stored.Content = p.Content
	stored.Status = p.Status
	stored.UpdatedAt = p.UpdatedAt
	stored.Revision++
	p.Revision = stored.Revision
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.posts, id)
	kept := r.histories[:0]
	for _, h := range r.histories {
		if h.PostID != id {
			kept = append(kept, h)
		}
	}
	r.histories = kept
	return nil
}

func (r *fakePostRepo) ApplyImprovement(_ context.Context, p *model.Post, expectedVersion int, h *model.PostHistory) error {
	if r.beforeApply != nil {
		r.beforeApply(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[p.ID]
	if !ok || stored.Version != expectedVersion || stored.Revision != p.Revision {
		return repository.ErrVersionConflict
	}
	stored.Title = p.Title
	stored.Content = p.Content
	stored.Version = p.Version
	stored.UpdatedAt = p.UpdatedAt
	stored.Revision++
	p.Revision = stored.Revision
	r.nextHistoryID++
	h.ID = r.nextHistoryID
	r.histories = append(r.histories, *h)
	return nil
}

func (r *fakePostRepo) FindHistories(_ context.Context, postID uint) ([]model.PostHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PostHistory
	for _, h := range r.histories {
		if h.PostID == postID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakePostRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

func (r *fakePostRepo) historyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.histories)
}

type fakeTokenRepo struct {
	mu    sync.Mutex
	items map[string]time.Duration
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{items: map[string]time.Duration{}}
}

func (r *fakeTokenRepo) Blacklist(_ context.Context, token string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[token] = ttl
	return nil
}

func (r *fakeTokenRepo) IsBlacklisted(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[token]
	return ok, nil
}

type fakeIndexer struct {
	mu      sync.Mutex
	docs    map[uint]model.PostDocument
	queries []string
	err     error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{docs: map[uint]model.PostDocument{}}
}

func (f *fakeIndexer) IndexPost(_ context.Context, doc model.PostDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs[doc.PostID] = doc
	return nil
}

func (f *fakeIndexer) DeletePost(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return f.err
}

func (f *fakeIndexer) SearchPosts(_ context.Context, query string, _ int) ([]model.PostSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	var out []model.PostSearchResult
	for _, d := range f.docs {
		if strings.Contains(d.Title, query) || strings.Contains(d.Content, query) {
			out = append(out, model.PostSearchResult{PostID: d.PostID, Title: d.Title})
		}
	}
	return out, f.err
}

type fakeArchive struct {
	objects map[string][]byte
	err     error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: map[string][]byte{}}
}

func (f *fakeArchive) Upload(_ context.Context, objectName string, content []byte, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.objects[objectName] = content
	return nil
}

func (f *fakeArchive) PresignedURL(_ context.Context, objectName string, expiry time.Duration) (string, error) {
	return "http://minio.local/" + objectName + "?expires=" + expiry.String(), nil
}

type fakePublisher struct {
	tasks []tasks.KeywordAnalysisTask
	err   error
}

func (f *fakePublisher) PublishKeywordTask(_ context.Context, task tasks.KeywordAnalysisTask) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}
