package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog-helper-go/internal/model"
	"blog-helper-go/internal/repository"
	"blog-helper-go/pkg/llm"
	"blog-helper-go/pkg/log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 发布归档的下载链接有效期。
const publishURLExpiry = 24 * time.Hour

// 一次搜索最多返回的结果数。
const searchResultSize = 20

// PostIndexer 是帖子全文索引的抽象。
type PostIndexer interface {
	IndexPost(ctx context.Context, doc model.PostDocument) error
	DeletePost(ctx context.Context, postID uint) error
	SearchPosts(ctx context.Context, query string, size int) ([]model.PostSearchResult, error)
}

// PostArchive 保存已发布帖子的 Markdown 文件。
type PostArchive interface {
	Upload(ctx context.Context, objectName string, content []byte, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// PostService 接口定义了帖子生成与管理的业务操作。
type PostService interface {
	CreateDraft(ctx context.Context, keyword, email string) (*PostResponse, error)
	Get(ctx context.Context, id uint) (*PostResponse, error)
	List(ctx context.Context) ([]PostResponse, error)
	Update(ctx context.Context, id uint, title, content string) (*PostResponse, error)
	Delete(ctx context.Context, id uint) error
	Publish(ctx context.Context, id uint) (*PublishResponse, error)
	Search(ctx context.Context, query string) ([]model.PostSearchResult, error)
}

type postService struct {
	llmClient       llm.Client
	keywordService  KeywordService
	postRepo        repository.PostRepository
	memberRepo      repository.MemberRepository
	indexer         PostIndexer
	archive         PostArchive
	analysisTimeout time.Duration
	now             func() time.Time
}

// NewPostService 创建一个新的 PostService 实例。
// analysisTimeout 限制草稿生成中关键词分析的耗时，<= 0 表示不限制。indexer 与 archive 可以为 nil。
func NewPostService(
	llmClient llm.Client,
	keywordService KeywordService,
	postRepo repository.PostRepository,
	memberRepo repository.MemberRepository,
	indexer PostIndexer,
	archive PostArchive,
	analysisTimeout time.Duration,
) PostService {
	return &postService{
		llmClient:       llmClient,
		keywordService:  keywordService,
		postRepo:        postRepo,
		memberRepo:      memberRepo,
		indexer:         indexer,
		archive:         archive,
		analysisTimeout: analysisTimeout,
		now:             time.Now,
	}
}

// generatedPost 是草稿 prompt 要求模型返回的结构。
type generatedPost struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (g *generatedPost) Validate() error {
	if strings.TrimSpace(g.Title) == "" || strings.TrimSpace(g.Content) == "" {
		return errors.New("title and content are required")
	}
	return nil
}

// CreateDraft 先分析关键词，再让模型生成标题和正文，最后保存为版本 1 的草稿。
// 分析结果独立提交，之后的失败不会回滚它，也不会写入任何帖子。
func (s *postService) CreateDraft(ctx context.Context, keyword, email string) (*PostResponse, error) {
	member, err := s.memberRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	analysis, err := s.analyzeWithTimeout(ctx, keyword)
	if err != nil {
		return nil, err
	}

	raw, err := s.llmClient.Complete(ctx, draftPrompt(analysis.OriginalKeyword, analysis.RelatedKeywords))
	if err != nil {
		log.Errorf("[PostService] 生成草稿时调用补全接口失败, keyword: %s, error: %v", analysis.OriginalKeyword, err)
		return nil, &PostGenerationError{Keyword: analysis.OriginalKeyword, Err: err}
	}
	generated, err := llm.ParseJSON[generatedPost](raw)
	if err != nil {
		log.Errorf("[PostService] 草稿解析失败, keyword: %s, raw: %s", analysis.OriginalKeyword, raw)
		return nil, &PostGenerationError{Keyword: analysis.OriginalKeyword, Err: err}
	}

	post := model.NewDraftPost(generated.Title, generated.Content, analysis.OriginalKeyword, analysis.RelatedKeywords, member.ID)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("保存草稿失败: %w", err)
	}
	log.Infof("[PostService] 草稿创建成功, postID: %d, memberID: %d, keyword: %s", post.ID, member.ID, post.Keyword)

	s.indexPost(ctx, post)
	return newPostResponse(post), nil
}

func (s *postService) analyzeWithTimeout(ctx context.Context, keyword string) (*KeywordAnalyzeResponse, error) {
	if s.analysisTimeout <= 0 {
		return s.keywordService.Analyze(ctx, keyword)
	}

	analysisCtx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()

	analysis, err := s.keywordService.Analyze(analysisCtx, keyword)
	if err != nil && errors.Is(analysisCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, llm.ErrTimeout) {
		log.Warnf("[PostService] 关键词分析超时 (%s), keyword: %s", s.analysisTimeout, keyword)
		return nil, llm.NewTimeoutError(err)
	}
	return analysis, err
}

// Get 根据 ID 返回帖子。
func (s *postService) Get(ctx context.Context, id uint) (*PostResponse, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return newPostResponse(post), nil
}

// List 返回全部帖子，最新创建的在前。
func (s *postService) List(ctx context.Context) ([]PostResponse, error) {
	posts, err := s.postRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]PostResponse, 0, len(posts))
	for i := range posts {
		result = append(result, *newPostResponse(&posts[i]))
	}
	return result, nil
}

// Update 手动修改标题和正文。版本号不变，也不产生历史记录。
func (s *postService) Update(ctx context.Context, id uint, title, content string) (*PostResponse, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, invalidInput("标题和内容不能为空")
	}
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Edit(title, content)
	post.UpdatedAt = s.now()
	if err := s.saveEdit(ctx, post); err != nil {
		return nil, err
	}

	s.indexPost(ctx, post)
	return newPostResponse(post), nil
}

// Delete 删除帖子及其历史记录。
func (s *postService) Delete(ctx context.Context, id uint) error {
	if _, err := s.findPost(ctx, id); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("删除帖子失败: %w", err)
	}

	if s.indexer != nil {
		if err := s.indexer.DeletePost(ctx, id); err != nil {
			log.Warnf("[PostService] 从索引中删除帖子失败, postID: %d, error: %v", id, err)
		}
	}
	log.Infof("[PostService] 帖子已删除, postID: %d", id)
	return nil
}

// Publish 把帖子归档为 Markdown 并标记为已发布。已发布的帖子再次发布会生成新的归档。
func (s *postService) Publish(ctx context.Context, id uint) (*PublishResponse, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &PublishResponse{}
	if s.archive != nil {
		objectName := fmt.Sprintf("posts/%d/v%d-%s.md", post.ID, post.Version, uuid.NewString())
		if err := s.archive.Upload(ctx, objectName, renderMarkdown(post), "text/markdown; charset=utf-8"); err != nil {
			log.Errorf("[PostService] 上传发布归档失败, postID: %d, object: %s, error: %v", post.ID, objectName, err)
			return nil, fmt.Errorf("上传发布归档失败: %w", err)
		}
		resp.ObjectName = objectName
	}

	post.Publish()
	post.UpdatedAt = s.now()
	if err := s.saveEdit(ctx, post); err != nil {
		return nil, err
	}
	s.indexPost(ctx, post)

	if resp.ObjectName != "" {
		url, err := s.archive.PresignedURL(ctx, resp.ObjectName, publishURLExpiry)
		if err != nil {
			log.Warnf("[PostService] 生成下载链接失败, object: %s, error: %v", resp.ObjectName, err)
		} else {
			resp.DownloadURL = url
		}
	}

	log.Infof("[PostService] 帖子已发布, postID: %d, version: %d", post.ID, post.Version)
	resp.Post = newPostResponse(post)
	return resp, nil
}

// Search 在全文索引中搜索帖子。
func (s *postService) Search(ctx context.Context, query string) ([]model.PostSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidInput("搜索关键词不能为空")
	}
	if s.indexer == nil {
		return nil, errors.New("帖子搜索未启用")
	}
	return s.indexer.SearchPosts(ctx, query, searchResultSize)
}

func (s *postService) findPost(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// saveEdit 带 revision 检查写回手动修改，期间被其他请求修改或删除时分别返回 ErrVersionConflict 和 ErrPostNotFound。
func (s *postService) saveEdit(ctx context.Context, post *model.Post) error {
	err := s.postRepo.Update(ctx, post)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrVersionConflict):
		log.Warnf("[PostService] 帖子已被并发修改, postID: %d", post.ID)
		return ErrVersionConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrPostNotFound
	default:
		return fmt.Errorf("更新帖子 %d 失败: %w", post.ID, err)
	}
}

// indexPost 同步索引失败只记录日志，不影响主流程。
func (s *postService) indexPost(ctx context.Context, post *model.Post) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexPost(ctx, model.NewPostDocument(post)); err != nil {
		log.Warnf("[PostService] 索引帖子失败, postID: %d, error: %v", post.ID, err)
	}
}

func renderMarkdown(post *model.Post) []byte {
	return []byte("# " + post.Title + "\n\n" + post.Content + "\n")
}
