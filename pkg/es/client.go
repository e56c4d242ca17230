// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"blog-helper-go/internal/config"
	"blog-helper-go/internal/model"
	"blog-helper-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const snippetLength = 100

// postMapping 是帖子索引的映射，cjk 分析器可以切分韩文和中文。
const postMapping = `{
	"mappings": {
		"properties": {
			"post_id": { "type": "long" },
			"title": { "type": "text", "analyzer": "cjk" },
			"content": { "type": "text", "analyzer": "cjk" },
			"keyword": {
				"type": "text",
				"analyzer": "cjk",
				"fields": { "raw": { "type": "keyword" } }
			},
			"related_keywords": { "type": "keyword" },
			"status": { "type": "keyword" },
			"version": { "type": "integer" },
			"member_id": { "type": "long" },
			"updated_at": { "type": "date" }
		}
	}
}`

// PostIndex 负责帖子在 Elasticsearch 中的索引和检索。
type PostIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewPostIndex 初始化 Elasticsearch 客户端。
func NewPostIndex(esCfg config.ElasticsearchConfig) (*PostIndex, error) {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &PostIndex{client: client, index: esCfg.IndexName}, nil
}

// EnsureIndex 检查索引是否存在，如果不存在则创建它。
func (p *PostIndex) EnsureIndex(ctx context.Context) error {
	res, err := p.client.Indices.Exists([]string{p.index}, p.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", p.index)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = p.client.Indices.Create(
		p.index,
		p.client.Indices.Create.WithBody(strings.NewReader(postMapping)),
		p.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", p.index, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("创建索引时 Elasticsearch 返回错误: %s", res.String())
	}

	log.Infof("索引 '%s' 创建成功", p.index)
	return nil
}

// IndexPost 写入或覆盖一篇帖子的文档，文档 ID 即帖子 ID。
func (p *PostIndex) IndexPost(ctx context.Context, doc model.PostDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      p.index,
		DocumentID: strconv.FormatUint(uint64(doc.PostID), 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, p.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引帖子到 Elasticsearch 出错: %s", res.String())
		return fmt.Errorf("failed to index post %d: %s", doc.PostID, res.Status())
	}
	return nil
}

// DeletePost 删除帖子的文档，文档本就不存在时视为成功。
func (p *PostIndex) DeletePost(ctx context.Context, postID uint) error {
	req := esapi.DeleteRequest{
		Index:      p.index,
		DocumentID: strconv.FormatUint(uint64(postID), 10),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, p.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("failed to delete post %d: %s", postID, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64            `json:"_score"`
			Source model.PostDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchPosts 在标题、正文和关键词中全文检索。
func (p *PostIndex) SearchPosts(ctx context.Context, query string, size int) ([]model.PostSearchResult, error) {
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "keyword^2", "content"},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := p.client.Search(
		p.client.Search.WithContext(ctx),
		p.client.Search.WithIndex(p.index),
		p.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search posts failed: %s", res.Status())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]model.PostSearchResult, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		doc := hit.Source
		results = append(results, model.PostSearchResult{
			PostID:  doc.PostID,
			Title:   doc.Title,
			Keyword: doc.Keyword,
			Status:  doc.Status,
			Version: doc.Version,
			Snippet: snippet(doc.Content),
			Score:   hit.Score,
		})
	}
	return results, nil
}

func snippet(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) <= snippetLength {
		return string(runes)
	}
	return string(runes[:snippetLength]) + "..."
}
