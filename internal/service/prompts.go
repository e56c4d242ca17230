package service

import (
	"fmt"
	"strings"

	"blog-helper-go/internal/model"
)

const keywordPromptTemplate = `다음 키워드와 관련된 블로그 주제를 추천해주세요:
키워드: %s

다음 형식의 순수한 JSON으로 응답해주세요(다른 형식 불가 ex: md, xml 등):
{
    "relatedKeywords": ["연관 키워드1", "연관 키워드2", ...],
    "suggestedTopics": ["추천 주제1", "추천 주제2", ...]
}
`

const draftPromptTemplate = `다음 키워드와 관련된 블로그 포스트를 작성해주세요:
주제 키워드: %s
관련 키워드: %s

다음 형식의 순수한 JSON으로 응답해주세요(마크다운 형식 X):
{
    "title": "블로그 포스트 제목",
    "content": "블로그 포스트 내용"
}

작성 시 다음 사항을 고려해주세요:
1. SEO를 고려한 제목 작성
2. 명확한 문단 구분
3. 읽기 쉬운 설명
4. 전문적이고 신뢰할 수 있는 톤
5. 관련 키워드를 자연스럽게 포함
6. "content" 필드의 문자열에서 줄바꿈은 반드시 '\n'로 표시해주세요.
`

const improvePromptTemplate = `다음 블로그 포스트를 개선해주세요:
제목: %s
내용: %s

개선 방향: %s
추가 지시사항: %s

다음 형식의 순수한 JSON으로 응답해주세요(다른형식 불가: md, xml 등...):
{
    "title": "개선된 제목",
    "content": "개선된 내용",
    "improvementReason": "개선 내용 설명"
}
`

// 未提供补充说明时写入 prompt 的占位文本。
const noAdditionalInstructions = "없음"

func keywordPrompt(keyword string) string {
	return fmt.Sprintf(keywordPromptTemplate, keyword)
}

func draftPrompt(keyword string, related []string) string {
	return fmt.Sprintf(draftPromptTemplate, keyword, strings.Join(related, ", "))
}

func improvePrompt(p *model.Post, d model.ImprovementDirective) string {
	extra := noAdditionalInstructions
	if d.AdditionalInstructions != nil {
		extra = *d.AdditionalInstructions
	}
	return fmt.Sprintf(improvePromptTemplate, p.Title, p.Content, d.Type.Description(), extra)
}
