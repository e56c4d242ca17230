package model

import "fmt"

// ImprovementType 是改进方向，决定 prompt 中的改进说明。
type ImprovementType string

const (
	ImprovementSEOOptimize  ImprovementType = "SEO_OPTIMIZE"
	ImprovementReadability  ImprovementType = "READABILITY"
	ImprovementProfessional ImprovementType = "PROFESSIONAL"
	ImprovementCasual       ImprovementType = "CASUAL"
)

var improvementDescriptions = map[ImprovementType]string{
	ImprovementSEOOptimize:  "SEO 최적화",
	ImprovementReadability:  "가독성 개선",
	ImprovementProfessional: "전문성 강화",
	ImprovementCasual:       "친근한 톤으로 변경",
}

// Description 返回嵌入 prompt 的可读说明。
func (t ImprovementType) Description() string {
	return improvementDescriptions[t]
}

// Valid 报告 t 是否是已知的改进方向。
func (t ImprovementType) Valid() bool {
	_, ok := improvementDescriptions[t]
	return ok
}

// ParseImprovementType 把请求中的字符串转换为 ImprovementType。
func ParseImprovementType(s string) (ImprovementType, error) {
	t := ImprovementType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown improvement type %q", s)
	}
	return t, nil
}

// ImprovementDirective 是一次改进请求：方向加可选的补充说明。
type ImprovementDirective struct {
	Type                   ImprovementType
	AdditionalInstructions *string
}
