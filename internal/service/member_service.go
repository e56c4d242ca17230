// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"strings"

	"blog-helper-go/internal/model"
	"blog-helper-go/internal/repository"
	"blog-helper-go/pkg/hash"
	"blog-helper-go/pkg/log"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

// signupFields 承载注册时由 validator 检查的字段。
type signupFields struct {
	Email    string `validate:"required,email"`
	Nickname string `validate:"required,min=2,max=10"`
}

const passwordSpecialChars = "@$!%*#?&"

// MemberService 接口定义了会员相关的业务操作。
type MemberService interface {
	Signup(ctx context.Context, email, password, nickname string) (*MemberResponse, error)
	GetByEmail(ctx context.Context, email string) (*model.Member, error)
}

type memberService struct {
	memberRepo repository.MemberRepository
}

// NewMemberService 创建一个新的 MemberService 实例。
func NewMemberService(memberRepo repository.MemberRepository) MemberService {
	return &memberService{memberRepo: memberRepo}
}

// Signup 注册新会员，密码以 bcrypt 哈希保存。
func (s *memberService) Signup(ctx context.Context, email, password, nickname string) (*MemberResponse, error) {
	email = strings.TrimSpace(email)
	nickname = strings.TrimSpace(nickname)
	if err := validateSignup(email, password, nickname); err != nil {
		return nil, err
	}

	exists, err := s.memberRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailDuplicate
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	member := &model.Member{
		Email:    email,
		Password: hashedPassword,
		Nickname: nickname,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		// 并发注册时唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailDuplicate
		}
		return nil, err
	}

	log.Infof("[MemberService] 会员注册成功, memberID: %d, email: %s", member.ID, member.Email)
	return NewMemberResponse(member), nil
}

// GetByEmail 根据邮箱查找会员。
func (s *memberService) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	member, err := s.memberRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

func validateSignup(email, password, nickname string) error {
	if err := validate.Struct(signupFields{Email: email, Nickname: nickname}); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return err
		}
		if fieldErrs[0].Field() == "Email" {
			return invalidInput("邮箱格式不正确")
		}
		return invalidInput("昵称长度必须在 2 到 10 个字符之间")
	}
	// 字符类别规则无法用 validator 标签表达
	if !validPassword(password) {
		return invalidInput("密码至少 8 位，且必须包含字母、数字和特殊字符(%s)", passwordSpecialChars)
	}
	return nil
}

// validPassword 要求只包含字母、数字和指定特殊字符，且三类至少各出现一次。
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var letter, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			special = true
		default:
			return false
		}
	}
	return letter && digit && special
}
