package event

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode 事件不是合法的 JSON
	ErrDecode = errors.New("invalid event json")
	// ErrMissingDiscriminator 缺少 post_type 或二级类型字段
	ErrMissingDiscriminator = errors.New("missing discriminator")
	// ErrMalformedPayload 已知事件类型但结构不匹配
	ErrMalformedPayload = errors.New("malformed payload")
)

// MissingDiscriminatorError 缺少的类型字段
type MissingDiscriminatorError struct {
	Field string
}

func (e *MissingDiscriminatorError) Error() string {
	return fmt.Sprintf("%s: %q absent or not a string", ErrMissingDiscriminator, e.Field)
}

func (e *MissingDiscriminatorError) Is(target error) bool {
	return target == ErrMissingDiscriminator
}

// MalformedPayloadError 解码到 Variant 时失败
type MalformedPayloadError struct {
	Variant string
	Err     error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedPayload, e.Variant, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}
