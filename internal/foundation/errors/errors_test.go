package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("builder", func(t *testing.T) {
		err := ConfigError("invalid configuration").
			WithContext("file", "vaultmark.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.True(t, err.IsFatal())
		assert.False(t, err.Retryable())
		assert.Equal(t, "invalid configuration", err.Message())
		assert.Equal(t, ErrorContext{"file": "vaultmark.yaml"}, err.Context())
		assert.Equal(t, "[config:fatal] invalid configuration", err.Error())
	})

	t.Run("wrapped chain", func(t *testing.T) {
		cause := errors.New("permission denied")
		inner := WrapError(cause, CategoryFileSystem, "read vault").Build()
		outer := fmt.Errorf("index build: %w", inner)

		got, ok := AsClassified(outer)
		require.True(t, ok)
		assert.Same(t, inner, got)
		assert.True(t, HasCategory(outer, CategoryFileSystem))
		assert.False(t, HasCategory(outer, CategoryConfig))
		assert.ErrorIs(t, outer, cause)
		assert.Equal(t, "[filesystem:error] read vault: permission denied", inner.Error())
	})

	t.Run("unclassified", func(t *testing.T) {
		err := errors.New("plain")
		_, ok := AsClassified(err)
		assert.False(t, ok)
		assert.False(t, HasCategory(err, CategoryInternal))
		assert.False(t, IsRetryable(err))
	})

	t.Run("retryable and warning", func(t *testing.T) {
		err := NewError(CategoryRuntime, "publish").Warning().Retryable().Build()
		assert.Equal(t, SeverityWarning, err.Severity())
		assert.True(t, IsRetryable(fmt.Errorf("wrap: %w", err)))
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := ValidationError("bad depth").WithContext("max_embed_depth", 0).Build()
		derived := base.WithContext("path", "vaultmark.yaml")

		assert.Equal(t, ErrorContext{"max_embed_depth": 0}, base.Context())
		assert.Equal(t, ErrorContext{"max_embed_depth": 0, "path": "vaultmark.yaml"}, derived.Context())
		assert.Equal(t, base.Category(), derived.Category())
		assert.Equal(t, base.Message(), derived.Message())
	})

	t.Run("builder reuse does not share context", func(t *testing.T) {
		b := RenderError("write page").WithContext("path", "/a.md")
		first := b.Build()
		second := b.WithContext("path", "/b.md").Build()

		assert.Equal(t, "/a.md", first.Context()["path"])
		assert.Equal(t, "/b.md", second.Context()["path"])
	})
}

func TestErrorCategory_ExitCode(t *testing.T) {
	tests := map[ErrorCategory]int{
		CategoryValidation:       2,
		CategoryNotFound:         3,
		CategoryConfig:           7,
		CategoryInternal:         10,
		CategoryFileSystem:       11,
		CategoryIndex:            11,
		CategoryParse:            11,
		CategoryEmbed:            11,
		CategoryRender:           11,
		CategoryRuntime:          12,
		ErrorCategory("unknown"): 1,
	}
	for category, want := range tests {
		t.Run(string(category), func(t *testing.T) {
			assert.Equal(t, want, category.ExitCode())
		})
	}
}

func TestErrorContextMerge(t *testing.T) {
	base := ErrorContext{"key1": "value1", "shared": "original"}
	merged := base.Merge(ErrorContext{"key2": "value2", "shared": "overridden"})

	assert.Equal(t, ErrorContext{"key1": "value1", "key2": "value2", "shared": "overridden"}, merged)
	assert.Equal(t, "original", base["shared"])

	var nilCtx ErrorContext
	assert.Equal(t, ErrorContext{"k": 1}, nilCtx.Merge(ErrorContext{"k": 1}))
}
