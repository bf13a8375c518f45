package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	ok := OkData([]string{"a"}, "found")
	assert.True(t, ok.Success)
	assert.Equal(t, []string{"a"}, ok.Data)
	assert.False(t, ok.Is(CodeNone))

	failed := FailData[[]string](KindNotFound, CodeOrderNotFound, "order 1 not found")
	assert.False(t, failed.Success)
	assert.Nil(t, failed.Data)
	assert.True(t, failed.Is(CodeOrderNotFound))
	assert.False(t, failed.Is(CodeEmptyCart))

	carried := FromResult[*int](Fail(KindBusinessRuleViolation, CodeEmptyCart, "empty"))
	assert.Equal(t, KindBusinessRuleViolation, carried.Kind)
	assert.Equal(t, "empty", carried.Message)
	assert.Nil(t, carried.Data)
}
