package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emberlang/ember/lang/value"
)

func TestImmediates(t *testing.T) {
	assert.True(t, value.Nil().IsNil())
	assert.Equal(t, "nil", value.Nil().String())

	assert.True(t, value.Undefined().IsUndefined())
	assert.True(t, value.Undefined().Truthy())

	assert.True(t, value.Bool(true).IsBool())
	assert.True(t, value.Bool(true).AsBool())
	assert.True(t, value.Bool(true).Truthy())

	assert.False(t, value.Bool(false).Truthy())
	assert.False(t, value.Nil().Truthy())

	n := value.Number(3.5)
	assert.True(t, n.IsNumber())
	assert.Equal(t, 3.5, n.AsNumber())
	assert.True(t, n.Truthy())
	assert.Equal(t, "3.5", n.String())
}

func TestEqual(t *testing.T) {
	assert.True(t, value.Equal(value.Nil(), value.Nil()))
	assert.False(t, value.Equal(value.Nil(), value.Bool(false)))
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
	assert.False(t, value.Equal(value.Number(1), value.Number(2)))
	assert.True(t, value.Equal(value.Bool(true), value.Bool(true)))
	assert.False(t, value.Equal(value.Undefined(), value.Nil()))
}

func TestIntegerPrintsWithoutDecimal(t *testing.T) {
	assert.Equal(t, "7", value.Number(7).String())
	assert.Equal(t, "1.5", value.Number(1.5).String())
}
