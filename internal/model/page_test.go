package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPageState(t *testing.T) {
	s := NewPageState(2, 10, 25)
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, 3, s.TotalPages)
	assert.Equal(t, 25, s.TotalItems)
}

func TestNewPageStateClampsAfterShrink(t *testing.T) {
	// Page 3 of a 25-item set, then 20 items are deleted.
	s := NewPageState(3, 10, 5)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 1, s.TotalPages)
	assert.True(t, s.Clamped(3))
}

func TestNewPageStateEmptySet(t *testing.T) {
	s := NewPageState(4, 10, 0)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 0, s.TotalPages)
}

func TestNewPageStateFloorsInputs(t *testing.T) {
	s := NewPageState(0, 0, -5)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 1, s.PageSize)
	assert.Equal(t, 0, s.TotalItems)
}

func TestPatientAgeAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	p := &Patient{BirthDate: "1990-06-14"}
	assert.Equal(t, 35, p.AgeAt(now))

	p.BirthDate = "1990-06-16"
	assert.Equal(t, 34, p.AgeAt(now))

	p.BirthDate = ""
	assert.Equal(t, 0, p.AgeAt(now))

	p.BirthDate = "garbage"
	assert.Equal(t, 0, p.AgeAt(now))
}
