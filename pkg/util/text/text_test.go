package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCutText(t *testing.T) {
	testCases := []struct {
		input    string
		size     int
		expected string
		cut      bool
	}{
		{input: "short", size: 10, expected: "short", cut: false},
		{input: "exactly10!", size: 10, expected: "exactly10!", cut: false},
		{input: "this text is too long", size: 10, expected: "this te...", cut: true},
		{input: "хлеб бородинский", size: 7, expected: "хлеб...", cut: true},
		{input: "abcdef", size: 2, expected: "...", cut: true},
	}

	for _, tc := range testCases {
		output, cut := CutText(tc.input, tc.size, Ellipsis)
		assert.Equal(t, tc.expected, output)
		assert.Equal(t, tc.cut, cut)
	}
}

func TestCutBytes(t *testing.T) {
	output, cut := CutBytes("abcdef", 3, "!")
	assert.True(t, cut)
	assert.Equal(t, "abc!", output)

	output, cut = CutBytes("ёж", 3, "")
	assert.True(t, cut)
	assert.Equal(t, "ё", output)

	output, cut = CutBytes("abc", 3, "!")
	assert.False(t, cut)
	assert.Equal(t, "abc", output)
}

func TestStripCodeFences(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "SELECT 1", expected: "SELECT 1"},
		{input: "```sql\nSELECT 1\n```", expected: "SELECT 1"},
		{input: "  ```SQL\nSELECT *\nFROM T\n```  ", expected: "SELECT *\nFROM T"},
		{input: "```\n{\"isValid\": true}\n```", expected: "{\"isValid\": true}"},
		{input: "```json{\"a\":1}```", expected: "{\"a\":1}"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, StripCodeFences(tc.input))
	}
}

func TestStripCodeFencesKeepsStatement(t *testing.T) {
	assert.Equal(t, "SELECT 1", StripCodeFences("```SELECT 1```"))
}
