package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRowMatchPrompt_SingleCode(t *testing.T) {
	prompt := BuildRowMatchPrompt([]string{"12345"})

	assert.Contains(t, prompt, `the product code "12345"`)
	assert.Contains(t, prompt, "business_reg_no")
	assert.Contains(t, prompt, "123-45-67890")
	assert.Contains(t, prompt, `empty "items" array`)
	assert.Contains(t, prompt, "ONLY a single JSON object")
	assert.NotContains(t, prompt, "ANY of these")
}

func TestBuildRowMatchPrompt_MultipleCodesAreDisjunctive(t *testing.T) {
	prompt := BuildRowMatchPrompt([]string{"12345", "67890"})

	assert.Contains(t, prompt, `ANY of these product codes: "12345", "67890"`)
}

func TestBuildRowMatchPrompt_Deterministic(t *testing.T) {
	codes := []string{"12345", "67890", "11111"}
	assert.Equal(t, BuildRowMatchPrompt(codes), BuildRowMatchPrompt(codes))
}
