package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeConfigValidate(t *testing.T) {
	valid := TreeConfig{RootTopic: "Machine Learning", MaxLevel: 2, BranchFactor: 3}

	tests := []struct {
		name    string
		mutate  func(c *TreeConfig)
		wantErr string
	}{
		{"valid", func(c *TreeConfig) {}, ""},
		{"missing topic", func(c *TreeConfig) { c.RootTopic = "" }, "roottopic is required"},
		{"depth zero", func(c *TreeConfig) { c.MaxLevel = 0 }, "maxlevel must be at least 1"},
		{"depth too large", func(c *TreeConfig) { c.MaxLevel = 11 }, "maxlevel must be at most 10"},
		{"branch zero", func(c *TreeConfig) { c.BranchFactor = 0 }, "branchfactor must be at least 1"},
		{"negative word count", func(c *TreeConfig) { c.MinWordCount = -1 }, "minwordcount must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStructCollectsAllFields(t *testing.T) {
	err := TreeConfig{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roottopic is required")
	assert.Contains(t, err.Error(), "maxlevel must be at least 1")
	assert.Contains(t, err.Error(), "branchfactor must be at least 1")
}

func TestAIConfigProvider(t *testing.T) {
	assert.NoError(t, ValidateStruct(AIConfig{Provider: ProviderOpenAI}))
	assert.NoError(t, ValidateStruct(AIConfig{}))
	err := ValidateStruct(AIConfig{Provider: "llama"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider must be one of")
}
