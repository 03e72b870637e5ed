package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate_CountsCharactersOverFour(t *testing.T) {
	payload := map[string]interface{}{"text": "12345678"} // 8 chars -> 2 tokens
	assert.Equal(t, 2, Estimate(payload))
}

func TestEstimate_NeverBelowOne(t *testing.T) {
	assert.Equal(t, 1, Estimate(map[string]interface{}{}))
}

func TestEstimate_ImageAddsFlatCharge(t *testing.T) {
	payload := map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{"type": "image", "data": "abc"},
		},
	}
	assert.Equal(t, 300+(len("image")+len("abc"))/4, Estimate(payload))
}

func TestEstimate_InlineDataCountsAsImage(t *testing.T) {
	payload := map[string]interface{}{
		"parts": []interface{}{
			map[string]interface{}{"inlineData": map[string]interface{}{"mimeType": "image/png", "data": "xx"}},
		},
	}
	assert.GreaterOrEqual(t, Estimate(payload), 300)
}
