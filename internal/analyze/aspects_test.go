package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

func TestDetectAspects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.Aspect
	}{
		{"single keyword", "The price was fair", []model.Aspect{model.AspectPrice}},
		{"case insensitive", "GREAT QUALITY overall", []model.Aspect{model.AspectQuality}},
		{
			"multiple aspects in canonical order",
			"shipping was slow but the battery and the box were fine",
			[]model.Aspect{model.AspectDelivery, model.AspectPackaging, model.AspectUsability},
		},
		{"no aspects", "I liked it", nil},
		{"keyword inside longer word does not match", "the pricey overuse of plastic", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectAspects(tt.text))
		})
	}
}
