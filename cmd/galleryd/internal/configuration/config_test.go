package configuration_test

import (
	"testing"

	"github.com/adampresley/mediaentity/cmd/galleryd/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func TestVariantWidthList(t *testing.T) {
	tests := []struct {
		name   string
		widths string
		want   []uint
	}{
		{name: "defaults", widths: "1920,1200,600,300", want: []uint{1920, 1200, 600, 300}},
		{name: "spaces", widths: " 800 , 400", want: []uint{800, 400}},
		{name: "invalid entries", widths: "800,abc,-1,0,,400", want: []uint{800, 400}},
		{name: "empty", widths: "", want: []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := configuration.Config{VariantWidths: tt.widths}
			assert.Equal(t, tt.want, config.VariantWidthList())
		})
	}
}
