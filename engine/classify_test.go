package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	const (
		authorA  = "0xaaaa"
		authorB  = "0xbbbb"
		cooldown = int64(604800)
	)

	tests := []struct {
		name           string
		usage          *UsageRecord
		boundAuthor    string
		now            int64
		author         string
		cooldown       int64
		bindingEnabled bool
		want           Decision
	}{
		{
			name:     "never used",
			usage:    nil,
			now:      1000,
			author:   authorA,
			cooldown: cooldown,
			want:     Accept,
		},
		{
			name:     "renewal by same author inside cooldown",
			usage:    &UsageRecord{Author: authorA, LastUsedAt: 900},
			now:      1000,
			author:   authorA,
			cooldown: cooldown,
			want:     Accept,
		},
		{
			name:     "different author inside cooldown",
			usage:    &UsageRecord{Author: authorA, LastUsedAt: 0},
			now:      1000,
			author:   authorB,
			cooldown: cooldown,
			want:     RejectCooldown,
		},
		{
			name:     "different author exactly at cooldown boundary",
			usage:    &UsageRecord{Author: authorA, LastUsedAt: 0},
			now:      cooldown,
			author:   authorB,
			cooldown: cooldown,
			want:     Accept,
		},
		{
			name:     "different author after cooldown",
			usage:    &UsageRecord{Author: authorA, LastUsedAt: 0},
			now:      cooldown + 1,
			author:   authorB,
			cooldown: cooldown,
			want:     Accept,
		},
		{
			name:     "zero cooldown disables transfer lock",
			usage:    &UsageRecord{Author: authorA, LastUsedAt: 1000},
			now:      1000,
			author:   authorB,
			cooldown: 0,
			want:     Accept,
		},
		{
			name:           "bound to other author beats elapsed cooldown",
			usage:          &UsageRecord{Author: authorA, LastUsedAt: 0},
			boundAuthor:    authorA,
			now:            cooldown * 2,
			author:         authorB,
			cooldown:       cooldown,
			bindingEnabled: true,
			want:           RejectBound,
		},
		{
			name:           "bound to other author on never-used token",
			usage:          nil,
			boundAuthor:    authorA,
			now:            1000,
			author:         authorB,
			cooldown:       cooldown,
			bindingEnabled: true,
			want:           RejectBound,
		},
		{
			name:           "bound to same author",
			usage:          &UsageRecord{Author: authorA, LastUsedAt: 900},
			boundAuthor:    authorA,
			now:            1000,
			author:         authorA,
			cooldown:       cooldown,
			bindingEnabled: true,
			want:           Accept,
		},
		{
			name:        "binding ignored when disabled",
			usage:       nil,
			boundAuthor: authorA,
			now:         1000,
			author:      authorB,
			cooldown:    cooldown,
			want:        Accept,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.usage, tt.boundAuthor, tt.now, tt.author, tt.cooldown, tt.bindingEnabled)
			require.Equal(t, tt.want, got)
		})
	}
}
