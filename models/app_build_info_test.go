package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppBuildInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info AppBuildInfo
		want string
	}{
		{
			name: "all set",
			info: NewAppBuildInfo("1.2.0", "2026-10-01", "abc123"),
			want: "version=1.2.0 date=2026-10-01 commit=abc123",
		},
		{
			name: "unset values",
			info: NewAppBuildInfo("", "", "abc123"),
			want: "version=N/A date=N/A commit=abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
			assert.Equal(t, "abc123", tt.info.BuildCommit())
		})
	}
}
