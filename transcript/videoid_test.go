package transcript

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		target  string
		want    string
		wantErr bool
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", false},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"", "", true},
		{"   ", "", true},
		{"https://example.com/watch?v=dQw4w9WgXcQ", "", true},
		{"https://www.youtube.com/watch?v=short", "", true},
		{"https://www.youtube.com/channel/UC123", "", true},
	}

	for _, tt := range tests {
		got, err := ExtractVideoID(tt.target)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractVideoID(%q) error = %v, wantErr %v", tt.target, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}
