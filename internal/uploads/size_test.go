package uploads

import "testing"

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 KB"},
		{900, "1 KB"},
		{1536, "2 KB"},
		{1048575, "1024 KB"},
		{1048576, "1.0 MB"},
		{2621440, "2.5 MB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.bytes); got != tc.want {
			t.Fatalf("FormatSize(%d): expected %q, got %q", tc.bytes, tc.want, got)
		}
	}
}
