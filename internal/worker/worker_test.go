package worker

import (
	"reflect"
	"testing"

	"github.com/bobarin/clipforge/internal/queue"
)

func TestJobSourceParts(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
		want []string
	}{
		{"no payload", nil, nil},
		{"missing key", map[string]interface{}{"other": 1.0}, nil},
		{
			"wire form",
			map[string]interface{}{"source_parts": []interface{}{"uploads/a.mp4", "uploads/b.mov"}},
			[]string{"uploads/a.mp4", "uploads/b.mov"},
		},
		{
			"direct form",
			map[string]interface{}{"source_parts": []string{"uploads/a.mp4"}},
			[]string{"uploads/a.mp4"},
		},
		{
			"skips junk entries",
			map[string]interface{}{"source_parts": []interface{}{"uploads/a.mp4", 7.0, "", "uploads/b.mp4"}},
			[]string{"uploads/a.mp4", "uploads/b.mp4"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jobSourceParts(&queue.Job{Data: tt.data})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("jobSourceParts = %v, want %v", got, tt.want)
			}
		})
	}
}
